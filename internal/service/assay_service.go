// FILE: internal/service/assay_service.go
package service

import (
	"context"
	"strings"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/events"

	"github.com/google/uuid"
)

type IAssayService interface {
	GetAll(ctx context.Context, studyId *uuid.UUID) ([]*dto.AssayResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateAssayRequest) (*dto.CreateAssayResponse, error)
	// Show accepts either the assay id or its code.
	Show(ctx context.Context, idOrCode string) (*dto.AssayResponse, error)
	Update(ctx context.Context, req *dto.UpdateAssayRequest) (*dto.AssayResponse, error)
}

type assayService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *provisioning.Orchestrator
	notifier     notifier
	logger       logger.ILogger
}

func NewAssayService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *provisioning.Orchestrator,
	publisherService IPublisherService,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) IAssayService {
	return &assayService{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		notifier:     notifier{publisherService: publisherService, eventPublisher: eventPublisher, logger: log},
		logger:       log,
	}
}

func (s *assayService) GetAll(ctx context.Context, studyId *uuid.UUID) ([]*dto.AssayResponse, error) {
	specs := []specification.Specification{specification.OrderBy{Field: "created_at", Desc: true}}
	if studyId != nil {
		specs = append(specs, specification.ByStudyID{StudyID: *studyId})
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	assays, err := uow.AssayRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if err := attachAssayTypes(ctx, uow, assays); err != nil {
		return nil, err
	}
	res := make([]*dto.AssayResponse, 0, len(assays))
	for _, assay := range assays {
		res = append(res, assayResponse(assay))
	}
	return res, nil
}

// attachAssayTypes loads the type of each assay so stored field values get
// their declared types back.
func attachAssayTypes(ctx context.Context, uow unitofwork.UnitOfWork, assays []*entity.Assay) error {
	if len(assays) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(assays))
	seen := make(map[uuid.UUID]bool, len(assays))
	for _, assay := range assays {
		if !seen[assay.AssayTypeId] {
			seen[assay.AssayTypeId] = true
			ids = append(ids, assay.AssayTypeId)
		}
	}
	types, err := uow.AssayTypeRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return err
	}
	byId := make(map[uuid.UUID]*entity.AssayType, len(types))
	for _, at := range types {
		byId[at.Id] = at
	}
	for _, assay := range assays {
		assay.AssayType = byId[assay.AssayTypeId]
		provisioning.NormalizeAssayFields(assay)
	}
	return nil
}

func (s *assayService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateAssayRequest) (*dto.CreateAssayResponse, error) {
	assay := &entity.Assay{
		Code:          strings.TrimSpace(req.Code),
		Name:          req.Name,
		Description:   req.Description,
		Status:        entity.Status(req.Status),
		StudyId:       req.StudyId,
		AssayTypeId:   req.AssayTypeId,
		EndDate:       req.EndDate,
		OwnerId:       userId,
		UserIds:       req.UserIds,
		Fields:        req.Fields,
		Attributes:    req.Attributes,
		Tasks:         tasksEntity(req.Tasks),
		ExternalLinks: linksEntity(req.ExternalLinks),
	}
	if req.StartDate != nil {
		assay.StartDate = *req.StartDate
	}

	result, err := s.orchestrator.ProvisionAssay(ctx, provisioning.AssayRequest{
		Assay:       assay,
		NotebookUrl: req.NotebookUrl,
		TemplateId:  req.TemplateId,
	})
	if err != nil {
		return nil, err
	}
	assay = result.Assay

	s.notifier.summary(ctx, EntityTypeAssay, assay.Id)
	s.notifier.event(ctx, events.TypeAssayCreated, map[string]interface{}{
		"assay_id": assay.Id.String(),
		"code":     assay.Code,
		"name":     assay.Name,
		"study_id": assay.StudyId.String(),
		"user_id":  userId.String(),
		"degraded": result.Report.Degraded(),
	})

	res := &dto.CreateAssayResponse{Assay: assayResponse(assay), Report: stepsResponse(result.Report)}
	if result.Entry != nil {
		res.EntryUrl = result.Entry.Url
	}
	return res, nil
}

func (s *assayService) Show(ctx context.Context, idOrCode string) (*dto.AssayResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	id, err := uuid.Parse(idOrCode)
	if err != nil {
		found, err := uow.AssayRepository().FindOne(ctx, specification.ByCode{Code: idOrCode})
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, entity.NewNotFoundError("assay", idOrCode)
		}
		id = found.Id
	}
	assay, err := provisioning.LoadAssay(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	return assayResponse(assay), nil
}

// Update changes mutable fields only. Field values are checked against the
// assay type again.
func (s *assayService) Update(ctx context.Context, req *dto.UpdateAssayRequest) (*dto.AssayResponse, error) {
	var assay *entity.Assay
	err := inTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		if assay, err = provisioning.LoadAssay(ctx, uow, req.Id); err != nil {
			return err
		}
		now := time.Now()
		if req.Description != nil {
			assay.Description = *req.Description
		}
		if req.StartDate != nil {
			assay.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			assay.EndDate = req.EndDate
		}
		if req.OwnerId != nil {
			assay.OwnerId = *req.OwnerId
		}
		if req.UserIds != nil {
			assay.UserIds = req.UserIds
		}
		if req.Attributes != nil {
			assay.Attributes = req.Attributes
		}
		if req.Tasks != nil {
			assay.Tasks = tasksEntity(req.Tasks)
		}
		if req.ExternalLinks != nil {
			assay.ExternalLinks = linksEntity(req.ExternalLinks)
		}
		if req.Fields != nil {
			if assay.AssayType == nil {
				return entity.NewNotFoundError("assay_type", assay.AssayTypeId)
			}
			fields, err := provisioning.ValidateAssayFields(assay.AssayType, req.Fields)
			if err != nil {
				return err
			}
			assay.Fields = fields
		}
		if req.Status != nil {
			status := entity.Status(*req.Status)
			if !status.Valid() {
				return entity.NewValidationError("assay", "status", "unknown status "+*req.Status, nil)
			}
			assay.ApplyStatus(status, now.UTC())
		}
		assay.UpdatedAt = &now

		study, assayType, storageRef, notebookRef := assay.Study, assay.AssayType, assay.StorageFolder, assay.NotebookFolder
		if err := uow.AssayRepository().Update(ctx, assay); err != nil {
			return err
		}
		assay.Study, assay.AssayType, assay.StorageFolder, assay.NotebookFolder = study, assayType, storageRef, notebookRef
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assayResponse(assay), nil
}

func tasksEntity(tasks []dto.AssayTaskRequest) []entity.AssayTask {
	if tasks == nil {
		return nil
	}
	res := make([]entity.AssayTask, 0, len(tasks))
	for i, t := range tasks {
		order := t.Order
		if order == 0 {
			order = i
		}
		status := t.Status
		if status == "" {
			status = "TODO"
		}
		res = append(res, entity.AssayTask{Label: t.Label, Status: status, Order: order})
	}
	return res
}
