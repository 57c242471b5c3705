// FILE: internal/service/study_service.go
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

type IStudyService interface {
	GetAll(ctx context.Context, programId *uuid.UUID) ([]*dto.StudyResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateStudyRequest) (*dto.CreateStudyResponse, error)
	// Show accepts either the study id or its code.
	Show(ctx context.Context, idOrCode string) (*dto.StudyResponse, error)
	Update(ctx context.Context, req *dto.UpdateStudyRequest) (*dto.StudyResponse, error)
}

type studyService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *provisioning.Orchestrator
	notifier     notifier
	logger       logger.ILogger
}

func NewStudyService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *provisioning.Orchestrator,
	publisherService IPublisherService,
	eventPublisher IEventPublisher,
	log logger.ILogger,
) IStudyService {
	return &studyService{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		notifier:     notifier{publisherService: publisherService, eventPublisher: eventPublisher, logger: log},
		logger:       log,
	}
}

func (s *studyService) GetAll(ctx context.Context, programId *uuid.UUID) ([]*dto.StudyResponse, error) {
	specs := []specification.Specification{specification.OrderBy{Field: "created_at", Desc: true}}
	if programId != nil {
		specs = append(specs, specification.ByProgramID{ProgramID: *programId})
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	studies, err := uow.StudyRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.StudyResponse, 0, len(studies))
	for _, study := range studies {
		res = append(res, studyResponse(study))
	}
	return res, nil
}

func (s *studyService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateStudyRequest) (*dto.CreateStudyResponse, error) {
	study := &entity.Study{
		Code:           strings.TrimSpace(req.Code),
		Name:           req.Name,
		Description:    req.Description,
		Status:         entity.Status(req.Status),
		ProgramId:      req.ProgramId,
		CollaboratorId: req.CollaboratorId,
		Legacy:         req.Legacy,
		EndDate:        req.EndDate,
		OwnerId:        userId,
		UserIds:        req.UserIds,
		Keywords:       req.Keywords,
		Attributes:     req.Attributes,
		ExternalLinks:  linksEntity(req.ExternalLinks),
	}
	if code := strings.TrimSpace(req.ExternalCode); code != "" {
		study.ExternalCode = &code
	}
	if req.StartDate != nil {
		study.StartDate = *req.StartDate
	}

	result, err := s.orchestrator.ProvisionStudy(ctx, provisioning.StudyRequest{
		Study:       study,
		NotebookUrl: req.NotebookUrl,
		TemplateId:  req.TemplateId,
	})
	if err != nil {
		return nil, err
	}
	study = result.Study

	s.notifier.summary(ctx, EntityTypeStudy, study.Id)
	s.notifier.event(ctx, events.TypeStudyCreated, map[string]interface{}{
		"study_id":   study.Id.String(),
		"code":       study.Code,
		"name":       study.Name,
		"program_id": study.ProgramId.String(),
		"user_id":    userId.String(),
		"degraded":   result.Report.Degraded(),
	})

	res := &dto.CreateStudyResponse{Study: studyResponse(study), Report: stepsResponse(result.Report)}
	if result.Entry != nil {
		res.EntryUrl = result.Entry.Url
	}
	return res, nil
}

func (s *studyService) Show(ctx context.Context, idOrCode string) (*dto.StudyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	id, err := resolveStudyId(ctx, uow, idOrCode)
	if err != nil {
		return nil, err
	}
	study, err := provisioning.LoadStudy(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	return studyResponse(study), nil
}

// Update changes mutable fields only. Folders and notebook entries are never
// touched here.
func (s *studyService) Update(ctx context.Context, req *dto.UpdateStudyRequest) (*dto.StudyResponse, error) {
	var study *entity.Study
	err := inTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		if study, err = provisioning.LoadStudy(ctx, uow, req.Id); err != nil {
			return err
		}
		now := time.Now()
		if req.Description != nil {
			study.Description = *req.Description
		}
		if req.StartDate != nil {
			study.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			study.EndDate = req.EndDate
		}
		if req.OwnerId != nil {
			study.OwnerId = *req.OwnerId
		}
		if req.UserIds != nil {
			study.UserIds = req.UserIds
		}
		if req.Keywords != nil {
			study.Keywords = req.Keywords
		}
		if req.Attributes != nil {
			study.Attributes = req.Attributes
		}
		if req.ExternalLinks != nil {
			study.ExternalLinks = linksEntity(req.ExternalLinks)
		}
		if req.Status != nil {
			status := entity.Status(*req.Status)
			if !status.Valid() {
				return entity.NewValidationError("study", "status", "unknown status "+*req.Status, nil)
			}
			study.ApplyStatus(status, now.UTC())
		}
		study.UpdatedAt = &now

		program, storageRef, notebookRef := study.Program, study.StorageFolder, study.NotebookFolder
		if err := uow.StudyRepository().Update(ctx, study); err != nil {
			return err
		}
		study.Program, study.StorageFolder, study.NotebookFolder = program, storageRef, notebookRef
		return nil
	})
	if err != nil {
		return nil, err
	}
	return studyResponse(study), nil
}

func resolveStudyId(ctx context.Context, uow unitofwork.UnitOfWork, idOrCode string) (uuid.UUID, error) {
	if id, err := uuid.Parse(idOrCode); err == nil {
		return id, nil
	}
	study, err := uow.StudyRepository().FindOne(ctx, specification.ByCode{Code: idOrCode})
	if err != nil {
		return uuid.Nil, err
	}
	if study == nil {
		return uuid.Nil, entity.NewNotFoundError("study", idOrCode)
	}
	return study.Id, nil
}
