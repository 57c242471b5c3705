// FILE: internal/service/program_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/database"
	"study-tracker-be/pkg/notebook"
	"study-tracker-be/pkg/storage"

	"github.com/google/uuid"
)

const stepAttachNotebookFolder = "ATTACH_NOTEBOOK_FOLDER"

type IProgramService interface {
	GetAll(ctx context.Context) ([]*dto.ProgramResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProgramRequest) (*dto.CreateProgramResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ProgramResponse, error)
	Update(ctx context.Context, req *dto.UpdateProgramRequest) (*dto.ProgramResponse, error)
}

type programService struct {
	uowFactory  unitofwork.RepositoryFactory
	storage     storage.Backend
	notebook    notebook.Backend
	logger      logger.ILogger
	callTimeout time.Duration
}

func NewProgramService(
	uowFactory unitofwork.RepositoryFactory,
	storageBackend storage.Backend,
	notebookBackend notebook.Backend,
	log logger.ILogger,
	callTimeout time.Duration,
) IProgramService {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &programService{
		uowFactory:  uowFactory,
		storage:     storageBackend,
		notebook:    notebookBackend,
		logger:      log,
		callTimeout: callTimeout,
	}
}

func (s *programService) GetAll(ctx context.Context) ([]*dto.ProgramResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	programs, err := uow.ProgramRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.ProgramResponse, 0, len(programs))
	for _, p := range programs {
		if err := provisioning.LoadProgramFolders(ctx, uow, p); err != nil {
			return nil, err
		}
		res = append(res, programResponse(p))
	}
	return res, nil
}

// Create stores a program. Its storage folder is created and its notebook
// folder verified on the way, neither of which can fail the request.
func (s *programService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProgramRequest) (*dto.CreateProgramResponse, error) {
	name := strings.TrimSpace(req.Name)
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if name == "" {
		return nil, entity.NewValidationError("program", "name", "name is required", nil)
	}
	if code == "" {
		return nil, entity.NewValidationError("program", "code", "code is required", nil)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.ProgramRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entity.NewDuplicateError("program", "name", name)
	}
	existing, err = uow.ProgramRepository().FindOne(ctx, specification.ByCode{Code: code})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entity.NewDuplicateError("program", "code", code)
	}

	now := time.Now()
	program := &entity.Program{
		Id:          uuid.New(),
		Name:        name,
		Code:        code,
		Description: req.Description,
		Active:      true,
		CreatedById: userId,
		CreatedAt:   now,
	}
	var report []dto.StepResponse

	storageRef, step := s.storageFolder(ctx, program, now)
	report = append(report, step)
	notebookRef, step := s.notebookFolder(ctx, program, strings.TrimSpace(req.NotebookFolderId), now)
	report = append(report, step)

	err = inTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		for _, ref := range []*entity.FolderReference{storageRef, notebookRef} {
			if ref == nil {
				continue
			}
			if err := uow.FolderReferenceRepository().Create(ctx, ref); err != nil {
				return err
			}
		}
		if storageRef != nil {
			program.StorageFolderId = &storageRef.Id
		}
		if notebookRef != nil {
			program.NotebookFolderId = &notebookRef.Id
		}
		return uow.ProgramRepository().Create(ctx, program)
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			dup := entity.NewDuplicateError("program", "code", code)
			dup.Err = err
			return nil, dup
		}
		return nil, err
	}
	report = append(report, dto.StepResponse{Step: string(provisioning.StepPersist), Status: string(provisioning.StatusOK)})
	program.StorageFolder = storageRef
	program.NotebookFolder = notebookRef

	s.logger.Info(serviceModule, "Program created", map[string]interface{}{"program_id": program.Id.String(), "code": code})
	return &dto.CreateProgramResponse{Program: programResponse(program), Report: report}, nil
}

func (s *programService) storageFolder(ctx context.Context, program *entity.Program, now time.Time) (*entity.FolderReference, dto.StepResponse) {
	step := dto.StepResponse{Step: string(provisioning.StepCreateStorageFolder)}
	if s.storage == nil {
		step.Status, step.Reason = string(provisioning.StatusSkipped), "storage backend not configured"
		return nil, step
	}
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	target := provisioning.ProgramStorageTarget(program)
	folder, err := s.storage.CreateFolder(ctx, target)
	if errors.Is(err, storage.ErrAlreadyExists) {
		folder, err = s.storage.FindFolder(ctx, target, storage.FindOptions{})
		step.Reason = "adopted existing folder"
	}
	if err != nil {
		s.logger.Warn(serviceModule, "Program storage folder not created", map[string]interface{}{
			"program": program.Name, "error": err.Error(),
		})
		step.Status, step.Reason = string(provisioning.StatusDegraded), err.Error()
		return nil, step
	}
	step.Status = string(provisioning.StatusOK)
	return &entity.FolderReference{
		Id:          uuid.New(),
		Kind:        entity.FolderKindStorage,
		ReferenceId: folder.ReferenceId,
		Name:        folder.Name,
		Path:        folder.Path,
		Url:         folder.Url,
		CreatedAt:   now,
	}, step
}

// notebookFolder attaches an existing notebook folder. A failed lookup keeps
// the supplied id so the reference can be repaired later.
func (s *programService) notebookFolder(ctx context.Context, program *entity.Program, referenceId string, now time.Time) (*entity.FolderReference, dto.StepResponse) {
	step := dto.StepResponse{Step: stepAttachNotebookFolder}
	if referenceId == "" {
		step.Status, step.Reason = string(provisioning.StatusSkipped), "no notebook folder supplied"
		return nil, step
	}
	ref := &entity.FolderReference{
		Id:          uuid.New(),
		Kind:        entity.FolderKindNotebook,
		ReferenceId: referenceId,
		Name:        program.Name,
		Path:        program.Name,
		CreatedAt:   now,
	}
	if s.notebook == nil {
		step.Status, step.Reason = string(provisioning.StatusSkipped), "notebook backend not configured, reference stored unverified"
		return ref, step
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	folder, err := s.notebook.FindFolderById(ctx, referenceId)
	if err != nil {
		s.logger.Warn(serviceModule, "Program notebook folder lookup failed", map[string]interface{}{
			"program": program.Name, "reference_id": referenceId, "error": err.Error(),
		})
		step.Status, step.Reason = string(provisioning.StatusDegraded), err.Error()
		return ref, step
	}
	ref.Name, ref.Path, ref.Url = folder.Name, folder.Path, folder.Url
	step.Status = string(provisioning.StatusOK)
	return ref, step
}

func (s *programService) Show(ctx context.Context, id uuid.UUID) (*dto.ProgramResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	program, err := uow.ProgramRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, entity.NewNotFoundError("program", id)
	}
	if err := provisioning.LoadProgramFolders(ctx, uow, program); err != nil {
		return nil, err
	}
	return programResponse(program), nil
}

func (s *programService) Update(ctx context.Context, req *dto.UpdateProgramRequest) (*dto.ProgramResponse, error) {
	var program *entity.Program
	err := inTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		program, err = uow.ProgramRepository().FindOne(ctx, specification.ByID{ID: req.Id})
		if err != nil {
			return err
		}
		if program == nil {
			return entity.NewNotFoundError("program", req.Id)
		}
		if req.Description != nil {
			program.Description = *req.Description
		}
		if req.Active != nil {
			program.Active = *req.Active
		}
		now := time.Now()
		program.UpdatedAt = &now
		if err := uow.ProgramRepository().Update(ctx, program); err != nil {
			return err
		}
		return provisioning.LoadProgramFolders(ctx, uow, program)
	})
	if err != nil {
		return nil, err
	}
	return programResponse(program), nil
}
