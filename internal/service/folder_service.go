// FILE: internal/service/folder_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/events"
	"study-tracker-be/pkg/storage"

	"github.com/google/uuid"
)

// IFolderService exposes the storage folder of a study or assay and repairs
// folder references that drifted from the backends.
type IFolderService interface {
	ListFiles(ctx context.Context, entityType string, id uuid.UUID) (*dto.FolderListingResponse, error)
	UploadFile(ctx context.Context, entityType string, id uuid.UUID, upload storage.Upload) (*dto.FileResponse, error)
	Repair(ctx context.Context, entityType string, id uuid.UUID, kind entity.FolderKind) (*dto.RepairResponse, error)
}

type folderService struct {
	uowFactory  unitofwork.RepositoryFactory
	storage     storage.Backend
	reconciler  *provisioning.Reconciler
	notifier    notifier
	listDepth   int
	callTimeout time.Duration
}

func NewFolderService(
	uowFactory unitofwork.RepositoryFactory,
	storageBackend storage.Backend,
	reconciler *provisioning.Reconciler,
	eventPublisher IEventPublisher,
	log logger.ILogger,
	listDepth int,
	callTimeout time.Duration,
) IFolderService {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &folderService{
		uowFactory:  uowFactory,
		storage:     storageBackend,
		reconciler:  reconciler,
		notifier:    notifier{eventPublisher: eventPublisher, logger: log},
		listDepth:   listDepth,
		callTimeout: callTimeout,
	}
}

func (s *folderService) ListFiles(ctx context.Context, entityType string, id uuid.UUID) (*dto.FolderListingResponse, error) {
	ref, err := s.storageFolder(ctx, entityType, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	folder, err := s.storage.FindFolder(ctx, provisioning.StoragePathTarget(ref.Path), storage.FindOptions{Depth: s.listDepth})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, entity.NewNotFoundError("storage folder", ref.Path)
		}
		return nil, fmt.Errorf("list storage folder %s: %w", ref.Path, err)
	}
	return listingResponse(folder), nil
}

func (s *folderService) UploadFile(ctx context.Context, entityType string, id uuid.UUID, upload storage.Upload) (*dto.FileResponse, error) {
	if strings.TrimSpace(upload.Name) == "" {
		return nil, entity.NewValidationError(entityType, "file", "file name is required", nil)
	}
	ref, err := s.storageFolder(ctx, entityType, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	file, err := s.storage.UploadFile(ctx, provisioning.StoragePathTarget(ref.Path), upload)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, entity.NewNotFoundError("storage folder", ref.Path)
		}
		return nil, fmt.Errorf("upload %s: %w", upload.Name, err)
	}
	res := fileResponse(file)
	return &res, nil
}

func (s *folderService) Repair(ctx context.Context, entityType string, id uuid.UUID, kind entity.FolderKind) (*dto.RepairResponse, error) {
	var repair func(context.Context, uuid.UUID) (*provisioning.RepairResult, error)
	switch {
	case entityType == EntityTypeStudy && kind == entity.FolderKindStorage:
		repair = s.reconciler.RepairStudyStorage
	case entityType == EntityTypeStudy && kind == entity.FolderKindNotebook:
		repair = s.reconciler.RepairStudyNotebook
	case entityType == EntityTypeAssay && kind == entity.FolderKindStorage:
		repair = s.reconciler.RepairAssayStorage
	case entityType == EntityTypeAssay && kind == entity.FolderKindNotebook:
		repair = s.reconciler.RepairAssayNotebook
	default:
		return nil, entity.NewValidationError(entityType, "kind", fmt.Sprintf("cannot repair %s folder of %s", kind, entityType), nil)
	}

	result, err := repair(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.Action != provisioning.ActionUnchanged {
		s.notifier.event(ctx, events.TypeFolderRepaired, map[string]interface{}{
			"entity":          result.Entity,
			"entity_id":       result.EntityId.String(),
			"kind":            string(result.Kind),
			"action":          string(result.Action),
			"backend_created": result.BackendCreated,
		})
	}
	return &dto.RepairResponse{
		Entity:         result.Entity,
		EntityId:       result.EntityId,
		Kind:           string(result.Kind),
		Action:         string(result.Action),
		BackendCreated: result.BackendCreated,
		Folder:         folderResponse(result.Folder),
	}, nil
}

func (s *folderService) storageFolder(ctx context.Context, entityType string, id uuid.UUID) (*entity.FolderReference, error) {
	if s.storage == nil {
		return nil, entity.NewConflictError(entityType, "storage backend not configured")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	var ref *entity.FolderReference
	switch entityType {
	case EntityTypeStudy:
		study, err := provisioning.LoadStudy(ctx, uow, id)
		if err != nil {
			return nil, err
		}
		ref = study.StorageFolder
	case EntityTypeAssay:
		assay, err := provisioning.LoadAssay(ctx, uow, id)
		if err != nil {
			return nil, err
		}
		ref = assay.StorageFolder
	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}
	if ref == nil {
		return nil, entity.NewNotFoundError("storage folder", id)
	}
	return ref, nil
}
