package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/notebook"
	"study-tracker-be/pkg/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const repairModule = "REPAIR"

type RepairAction string

const (
	ActionAttachedOrphan RepairAction = "attached_orphan"
	ActionAttachedNew    RepairAction = "attached_new"
	ActionRefreshed      RepairAction = "refreshed"
	ActionUnchanged      RepairAction = "unchanged"
)

type RepairResult struct {
	Entity         string                  `json:"entity"`
	EntityId       uuid.UUID               `json:"entityId"`
	Kind           entity.FolderKind       `json:"kind"`
	Action         RepairAction            `json:"action"`
	BackendCreated bool                    `json:"backendCreated"`
	Folder         *entity.FolderReference `json:"folder"`
}

// Reconciler realigns the folder references of an existing study or assay
// with the folders the backends actually hold. Unlike provisioning, every
// backend failure other than not-found is returned to the caller.
type Reconciler struct {
	uowFactory  unitofwork.RepositoryFactory
	storage     storage.Backend
	notebook    notebook.Backend
	logger      logger.ILogger
	tracer      trace.Tracer
	callTimeout time.Duration
	now         func() time.Time
}

func NewReconciler(
	uowFactory unitofwork.RepositoryFactory,
	storageBackend storage.Backend,
	notebookBackend notebook.Backend,
	log logger.ILogger,
	callTimeout time.Duration,
) *Reconciler {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Reconciler{
		uowFactory:  uowFactory,
		storage:     storageBackend,
		notebook:    notebookBackend,
		logger:      log,
		tracer:      otel.Tracer("study-tracker-be/provisioning"),
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// repairOwner is the part of a study or assay the repair algorithm needs.
type repairOwner struct {
	entity         string
	id             uuid.UUID
	code           string
	legacy         bool
	folderName     string
	storageTarget  storage.Target
	storageRef     *entity.FolderReference
	notebookRef    *entity.FolderReference
	storageParent  *entity.FolderReference
	notebookParent *entity.FolderReference
	attach         func(ctx context.Context, uow unitofwork.UnitOfWork, kind entity.FolderKind, ref *entity.FolderReference) error
}

func (o *repairOwner) ref(kind entity.FolderKind) *entity.FolderReference {
	if kind == entity.FolderKindStorage {
		return o.storageRef
	}
	return o.notebookRef
}

func (o *repairOwner) parent(kind entity.FolderKind) *entity.FolderReference {
	if kind == entity.FolderKindStorage {
		return o.storageParent
	}
	return o.notebookParent
}

func (r *Reconciler) RepairStudyStorage(ctx context.Context, id uuid.UUID) (*RepairResult, error) {
	return r.repairStudy(ctx, id, entity.FolderKindStorage)
}

func (r *Reconciler) RepairStudyNotebook(ctx context.Context, id uuid.UUID) (*RepairResult, error) {
	return r.repairStudy(ctx, id, entity.FolderKindNotebook)
}

func (r *Reconciler) RepairAssayStorage(ctx context.Context, id uuid.UUID) (*RepairResult, error) {
	return r.repairAssay(ctx, id, entity.FolderKindStorage)
}

func (r *Reconciler) RepairAssayNotebook(ctx context.Context, id uuid.UUID) (*RepairResult, error) {
	return r.repairAssay(ctx, id, entity.FolderKindNotebook)
}

func (r *Reconciler) repairStudy(ctx context.Context, id uuid.UUID, kind entity.FolderKind) (*RepairResult, error) {
	study, err := LoadStudy(ctx, r.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}
	owner := &repairOwner{
		entity:         "study",
		id:             study.Id,
		code:           study.Code,
		legacy:         study.Legacy,
		folderName:     EntityFolderName(study.Code, study.Name),
		storageTarget:  StudyStorageTarget(study),
		storageRef:     study.StorageFolder,
		notebookRef:    study.NotebookFolder,
		storageParent:  study.Program.StorageFolder,
		notebookParent: study.Program.NotebookFolder,
		attach: func(ctx context.Context, uow unitofwork.UnitOfWork, kind entity.FolderKind, ref *entity.FolderReference) error {
			if kind == entity.FolderKindStorage {
				study.StorageFolderId = &ref.Id
			} else {
				study.NotebookFolderId = &ref.Id
			}
			return uow.StudyRepository().Update(ctx, study)
		},
	}
	return r.repair(ctx, owner, kind)
}

func (r *Reconciler) repairAssay(ctx context.Context, id uuid.UUID, kind entity.FolderKind) (*RepairResult, error) {
	assay, err := LoadAssay(ctx, r.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}
	owner := &repairOwner{
		entity:         "assay",
		id:             assay.Id,
		code:           assay.Code,
		legacy:         assay.Legacy(),
		folderName:     EntityFolderName(assay.Code, assay.Name),
		storageTarget:  AssayStorageTarget(assay),
		storageRef:     assay.StorageFolder,
		notebookRef:    assay.NotebookFolder,
		storageParent:  assay.Study.StorageFolder,
		notebookParent: assay.Study.NotebookFolder,
		attach: func(ctx context.Context, uow unitofwork.UnitOfWork, kind entity.FolderKind, ref *entity.FolderReference) error {
			if kind == entity.FolderKindStorage {
				assay.StorageFolderId = &ref.Id
			} else {
				assay.NotebookFolderId = &ref.Id
			}
			return uow.AssayRepository().Update(ctx, assay)
		},
	}
	return r.repair(ctx, owner, kind)
}

func (r *Reconciler) repair(ctx context.Context, owner *repairOwner, kind entity.FolderKind) (*RepairResult, error) {
	ctx, span := r.tracer.Start(ctx, "provisioning.repair", trace.WithAttributes(
		attribute.String("repair.entity", owner.entity),
		attribute.String("repair.code", owner.code),
		attribute.String("repair.kind", string(kind)),
	))
	defer span.End()

	result, err := r.reconcile(ctx, owner, kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	r.logger.Info(repairModule, "Folder reference reconciled", map[string]interface{}{
		"entity":         owner.entity,
		"code":           owner.code,
		"kind":           string(kind),
		"action":         string(result.Action),
		"backendCreated": result.BackendCreated,
		"path":           result.Folder.Path,
	})
	return result, nil
}

func (r *Reconciler) reconcile(ctx context.Context, owner *repairOwner, kind entity.FolderKind) (*RepairResult, error) {
	var (
		live    *liveFolder
		created bool
		err     error
	)
	switch kind {
	case entity.FolderKindStorage:
		live, created, err = r.liveStorageFolder(ctx, owner)
	case entity.FolderKindNotebook:
		live, created, err = r.liveNotebookFolder(ctx, owner)
	default:
		return nil, entity.NewValidationError("folder", "kind", fmt.Sprintf("unknown folder kind %q", kind), nil)
	}
	if err != nil {
		return nil, err
	}

	result := &RepairResult{Entity: owner.entity, EntityId: owner.id, Kind: kind, BackendCreated: created}
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if ref := owner.ref(kind); ref != nil {
		result.Folder = ref
		result.Action = ActionUnchanged
		if live.apply(ref, kind == entity.FolderKindNotebook) {
			now := r.now()
			ref.UpdatedAt = &now
			if err := uow.FolderReferenceRepository().Update(ctx, ref); err != nil {
				return nil, err
			}
			result.Action = ActionRefreshed
		}
	} else {
		ref, err := uow.FolderReferenceRepository().FindOne(ctx,
			specification.FolderByKind{Kind: string(kind)},
			specification.FolderByPath{Path: live.Path},
			specification.OrphanedFolder{},
		)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			live.apply(ref, true)
			if parent := owner.parent(kind); parent != nil {
				ref.ParentReferenceId = &parent.Id
			}
			now := r.now()
			ref.UpdatedAt = &now
			if err := uow.FolderReferenceRepository().Update(ctx, ref); err != nil {
				return nil, err
			}
			result.Action = ActionAttachedOrphan
		} else {
			ref = &entity.FolderReference{
				Id:          uuid.New(),
				Kind:        kind,
				ReferenceId: live.ReferenceId,
				Name:        live.Name,
				Path:        live.Path,
				Url:         live.Url,
				CreatedAt:   r.now(),
			}
			if parent := owner.parent(kind); parent != nil {
				ref.ParentReferenceId = &parent.Id
			}
			if err := uow.FolderReferenceRepository().Create(ctx, ref); err != nil {
				return nil, err
			}
			result.Action = ActionAttachedNew
		}
		if err := owner.attach(ctx, uow, kind, ref); err != nil {
			return nil, err
		}
		result.Folder = ref
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// liveFolder is the backend's view of a folder, independent of backend kind.
type liveFolder struct {
	ReferenceId string
	Name        string
	Path        string
	Url         string
}

// apply copies the live metadata onto ref and reports whether anything changed.
func (l *liveFolder) apply(ref *entity.FolderReference, withReferenceId bool) bool {
	changed := ref.Name != l.Name || ref.Path != l.Path || ref.Url != l.Url
	ref.Name, ref.Path, ref.Url = l.Name, l.Path, l.Url
	if withReferenceId && ref.ReferenceId != l.ReferenceId {
		ref.ReferenceId = l.ReferenceId
		changed = true
	}
	return changed
}

func (r *Reconciler) liveStorageFolder(ctx context.Context, owner *repairOwner) (*liveFolder, bool, error) {
	if r.storage == nil {
		return nil, false, entity.NewConflictError(owner.entity, "storage backend not configured")
	}
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	folder, err := r.storage.FindFolder(callCtx, owner.storageTarget, storage.FindOptions{})
	cancel()
	if err == nil {
		return storageLive(folder), false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("find storage folder %q: %w", owner.storageTarget.Path(), err)
	}

	callCtx, cancel = context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	folder, err = r.storage.CreateFolder(callCtx, owner.storageTarget)
	if err != nil {
		return nil, false, fmt.Errorf("create storage folder %q: %w", owner.storageTarget.Path(), err)
	}
	return storageLive(folder), true, nil
}

func (r *Reconciler) liveNotebookFolder(ctx context.Context, owner *repairOwner) (*liveFolder, bool, error) {
	if r.notebook == nil {
		return nil, false, entity.NewConflictError(owner.entity, "notebook backend not configured")
	}
	if owner.legacy {
		return nil, false, entity.NewConflictError(owner.entity, "legacy records keep their adopted notebook reference")
	}

	if owner.notebookRef != nil {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		folder, err := r.notebook.FindFolderById(callCtx, owner.notebookRef.ReferenceId)
		cancel()
		if err == nil {
			return notebookLive(folder), false, nil
		}
		if !errors.Is(err, notebook.ErrNotFound) {
			return nil, false, fmt.Errorf("find notebook folder %q: %w", owner.notebookRef.ReferenceId, err)
		}
	}

	if owner.notebookParent == nil {
		return nil, false, entity.NewConflictError(owner.entity, "parent has no notebook folder")
	}
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	folder, err := r.notebook.CreateFolder(callCtx, owner.folderName, owner.notebookParent.ReferenceId)
	if err != nil {
		return nil, false, fmt.Errorf("create notebook folder %q: %w", owner.folderName, err)
	}
	return notebookLive(folder), true, nil
}

func storageLive(f *storage.Folder) *liveFolder {
	return &liveFolder{ReferenceId: f.ReferenceId, Name: f.Name, Path: f.Path, Url: f.Url}
}

func notebookLive(f *notebook.Folder) *liveFolder {
	return &liveFolder{ReferenceId: f.ReferenceId, Name: f.Name, Path: f.Path, Url: f.Url}
}
