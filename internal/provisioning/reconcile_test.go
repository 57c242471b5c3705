package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/repository/implementation"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) reconciler() *Reconciler {
	return NewReconciler(f.factory, f.storage, f.notebook, logger.NewNopLogger(), time.Second)
}

func (f *fixture) folder(t *testing.T, id uuid.UUID) *entity.FolderReference {
	t.Helper()
	ref, err := implementation.NewFolderReferenceRepository(f.db).FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, ref)
	return ref
}

func (f *fixture) countFolders(t *testing.T) int64 {
	t.Helper()
	n, err := implementation.NewFolderReferenceRepository(f.db).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestRepairStudyStorageCreatesMissingFolder(t *testing.T) {
	f := newFixture(t)
	f.storage.Err = errors.New("timeout")
	study := f.provisionStudy(t, "Trial One").Study
	require.Nil(t, study.StorageFolder)
	f.storage.Err = nil

	res, err := f.reconciler().RepairStudyStorage(context.Background(), study.Id)
	require.NoError(t, err)

	assert.Equal(t, ActionAttachedNew, res.Action)
	assert.True(t, res.BackendCreated)
	assert.Equal(t, entity.FolderKindStorage, res.Kind)
	assert.Equal(t, "Oncology/ONC-1 - Trial One", res.Folder.Path)
	assert.Equal(t, f.program.StorageFolderId, res.Folder.ParentReferenceId)

	stored, err := LoadStudy(context.Background(), f.factory.NewUnitOfWork(context.Background()), study.Id)
	require.NoError(t, err)
	require.NotNil(t, stored.StorageFolderId)
	assert.Equal(t, res.Folder.Id, *stored.StorageFolderId)
	// unrelated columns survive the owner update
	assert.Equal(t, study.ExternalLinks, stored.ExternalLinks)
	assert.Equal(t, study.NotebookFolderId, stored.NotebookFolderId)
}

func TestRepairIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.storage.Err = errors.New("timeout")
	study := f.provisionStudy(t, "Trial One").Study
	f.storage.Err = nil
	r := f.reconciler()

	first, err := r.RepairStudyStorage(context.Background(), study.Id)
	require.NoError(t, err)
	afterFirst := f.folder(t, first.Folder.Id)
	folders := f.countFolders(t)
	creates := f.storage.CallCount("CreateFolder")

	second, err := r.RepairStudyStorage(context.Background(), study.Id)
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, second.Action)
	assert.False(t, second.BackendCreated)
	assert.Equal(t, first.Folder.Id, second.Folder.Id)
	assert.Equal(t, folders, f.countFolders(t))

	afterSecond := f.folder(t, first.Folder.Id)
	assert.Equal(t, afterFirst, afterSecond)
	assert.Equal(t, creates, f.storage.CallCount("CreateFolder"))
}

func TestRepairOverwritesStalePath(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	ref := study.StorageFolder
	ref.Name, ref.Path, ref.Url = "old", "Archive/old", "https://files.test/Archive/old"
	require.NoError(t, implementation.NewFolderReferenceRepository(f.db).Update(context.Background(), ref))

	res, err := f.reconciler().RepairStudyStorage(context.Background(), study.Id)
	require.NoError(t, err)

	assert.Equal(t, ActionRefreshed, res.Action)
	assert.False(t, res.BackendCreated)
	assert.Equal(t, ref.Id, res.Folder.Id)

	stored := f.folder(t, ref.Id)
	assert.Equal(t, "ONC-1 - Trial One", stored.Name)
	assert.Equal(t, "Oncology/ONC-1 - Trial One", stored.Path)
	assert.Equal(t, "https://files.test/Oncology/ONC-1 - Trial One", stored.Url)
	assert.Equal(t, entity.FolderKindStorage, stored.Kind)

	owner, err := implementation.NewStudyRepository(f.db).FindOne(context.Background(), specification.ByID{ID: study.Id})
	require.NoError(t, err)
	assert.Equal(t, ref.Id, *owner.StorageFolderId)
}

func TestRepairAttachesOrphanedReference(t *testing.T) {
	f := newFixture(t)
	f.storage.Err = errors.New("timeout")
	study := f.provisionStudy(t, "Trial One").Study
	f.storage.Err = nil

	live := f.storage.AddFolder(StudyStorageTarget(study))
	orphan := testutil.SeedFolder(t, f.db, entity.FolderKindStorage, "stale-ref", "ONC-1 - Trial One", "Oncology/ONC-1 - Trial One")
	archive := testutil.SeedFolder(t, f.db, entity.FolderKindStorage, "archive-ref", "Archive", "Archive")
	orphan.ParentReferenceId = &archive.Id
	require.NoError(t, implementation.NewFolderReferenceRepository(f.db).Update(context.Background(), orphan))
	folders := f.countFolders(t)

	res, err := f.reconciler().RepairStudyStorage(context.Background(), study.Id)
	require.NoError(t, err)

	assert.Equal(t, ActionAttachedOrphan, res.Action)
	assert.False(t, res.BackendCreated)
	assert.Equal(t, orphan.Id, res.Folder.Id)
	adopted := f.folder(t, orphan.Id)
	assert.Equal(t, live.ReferenceId, adopted.ReferenceId)
	require.NotNil(t, adopted.ParentReferenceId)
	assert.Equal(t, *f.program.StorageFolderId, *adopted.ParentReferenceId)
	assert.Equal(t, folders, f.countFolders(t))
}

func TestRepairSkipsReferencesOwnedElsewhere(t *testing.T) {
	f := newFixture(t)
	f.storage.Err = errors.New("timeout")
	study := f.provisionStudy(t, "Trial One").Study
	f.storage.Err = nil

	// a reference already owned by another study is not an orphan
	taken := testutil.SeedFolder(t, f.db, entity.FolderKindStorage, "x", "ONC-1 - Trial One", "Oncology/ONC-1 - Trial One")
	testutil.SeedStudy(t, f.db, f.program, "ONC-99", "Other", func(s *entity.Study) { s.StorageFolderId = &taken.Id })

	res, err := f.reconciler().RepairStudyStorage(context.Background(), study.Id)
	require.NoError(t, err)
	assert.Equal(t, ActionAttachedNew, res.Action)
	assert.NotEqual(t, taken.Id, res.Folder.Id)
}

func TestRepairSurfacesBackendFailure(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	f.storage.FindFolderErr = errors.New("403 forbidden")

	_, err := f.reconciler().RepairStudyStorage(context.Background(), study.Id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403 forbidden")
}

func TestRepairRequiresConfiguredBackend(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	r := NewReconciler(f.factory, nil, nil, logger.NewNopLogger(), 0)

	_, err := r.RepairStudyStorage(context.Background(), study.Id)
	assert.ErrorIs(t, err, entity.ErrConflict)
	_, err = r.RepairStudyNotebook(context.Background(), study.Id)
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestRepairUnknownStudy(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler().RepairStudyStorage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRepairStudyNotebookRecreatesDeletedFolder(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	ref := study.NotebookFolder
	delete(f.notebook.Folders, ref.ReferenceId)

	res, err := f.reconciler().RepairStudyNotebook(context.Background(), study.Id)
	require.NoError(t, err)

	assert.Equal(t, ActionRefreshed, res.Action)
	assert.True(t, res.BackendCreated)
	assert.Equal(t, ref.Id, res.Folder.Id)
	assert.NotEqual(t, ref.ReferenceId, res.Folder.ReferenceId)
	assert.Equal(t, res.Folder.ReferenceId, f.folder(t, ref.Id).ReferenceId)

	again, err := f.reconciler().RepairStudyNotebook(context.Background(), study.Id)
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, again.Action)
}

func TestRepairStudyNotebookAttachesNewFolder(t *testing.T) {
	f := newFixture(t)
	f.notebook.Err = errors.New("unavailable")
	study := f.provisionStudy(t, "Trial One").Study
	require.Nil(t, study.NotebookFolder)
	f.notebook.Err = nil

	res, err := f.reconciler().RepairStudyNotebook(context.Background(), study.Id)
	require.NoError(t, err)
	assert.Equal(t, ActionAttachedNew, res.Action)
	assert.Equal(t, "ONC-1 - Trial One", res.Folder.Name)
	assert.Equal(t, f.program.NotebookFolderId, res.Folder.ParentReferenceId)
}

func TestRepairLegacyNotebookIsRejected(t *testing.T) {
	f := newFixture(t)
	legacy := testutil.SeedStudy(t, f.db, f.program, "ONC-9", "Imported", func(s *entity.Study) { s.Legacy = true })

	_, err := f.reconciler().RepairStudyNotebook(context.Background(), legacy.Id)
	assert.ErrorIs(t, err, entity.ErrConflict)
	assert.Zero(t, f.notebook.CallCount("CreateFolder"))
}

func TestRepairAssayStorage(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	at := f.histologyType(t)
	f.storage.Err = errors.New("timeout")
	res, err := f.orch.ProvisionAssay(context.Background(), AssayRequest{Assay: &entity.Assay{
		Name: "Histology", StudyId: study.Id, AssayTypeId: at.Id,
		Fields: map[string]interface{}{"slides": 3},
	}})
	require.NoError(t, err)
	require.Nil(t, res.Assay.StorageFolder)
	f.storage.Err = nil

	repaired, err := f.reconciler().RepairAssayStorage(context.Background(), res.Assay.Id)
	require.NoError(t, err)
	assert.Equal(t, "Oncology/ONC-1 - Trial One/ONC-1-1 - Histology", repaired.Folder.Path)
	assert.Equal(t, study.StorageFolder.Id, *repaired.Folder.ParentReferenceId)

	stored, err := LoadAssay(context.Background(), f.factory.NewUnitOfWork(context.Background()), res.Assay.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Fields["slides"])
	assert.Equal(t, repaired.Folder.Id, stored.StorageFolder.Id)
}

func TestRepairAssayNotebookWithoutParentFolder(t *testing.T) {
	f := newFixture(t)
	bare := testutil.SeedStudy(t, f.db, f.program, "ONC-5", "Bare")
	at := f.histologyType(t)
	assay := testutil.SeedAssay(t, f.db, bare, at, "ONC-5-1", "Histology")

	_, err := f.reconciler().RepairAssayNotebook(context.Background(), assay.Id)
	assert.ErrorIs(t, err, entity.ErrConflict)
}
