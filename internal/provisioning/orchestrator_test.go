package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/idgen"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/repository/implementation"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/internal/testutil"
	"study-tracker-be/pkg/notebook"
	"study-tracker-be/pkg/notebook/notebooktest"
	"study-tracker-be/pkg/storage"
	"study-tracker-be/pkg/storage/storagetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	factory       unitofwork.RepositoryFactory
	storage       *storagetest.Backend
	notebook      *notebooktest.Backend
	orch          *Orchestrator
	program       *entity.Program
	programFolder *notebook.Folder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	st := storagetest.New()
	nb := notebooktest.New()

	st.AddFolder(storage.Target{Name: "Oncology"})
	programFolder := nb.AddFolder("Oncology", "")
	storageRef := testutil.SeedFolder(t, db, entity.FolderKindStorage, "ref:Oncology", "Oncology", "Oncology")
	notebookRef := testutil.SeedFolder(t, db, entity.FolderKindNotebook, programFolder.ReferenceId, "Oncology", "Oncology")
	program := testutil.SeedProgram(t, db, "Oncology", "ONC", storageRef, notebookRef)

	f := &fixture{
		db:            db,
		factory:       factory,
		storage:       st,
		notebook:      nb,
		program:       program,
		programFolder: programFolder,
	}
	f.orch = f.orchestrator(idgen.NewGenerator(factory, idgen.Options{}), st, nb)
	return f
}

func (f *fixture) orchestrator(codes idgen.IGenerator, st storage.Backend, nb notebook.Backend) *Orchestrator {
	return NewOrchestrator(f.factory, codes, st, nb, nil, logger.NewNopLogger(), Config{CallTimeout: time.Second})
}

func (f *fixture) newStudy(name string) *entity.Study {
	return &entity.Study{Name: name, ProgramId: f.program.Id, OwnerId: uuid.New()}
}

func (f *fixture) provisionStudy(t *testing.T, name string) *StudyResult {
	t.Helper()
	res, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy(name)})
	require.NoError(t, err)
	return res
}

func (f *fixture) histologyType(t *testing.T) *entity.AssayType {
	t.Helper()
	return testutil.SeedAssayType(t, f.db, "Histology", []entity.AssayTypeField{
		{Name: "slides", DisplayName: "Slides", Type: "integer", Required: true},
		{Name: "stain", DisplayName: "Stain", Type: "string"},
	})
}

func statuses(r Report) map[Step]StepStatus {
	out := map[Step]StepStatus{}
	for _, s := range r.Steps {
		out[s.Step] = s.Status
	}
	return out
}

func TestProvisionStudyAssignsSequentialCodes(t *testing.T) {
	f := newFixture(t)

	first := f.provisionStudy(t, "Trial One")
	second := f.provisionStudy(t, "Trial Two")

	assert.Equal(t, "ONC-1", first.Study.Code)
	assert.Equal(t, "ONC-2", second.Study.Code)
	assert.False(t, first.Report.Degraded())

	var steps []Step
	for _, s := range first.Report.Steps {
		steps = append(steps, s.Step)
	}
	assert.Equal(t, []Step{
		StepValidate, StepAssignCode, StepCreateStorageFolder, StepCreateNotebookFolder,
		StepCreateNotebookEntry, StepPersist, StepLinkEntryUrl,
	}, steps)
}

func TestProvisionStudyCreatesFoldersAndEntry(t *testing.T) {
	f := newFixture(t)
	res := f.provisionStudy(t, "Trial One")
	study := res.Study

	require.NotNil(t, study.StorageFolder)
	assert.Equal(t, "Oncology/ONC-1 - Trial One", study.StorageFolder.Path)
	assert.Equal(t, f.program.StorageFolderId, study.StorageFolder.ParentReferenceId)

	require.NotNil(t, study.NotebookFolder)
	assert.Equal(t, "ONC-1 - Trial One", study.NotebookFolder.Name)
	assert.Equal(t, f.program.NotebookFolderId, study.NotebookFolder.ParentReferenceId)
	live, err := f.notebook.FindFolderById(context.Background(), study.NotebookFolder.ReferenceId)
	require.NoError(t, err)
	assert.Equal(t, f.programFolder.ReferenceId, live.ParentReferenceId)

	require.Len(t, f.notebook.Entries, 1)
	req := f.notebook.Entries[0]
	assert.Equal(t, "ONC-1 Study Summary: Trial One", req.Title)
	assert.Equal(t, study.NotebookFolder.ReferenceId, req.FolderReferenceId)
	assert.Contains(t, req.Fields, notebook.Field{Name: "Program", Value: "Oncology"})

	require.NotNil(t, res.Entry)
	require.Len(t, study.ExternalLinks, 1)
	assert.Equal(t, entity.ExternalLink{Label: SummaryLinkLabel, Url: res.Entry.Url}, study.ExternalLinks[0])

	stored, err := LoadStudy(context.Background(), f.factory.NewUnitOfWork(context.Background()), study.Id)
	require.NoError(t, err)
	assert.Equal(t, study.StorageFolder.Id, stored.StorageFolder.Id)
	assert.Equal(t, study.NotebookFolder.Id, stored.NotebookFolder.Id)
	assert.Equal(t, study.ExternalLinks, stored.ExternalLinks)
	assert.Equal(t, entity.StatusInPlanning, stored.Status)
}

func TestProvisionStudyStorageOutage(t *testing.T) {
	f := newFixture(t)
	f.storage.Err = errors.New("dial tcp: connection refused")

	res, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy("Trial One")})
	require.NoError(t, err)

	assert.Nil(t, res.Study.StorageFolder)
	assert.Nil(t, res.Study.StorageFolderId)
	assert.True(t, res.Report.Degraded())
	step, ok := res.Report.Result(StepCreateStorageFolder)
	require.True(t, ok)
	assert.Equal(t, StatusDegraded, step.Status)
	assert.Contains(t, step.Reason, "connection refused")

	// the notebook side is unaffected
	assert.NotNil(t, res.Study.NotebookFolder)

	stored, err := implementation.NewStudyRepository(f.db).FindOne(context.Background(), specification.ByCode{Code: "ONC-1"})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.StorageFolderId)
}

func TestProvisionStudyNotebookOutage(t *testing.T) {
	f := newFixture(t)
	f.notebook.CreateFolderErr = errors.New("503 service unavailable")

	res, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy("Trial One")})
	require.NoError(t, err)

	got := statuses(res.Report)
	assert.Equal(t, StatusOK, got[StepCreateStorageFolder])
	assert.Equal(t, StatusDegraded, got[StepCreateNotebookFolder])
	assert.Equal(t, StatusSkipped, got[StepCreateNotebookEntry])
	assert.Equal(t, StatusSkipped, got[StepLinkEntryUrl])
	assert.Nil(t, res.Study.NotebookFolder)
	assert.Empty(t, res.Study.ExternalLinks)
}

func TestProvisionStudyEntryFailureKeepsFolder(t *testing.T) {
	f := newFixture(t)
	f.notebook.CreateEntryErr = errors.New("template missing")

	res, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy("Trial One")})
	require.NoError(t, err)

	got := statuses(res.Report)
	assert.Equal(t, StatusOK, got[StepCreateNotebookFolder])
	assert.Equal(t, StatusDegraded, got[StepCreateNotebookEntry])
	assert.NotNil(t, res.Study.NotebookFolder)
	assert.Nil(t, res.Entry)
}

func TestProvisionStudyWithoutNotebookBackend(t *testing.T) {
	f := newFixture(t)
	orch := f.orchestrator(idgen.NewGenerator(f.factory, idgen.Options{}), f.storage, nil)

	res, err := orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy("Trial One")})
	require.NoError(t, err)

	got := statuses(res.Report)
	assert.Equal(t, StatusSkipped, got[StepCreateNotebookFolder])
	assert.Equal(t, StatusSkipped, got[StepCreateNotebookEntry])
	assert.False(t, res.Report.Degraded())
	assert.NotNil(t, res.Study.StorageFolder)
	assert.Nil(t, res.Study.NotebookFolder)
}

func TestProvisionStudyProgramWithoutNotebookFolder(t *testing.T) {
	f := newFixture(t)
	bare := testutil.SeedProgram(t, f.db, "Neurology", "NEU", nil, nil)

	res, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{
		Study: &entity.Study{Name: "Trial One", ProgramId: bare.Id, OwnerId: uuid.New()},
	})
	require.NoError(t, err)

	assert.Equal(t, "NEU-1", res.Study.Code)
	assert.Equal(t, "Neurology/NEU-1 - Trial One", res.Study.StorageFolder.Path)
	step, _ := res.Report.Result(StepCreateNotebookFolder)
	assert.Equal(t, StatusSkipped, step.Status)
	assert.Zero(t, f.notebook.CallCount("CreateFolder"))
}

func TestProvisionStudyAdoptsExistingStorageFolder(t *testing.T) {
	f := newFixture(t)
	existing := f.storage.AddFolder(storage.Target{Name: "ONC-1 - Trial One", ParentPath: "Oncology"})

	res := f.provisionStudy(t, "Trial One")

	require.NotNil(t, res.Study.StorageFolder)
	assert.Equal(t, existing.ReferenceId, res.Study.StorageFolder.ReferenceId)
	step, _ := res.Report.Result(StepCreateStorageFolder)
	assert.Equal(t, StatusOK, step.Status)
	assert.Equal(t, "adopted existing folder", step.Reason)
	assert.Equal(t, 1, f.storage.CallCount("FindFolder"))
}

func TestProvisionStudyDuplicateName(t *testing.T) {
	f := newFixture(t)
	testutil.SeedStudy(t, f.db, f.program, "ONC-7", "Trial One")

	_, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy("trial one")})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrDuplicate)
	assert.Zero(t, f.storage.CallCount("CreateFolder"))
	assert.Zero(t, f.notebook.CallCount("CreateFolder"))
}

func TestProvisionStudyDuplicateExplicitCode(t *testing.T) {
	f := newFixture(t)
	testutil.SeedStudy(t, f.db, f.program, "ONC-1", "Trial One")

	study := f.newStudy("Trial Two")
	study.Code = "ONC-1"
	_, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: study})

	var de *entity.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, entity.ErrorKindDuplicate, de.Kind)
	assert.Equal(t, "code", de.Field)
}

func TestProvisionStudyUnknownProgram(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{
		Study: &entity.Study{Name: "Orphan", ProgramId: uuid.New()},
	})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestProvisionStudyValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy("  ")})
	assert.ErrorIs(t, err, entity.ErrValidation)

	study := f.newStudy("Trial One")
	study.Status = "FINISHED"
	_, err = f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: study})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestProvisionStudyCompleteSetsEndDate(t *testing.T) {
	f := newFixture(t)
	study := f.newStudy("Trial One")
	study.Status = entity.StatusComplete

	res, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: study})
	require.NoError(t, err)
	assert.NotNil(t, res.Study.EndDate)
}

func TestProvisionStudyExternalCode(t *testing.T) {
	f := newFixture(t)
	acme := testutil.SeedCollaborator(t, f.db, "Acme Bio", "ACM")

	study := f.newStudy("Partnered")
	study.CollaboratorId = &acme.Id
	res, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: study})
	require.NoError(t, err)

	require.NotNil(t, res.Study.ExternalCode)
	assert.Equal(t, "ACM-1", *res.Study.ExternalCode)
	assert.Equal(t, acme.Id, res.Study.Collaborator.Id)
}

func TestProvisionLegacyStudy(t *testing.T) {
	f := newFixture(t)
	study := f.newStudy("Imported")
	study.Legacy = true

	res, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{
		Study:       study,
		NotebookUrl: "https://eln.example.com/folders/old-123",
	})
	require.NoError(t, err)

	require.NotNil(t, res.Study.NotebookFolder)
	assert.Equal(t, "https://eln.example.com/folders/old-123", res.Study.NotebookFolder.Url)
	assert.Zero(t, f.notebook.CallCount("CreateFolder"))
	assert.Zero(t, f.notebook.CallCount("CreateEntry"))
	step, _ := res.Report.Result(StepCreateNotebookEntry)
	assert.Equal(t, StatusSkipped, step.Status)
	assert.NotNil(t, res.Study.StorageFolder)
}

func TestProvisionStudyResolvesAuthors(t *testing.T) {
	f := newFixture(t)
	nativeId := "usr_9"
	f.notebook.Users = []notebook.User{
		{ReferenceId: "usr_8", Username: "bob", Email: "bob@lab.test"},
		{ReferenceId: "usr_9", Username: "alice", Email: "alice@lab.test"},
		{ReferenceId: "usr_10", Username: "carol", Email: "carol@lab.test"},
	}
	alice := testutil.SeedUser(t, f.db, "alice", "alice@lab.test", &nativeId)
	carol := testutil.SeedUser(t, f.db, "carol", "CAROL@lab.test", nil)
	unknown := testutil.SeedUser(t, f.db, "dave", "dave@lab.test", nil)

	study := f.newStudy("Trial One")
	study.OwnerId = alice.Id
	study.UserIds = []uuid.UUID{alice.Id, carol.Id, unknown.Id, uuid.New()}
	_, err := f.orch.ProvisionStudy(context.Background(), StudyRequest{Study: study, TemplateId: "tpl_1"})
	require.NoError(t, err)

	require.Len(t, f.notebook.Entries, 1)
	assert.Equal(t, []string{"usr_9", "usr_10"}, f.notebook.Entries[0].AuthorIds)
	assert.Equal(t, "tpl_1", f.notebook.Entries[0].TemplateId)
}

// scriptedCodes hands out a fixed sequence of codes, simulating a concurrent
// writer taking the first candidate.
type scriptedCodes struct {
	codes []string
	calls int
}

func (s *scriptedCodes) next() string {
	code := s.codes[min(s.calls, len(s.codes)-1)]
	s.calls++
	return code
}

func (s *scriptedCodes) GenerateStudyCode(context.Context, *entity.Study) (string, error) {
	return s.next(), nil
}

func (s *scriptedCodes) GenerateAssayCode(context.Context, *entity.Assay) (string, error) {
	return s.next(), nil
}

func (s *scriptedCodes) GenerateExternalCode(context.Context, *entity.Study) (string, error) {
	return "EXT-1", nil
}

func TestProvisionStudyRetriesCodeCollisionBeforeExternalResources(t *testing.T) {
	f := newFixture(t)
	testutil.SeedStudy(t, f.db, f.program, "ONC-1", "Concurrent")
	codes := &scriptedCodes{codes: []string{"ONC-1", "ONC-2"}}
	orch := f.orchestrator(codes, nil, nil)

	res, err := orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy("Trial One")})
	require.NoError(t, err)
	assert.Equal(t, "ONC-2", res.Study.Code)
	assert.Equal(t, 2, codes.calls)
}

func TestProvisionStudyCodeCollisionAfterExternalResourcesIsFatal(t *testing.T) {
	f := newFixture(t)
	testutil.SeedStudy(t, f.db, f.program, "ONC-1", "Concurrent")
	orch := f.orchestrator(&scriptedCodes{codes: []string{"ONC-1", "ONC-2"}}, f.storage, f.notebook)

	_, err := orch.ProvisionStudy(context.Background(), StudyRequest{Study: f.newStudy("Trial One")})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrDuplicate)

	n, err := implementation.NewStudyRepository(f.db).Count(context.Background(), specification.ByProgramID{ProgramID: f.program.Id})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	// the folder created before the failed write is left behind
	assert.Contains(t, f.storage.Folders, "Oncology/ONC-1 - Trial One")
}

func TestProvisionAssay(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	histology := f.histologyType(t)

	res, err := f.orch.ProvisionAssay(context.Background(), AssayRequest{Assay: &entity.Assay{
		Name:        "Histology",
		StudyId:     study.Id,
		AssayTypeId: histology.Id,
		OwnerId:     uuid.New(),
		Fields:      map[string]interface{}{"slides": 4},
	}})
	require.NoError(t, err)

	assay := res.Assay
	assert.Equal(t, "ONC-1-1", assay.Code)
	assert.Equal(t, "Oncology/ONC-1 - Trial One/ONC-1-1 - Histology", assay.StorageFolder.Path)
	assert.Equal(t, study.NotebookFolder.Id, *assay.NotebookFolder.ParentReferenceId)

	require.Len(t, f.notebook.Entries, 2)
	req := f.notebook.Entries[1]
	assert.Equal(t, "ONC-1-1 Assay Summary: Histology", req.Title)
	assert.Contains(t, req.Fields, notebook.Field{Name: "Assay Type", Value: "Histology"})
	assert.Contains(t, req.Fields, notebook.Field{Name: "Study", Value: "ONC-1"})

	stored, err := LoadAssay(context.Background(), f.factory.NewUnitOfWork(context.Background()), assay.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stored.Fields["slides"])
	assert.Equal(t, assay.ExternalLinks, stored.ExternalLinks)

	second, err := f.orch.ProvisionAssay(context.Background(), AssayRequest{Assay: &entity.Assay{
		Name:        "Histology Repeat",
		StudyId:     study.Id,
		AssayTypeId: histology.Id,
		Fields:      map[string]interface{}{"slides": "12"},
	}})
	require.Error(t, err, "integer fields do not accept strings")
	assert.Nil(t, second)
}

func TestProvisionAssayMissingRequiredField(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	histology := f.histologyType(t)
	repo := implementation.NewAssayRepository(f.db)
	before, err := repo.Count(context.Background())
	require.NoError(t, err)

	_, err = f.orch.ProvisionAssay(context.Background(), AssayRequest{Assay: &entity.Assay{
		Name:        "Histology",
		StudyId:     study.Id,
		AssayTypeId: histology.Id,
		Fields:      map[string]interface{}{"stain": "H&E"},
	}})

	var de *entity.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, entity.ErrorKindValidation, de.Kind)
	assert.Equal(t, "slides", de.Field)

	after, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.storage.CallCount("CreateFolder"), "only the study folder was created")
}

func TestProvisionAssayUndeclaredRequiredField(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	at := testutil.SeedAssayType(t, f.db, "Imaging", nil, "protocol")

	_, err := f.orch.ProvisionAssay(context.Background(), AssayRequest{Assay: &entity.Assay{
		Name: "Imaging", StudyId: study.Id, AssayTypeId: at.Id,
	}})
	var de *entity.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "protocol", de.Field)

	res, err := f.orch.ProvisionAssay(context.Background(), AssayRequest{Assay: &entity.Assay{
		Name: "Imaging", StudyId: study.Id, AssayTypeId: at.Id,
		Fields: map[string]interface{}{"protocol": "P-7"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "P-7", res.Assay.Fields["protocol"])
}

func TestProvisionAssayCopiesTypeTasks(t *testing.T) {
	f := newFixture(t)
	study := f.provisionStudy(t, "Trial One").Study
	at := f.histologyType(t)
	at.Tasks = []string{"Section", "Stain", "Scan"}
	require.NoError(t, implementation.NewAssayTypeRepository(f.db).Update(context.Background(), at))

	res, err := f.orch.ProvisionAssay(context.Background(), AssayRequest{Assay: &entity.Assay{
		Name: "Histology", StudyId: study.Id, AssayTypeId: at.Id,
		Fields: map[string]interface{}{"slides": 2},
	}})
	require.NoError(t, err)
	require.Len(t, res.Assay.Tasks, 3)
	assert.Equal(t, entity.AssayTask{Label: "Scan", Status: "TODO", Order: 2}, res.Assay.Tasks[2])
}

func TestProvisionAssayUnderLegacyStudy(t *testing.T) {
	f := newFixture(t)
	legacy := testutil.SeedStudy(t, f.db, f.program, "ONC-9", "Imported", func(s *entity.Study) { s.Legacy = true })
	at := f.histologyType(t)

	res, err := f.orch.ProvisionAssay(context.Background(), AssayRequest{Assay: &entity.Assay{
		Name: "Histology", StudyId: legacy.Id, AssayTypeId: at.Id,
		Fields: map[string]interface{}{"slides": 1},
	}})
	require.NoError(t, err)
	assert.Equal(t, "ONC-9-1", res.Assay.Code)
	assert.Nil(t, res.Assay.NotebookFolder)
	assert.Zero(t, f.notebook.CallCount("CreateEntry"))
}

func TestAssaySchema(t *testing.T) {
	schema := AssaySchema(&entity.AssayType{
		Fields:         []entity.AssayTypeField{{Name: "slides", Type: "integer", Required: true}},
		RequiredFields: []string{"protocol"},
	})
	require.Len(t, schema.Fields, 1)
	assert.EqualValues(t, "INTEGER", schema.Fields[0].Type)
	assert.True(t, schema.Fields[0].Required)
	assert.Equal(t, []string{"protocol"}, schema.RequiredFields)
}
