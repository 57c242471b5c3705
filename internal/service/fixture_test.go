package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/idgen"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/internal/testutil"
	"study-tracker-be/pkg/events"
	"study-tracker-be/pkg/notebook/notebooktest"
	"study-tracker-be/pkg/storage"
	"study-tracker-be/pkg/storage/storagetest"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingJobs struct {
	mu       sync.Mutex
	messages []dto.PublishSummaryMessage
}

func (r *recordingJobs) Publish(_ context.Context, payload []byte) error {
	var msg dto.PublishSummaryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	factory  unitofwork.RepositoryFactory
	storage  *storagetest.Backend
	notebook *notebooktest.Backend
	jobs     *recordingJobs
	events   *recordingEvents
	program  *entity.Program
	orch     *provisioning.Orchestrator
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

	return &fixture{
		db:       db,
		factory:  factory,
		storage:  st,
		notebook: nb,
		jobs:     &recordingJobs{},
		events:   &recordingEvents{},
		program:  program,
		orch: provisioning.NewOrchestrator(factory, idgen.NewGenerator(factory, idgen.Options{}), st, nb, nil,
			logger.NewNopLogger(), provisioning.Config{CallTimeout: time.Second}),
	}
}

func (f *fixture) studyService() IStudyService {
	return NewStudyService(f.factory, f.orch, f.jobs, f.events, logger.NewNopLogger())
}

func (f *fixture) assayService() IAssayService {
	return NewAssayService(f.factory, f.orch, f.jobs, f.events, logger.NewNopLogger())
}

func (f *fixture) folderService() IFolderService {
	reconciler := provisioning.NewReconciler(f.factory, f.storage, f.notebook, logger.NewNopLogger(), time.Second)
	return NewFolderService(f.factory, f.storage, reconciler, f.events, logger.NewNopLogger(), 2, time.Second)
}

func (f *fixture) createStudy(t *testing.T, name string) *dto.CreateStudyResponse {
	t.Helper()
	res, err := f.studyService().Create(context.Background(), f.program.CreatedById, &dto.CreateStudyRequest{
		ProgramId: f.program.Id,
		Name:      name,
	})
	require.NoError(t, err)
	return res
}
