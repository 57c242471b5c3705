package unitofwork_test

import (
	"context"
	"testing"
	"time"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/internal/testutil"
	"study-tracker-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudy(programId uuid.UUID, code string) *entity.Study {
	return &entity.Study{
		Id:        uuid.New(),
		Code:      code,
		Name:      "Study " + code,
		Status:    entity.StatusActive,
		ProgramId: programId,
		Active:    true,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		OwnerId:   uuid.New(),
		CreatedAt: time.Now(),
	}
}

func TestCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	program := testutil.SeedProgram(t, db, "Oncology", "ONC", nil, nil)
	factory := unitofwork.NewRepositoryFactory(db)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.StudyRepository().Create(ctx, newStudy(program.Id, "ONC-1")))
	require.NoError(t, uow.Rollback())

	uow = factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.StudyRepository().Create(ctx, newStudy(program.Id, "ONC-2")))
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback())

	codes, err := factory.NewUnitOfWork(ctx).StudyRepository().FindCodes(ctx, specification.ByProgramID{ProgramID: program.Id})
	require.NoError(t, err)
	assert.Equal(t, []string{"ONC-2"}, codes)
}

func TestBeginTwice(t *testing.T) {
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(testutil.NewDB(t)).NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	assert.Error(t, uow.Begin(ctx))
	assert.Error(t, unitofwork.NewRepositoryFactory(testutil.NewDB(t)).NewUnitOfWork(ctx).Commit())
}

func TestStudyRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	program := testutil.SeedProgram(t, db, "Oncology", "ONC", nil, nil)
	repo := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).StudyRepository()

	study := newStudy(program.Id, "ONC-1")
	member := uuid.New()
	study.UserIds = []uuid.UUID{member}
	study.Keywords = []string{"PD-1", "tumour"}
	study.Attributes = map[string]string{"phase": "II"}
	study.ExternalLinks = []entity.ExternalLink{{Label: "Protocol", Url: "https://docs.test/p"}}
	require.NoError(t, repo.Create(ctx, study))

	found, err := repo.FindOne(ctx, specification.ByCode{Code: "ONC-1"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []uuid.UUID{member}, found.UserIds)
	assert.Equal(t, []string{"PD-1", "tumour"}, found.Keywords)
	assert.Equal(t, "II", found.Attributes["phase"])
	require.Len(t, found.ExternalLinks, 1)
	assert.Equal(t, "Protocol", found.ExternalLinks[0].Label)

	missing, err := repo.FindOne(ctx, specification.ByCode{Code: "ONC-9"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDuplicateCodeIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	program := testutil.SeedProgram(t, db, "Oncology", "ONC", nil, nil)
	repo := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).StudyRepository()

	require.NoError(t, repo.Create(ctx, newStudy(program.Id, "ONC-1")))
	err := repo.Create(ctx, newStudy(program.Id, "ONC-1"))
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}
