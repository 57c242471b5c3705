package service

import (
	"context"
	"testing"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/testutil"
	"study-tracker-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createAssay(t *testing.T, study *dto.StudyResponse, assayType *entity.AssayType) *dto.CreateAssayResponse {
	t.Helper()
	res, err := f.assayService().Create(context.Background(), f.program.CreatedById, &dto.CreateAssayRequest{
		StudyId:     study.Id,
		AssayTypeId: assayType.Id,
		Name:        "Slide Scan",
		Fields:      map[string]interface{}{"slides": 4},
	})
	require.NoError(t, err)
	return res
}

func histology(t *testing.T, f *fixture) *entity.AssayType {
	return testutil.SeedAssayType(t, f.db, "Histology", []entity.AssayTypeField{
		{Name: "slides", DisplayName: "Slides", Type: "INTEGER", Required: true},
	})
}

func TestAssayCreateNotifies(t *testing.T) {
	f := newFixture(t)
	study := f.createStudy(t, "Trial One").Study
	res := f.createAssay(t, study, histology(t, f))

	assert.Equal(t, "ONC-1-1", res.Assay.Code)
	assert.Equal(t, "Histology", res.Assay.AssayTypeName)
	assert.Equal(t, "ONC-1", res.Assay.StudyCode)
	assert.EqualValues(t, 4, res.Assay.Fields["slides"])
	require.NotNil(t, res.Assay.StorageFolder)
	assert.Equal(t, "Oncology/ONC-1 - Trial One/ONC-1-1 - Slide Scan", res.Assay.StorageFolder.Path)

	require.Len(t, f.jobs.messages, 2)
	assert.Equal(t, dto.PublishSummaryMessage{EntityType: EntityTypeAssay, EntityId: res.Assay.Id}, f.jobs.messages[1])
	assert.Equal(t, []string{events.TypeStudyCreated, events.TypeAssayCreated}, f.events.types())
}

func TestAssayUpdateRevalidatesFields(t *testing.T) {
	f := newFixture(t)
	study := f.createStudy(t, "Trial One").Study
	created := f.createAssay(t, study, histology(t, f))
	svc := f.assayService()

	_, err := svc.Update(context.Background(), &dto.UpdateAssayRequest{
		Id:     created.Assay.Id,
		Fields: map[string]interface{}{"slides": "many"},
	})
	var domainErr *entity.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, entity.ErrorKindValidation, domainErr.Kind)
	assert.Equal(t, "slides", domainErr.Field)

	res, err := svc.Update(context.Background(), &dto.UpdateAssayRequest{
		Id:     created.Assay.Id,
		Fields: map[string]interface{}{"slides": 6},
		Tasks:  []dto.AssayTaskRequest{{Label: "Stain"}, {Label: "Scan", Status: "DONE"}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 6, res.Fields["slides"])
	assert.Equal(t, []dto.AssayTaskResponse{
		{Label: "Stain", Status: "TODO", Order: 0},
		{Label: "Scan", Status: "DONE", Order: 1},
	}, res.Tasks)

	shown, err := svc.Show(context.Background(), "ONC-1-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), shown.Fields["slides"])
	assert.Len(t, shown.Tasks, 2)
}

func TestAssayGetAllByStudy(t *testing.T) {
	f := newFixture(t)
	study := f.createStudy(t, "Trial One").Study
	f.createAssay(t, study, histology(t, f))

	assays, err := f.assayService().GetAll(context.Background(), &study.Id)
	require.NoError(t, err)
	require.Len(t, assays, 1)
	assert.Equal(t, "ONC-1-1", assays[0].Code)
	assert.Equal(t, "Histology", assays[0].AssayTypeName)
	assert.Equal(t, int64(4), assays[0].Fields["slides"])
}
