package service

import (
	"context"
	"strings"
	"testing"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/internal/testutil"
	"study-tracker-be/pkg/events"
	"study-tracker-be/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderUploadAndList(t *testing.T) {
	f := newFixture(t)
	study := f.createStudy(t, "Trial One").Study
	svc := f.folderService()

	file, err := svc.UploadFile(context.Background(), EntityTypeStudy, study.Id, storage.Upload{
		Name:        "protocol.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Oncology/ONC-1 - Trial One/protocol.pdf", file.Path)
	assert.EqualValues(t, 4, file.Size)

	listing, err := svc.ListFiles(context.Background(), EntityTypeStudy, study.Id)
	require.NoError(t, err)
	assert.Equal(t, "Oncology/ONC-1 - Trial One", listing.Path)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, "protocol.pdf", listing.Files[0].Name)
}

func TestFolderUploadWithoutStorageFolder(t *testing.T) {
	f := newFixture(t)
	study := testutil.SeedStudy(t, f.db, f.program, "ONC-7", "Unfiled")

	_, err := f.folderService().UploadFile(context.Background(), EntityTypeStudy, study.Id, storage.Upload{
		Name: "notes.txt",
		Body: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = f.folderService().ListFiles(context.Background(), EntityTypeStudy, study.Id)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestFolderRepairPublishesEvent(t *testing.T) {
	f := newFixture(t)
	study := testutil.SeedStudy(t, f.db, f.program, "ONC-7", "Unfiled")
	svc := f.folderService()

	res, err := svc.Repair(context.Background(), EntityTypeStudy, study.Id, entity.FolderKindStorage)
	require.NoError(t, err)
	assert.Equal(t, string(provisioning.ActionAttachedNew), res.Action)
	assert.True(t, res.BackendCreated)
	require.NotNil(t, res.Folder)
	assert.Equal(t, "Oncology/ONC-7 - Unfiled", res.Folder.Path)
	assert.Equal(t, []string{events.TypeFolderRepaired}, f.events.types())

	again, err := svc.Repair(context.Background(), EntityTypeStudy, study.Id, entity.FolderKindStorage)
	require.NoError(t, err)
	assert.Equal(t, string(provisioning.ActionUnchanged), again.Action)
	assert.Len(t, f.events.types(), 1)
}

func TestFolderRepairRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)
	_, err := f.folderService().Repair(context.Background(), EntityTypeStudy, f.program.Id, entity.FolderKind("TAPE"))
	assert.ErrorIs(t, err, entity.ErrValidation)
}
