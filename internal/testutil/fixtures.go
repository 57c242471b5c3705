package testutil

import (
	"context"
	"testing"
	"time"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/implementation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func SeedUser(t testing.TB, db *gorm.DB, username, email string, notebookUserId *string) *entity.User {
	t.Helper()
	u := &entity.User{
		Id:             uuid.New(),
		Username:       username,
		Email:          email,
		DisplayName:    username,
		Active:         true,
		NotebookUserId: notebookUserId,
		CreatedAt:      time.Now(),
	}
	if err := implementation.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedFolder(t testing.TB, db *gorm.DB, kind entity.FolderKind, referenceId, name, path string) *entity.FolderReference {
	t.Helper()
	f := &entity.FolderReference{
		Id:          uuid.New(),
		Kind:        kind,
		ReferenceId: referenceId,
		Name:        name,
		Path:        path,
		Url:         "https://example.test/" + referenceId,
		CreatedAt:   time.Now(),
	}
	if err := implementation.NewFolderReferenceRepository(db).Create(context.Background(), f); err != nil {
		t.Fatalf("seed folder: %v", err)
	}
	return f
}

// SeedProgram stores a program, optionally pointing at existing folder references.
func SeedProgram(t testing.TB, db *gorm.DB, name, code string, storage, notebook *entity.FolderReference) *entity.Program {
	t.Helper()
	p := &entity.Program{
		Id:          uuid.New(),
		Name:        name,
		Code:        code,
		Active:      true,
		CreatedById: uuid.New(),
		CreatedAt:   time.Now(),
	}
	if storage != nil {
		p.StorageFolderId = &storage.Id
	}
	if notebook != nil {
		p.NotebookFolderId = &notebook.Id
	}
	if err := implementation.NewProgramRepository(db).Create(context.Background(), p); err != nil {
		t.Fatalf("seed program: %v", err)
	}
	return p
}

func SeedCollaborator(t testing.TB, db *gorm.DB, name, prefix string) *entity.Collaborator {
	t.Helper()
	c := &entity.Collaborator{
		Id:         uuid.New(),
		Name:       name,
		Label:      name,
		CodePrefix: prefix,
		Active:     true,
		CreatedAt:  time.Now(),
	}
	if err := implementation.NewCollaboratorRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("seed collaborator: %v", err)
	}
	return c
}

// SeedStudy stores a study row directly, bypassing provisioning.
func SeedStudy(t testing.TB, db *gorm.DB, program *entity.Program, code, name string, mutate ...func(*entity.Study)) *entity.Study {
	t.Helper()
	s := &entity.Study{
		Id:        uuid.New(),
		Code:      code,
		Name:      name,
		Status:    entity.StatusActive,
		ProgramId: program.Id,
		Active:    true,
		StartDate: time.Now().UTC(),
		OwnerId:   uuid.New(),
		CreatedAt: time.Now(),
	}
	for _, fn := range mutate {
		fn(s)
	}
	if err := implementation.NewStudyRepository(db).Create(context.Background(), s); err != nil {
		t.Fatalf("seed study: %v", err)
	}
	s.Program = program
	return s
}

func SeedAssayType(t testing.TB, db *gorm.DB, name string, fields []entity.AssayTypeField, required ...string) *entity.AssayType {
	t.Helper()
	at := &entity.AssayType{
		Id:             uuid.New(),
		Name:           name,
		Active:         true,
		Fields:         fields,
		RequiredFields: required,
		CreatedAt:      time.Now(),
	}
	if err := implementation.NewAssayTypeRepository(db).Create(context.Background(), at); err != nil {
		t.Fatalf("seed assay type: %v", err)
	}
	return at
}

// SeedAssay stores an assay row directly, bypassing provisioning.
func SeedAssay(t testing.TB, db *gorm.DB, study *entity.Study, assayType *entity.AssayType, code, name string) *entity.Assay {
	t.Helper()
	a := &entity.Assay{
		Id:          uuid.New(),
		Code:        code,
		Name:        name,
		Status:      entity.StatusActive,
		StudyId:     study.Id,
		AssayTypeId: assayType.Id,
		Active:      true,
		StartDate:   time.Now().UTC(),
		OwnerId:     uuid.New(),
		CreatedAt:   time.Now(),
	}
	if err := implementation.NewAssayRepository(db).Create(context.Background(), a); err != nil {
		t.Fatalf("seed assay: %v", err)
	}
	a.Study = study
	a.AssayType = assayType
	return a
}
