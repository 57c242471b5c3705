package unitofwork

import (
	"context"

	"study-tracker-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProgramRepository() contract.ProgramRepository
	CollaboratorRepository() contract.CollaboratorRepository
	StudyRepository() contract.StudyRepository
	AssayRepository() contract.AssayRepository
	AssayTypeRepository() contract.AssayTypeRepository
	FolderReferenceRepository() contract.FolderReferenceRepository
	UserRepository() contract.UserRepository
}
