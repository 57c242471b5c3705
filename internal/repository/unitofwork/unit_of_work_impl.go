package unitofwork

import (
	"context"
	"fmt"

	"study-tracker-be/internal/repository/contract"
	"study-tracker-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

// Rollback is a no-op once the transaction has been committed, so callers can
// defer it unconditionally.
func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) ProgramRepository() contract.ProgramRepository {
	return implementation.NewProgramRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CollaboratorRepository() contract.CollaboratorRepository {
	return implementation.NewCollaboratorRepository(u.getDB())
}

func (u *UnitOfWorkImpl) StudyRepository() contract.StudyRepository {
	return implementation.NewStudyRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AssayRepository() contract.AssayRepository {
	return implementation.NewAssayRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AssayTypeRepository() contract.AssayTypeRepository {
	return implementation.NewAssayTypeRepository(u.getDB())
}

func (u *UnitOfWorkImpl) FolderReferenceRepository() contract.FolderReferenceRepository {
	return implementation.NewFolderReferenceRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}
