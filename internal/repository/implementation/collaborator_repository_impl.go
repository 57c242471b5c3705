package implementation

import (
	"context"
	"errors"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/mapper"
	"study-tracker-be/internal/model"
	"study-tracker-be/internal/repository/contract"
	"study-tracker-be/internal/repository/specification"

	"gorm.io/gorm"
)

type CollaboratorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CollaboratorMapper
}

func NewCollaboratorRepository(db *gorm.DB) contract.CollaboratorRepository {
	return &CollaboratorRepositoryImpl{
		db:     db,
		mapper: mapper.NewCollaboratorMapper(),
	}
}

func (r *CollaboratorRepositoryImpl) Create(ctx context.Context, collaborator *entity.Collaborator) error {
	m := r.mapper.ToModel(collaborator)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*collaborator = *r.mapper.ToEntity(m)
	return nil
}

func (r *CollaboratorRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collaborator, error) {
	var m model.Collaborator
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CollaboratorRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collaborator, error) {
	var models []*model.Collaborator
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
