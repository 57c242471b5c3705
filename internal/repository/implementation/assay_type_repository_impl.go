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

type AssayTypeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssayTypeMapper
}

func NewAssayTypeRepository(db *gorm.DB) contract.AssayTypeRepository {
	return &AssayTypeRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssayTypeMapper(),
	}
}

func (r *AssayTypeRepositoryImpl) Create(ctx context.Context, assayType *entity.AssayType) error {
	m := r.mapper.ToModel(assayType)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*assayType = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssayTypeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssayType, error) {
	var m model.AssayType
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AssayTypeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssayType, error) {
	var models []*model.AssayType
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AssayTypeRepositoryImpl) Update(ctx context.Context, assayType *entity.AssayType) error {
	m := r.mapper.ToModel(assayType)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*assayType = *r.mapper.ToEntity(m)
	return nil
}
