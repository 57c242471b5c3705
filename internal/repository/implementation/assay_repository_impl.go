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

type AssayRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssayMapper
}

func NewAssayRepository(db *gorm.DB) contract.AssayRepository {
	return &AssayRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssayMapper(),
	}
}

func (r *AssayRepositoryImpl) Create(ctx context.Context, assay *entity.Assay) error {
	m := r.mapper.ToModel(assay)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*assay = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssayRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assay, error) {
	var m model.Assay
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AssayRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assay, error) {
	var models []*model.Assay
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AssayRepositoryImpl) Update(ctx context.Context, assay *entity.Assay) error {
	m := r.mapper.ToModel(assay)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*assay = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssayRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Assay{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AssayRepositoryImpl) FindCodes(ctx context.Context, specs ...specification.Specification) ([]string, error) {
	var codes []string
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Assay{}), specs...)
	if err := query.Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
