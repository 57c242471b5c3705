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

type FolderReferenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FolderReferenceMapper
}

func NewFolderReferenceRepository(db *gorm.DB) contract.FolderReferenceRepository {
	return &FolderReferenceRepositoryImpl{
		db:     db,
		mapper: mapper.NewFolderReferenceMapper(),
	}
}

func (r *FolderReferenceRepositoryImpl) Create(ctx context.Context, folder *entity.FolderReference) error {
	m := r.mapper.ToModel(folder)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*folder = *r.mapper.ToEntity(m)
	return nil
}

func (r *FolderReferenceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FolderReference, error) {
	var m model.FolderReference
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FolderReferenceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FolderReference, error) {
	var models []*model.FolderReference
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FolderReferenceRepositoryImpl) Update(ctx context.Context, folder *entity.FolderReference) error {
	m := r.mapper.ToModel(folder)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*folder = *r.mapper.ToEntity(m)
	return nil
}

func (r *FolderReferenceRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.FolderReference{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
