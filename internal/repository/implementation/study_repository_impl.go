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

type StudyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StudyMapper
}

func NewStudyRepository(db *gorm.DB) contract.StudyRepository {
	return &StudyRepositoryImpl{
		db:     db,
		mapper: mapper.NewStudyMapper(),
	}
}

func (r *StudyRepositoryImpl) Create(ctx context.Context, study *entity.Study) error {
	m := r.mapper.ToModel(study)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*study = *r.mapper.ToEntity(m)
	return nil
}

func (r *StudyRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Study, error) {
	var m model.Study
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StudyRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Study, error) {
	var models []*model.Study
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *StudyRepositoryImpl) Update(ctx context.Context, study *entity.Study) error {
	m := r.mapper.ToModel(study)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*study = *r.mapper.ToEntity(m)
	return nil
}

func (r *StudyRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Study{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StudyRepositoryImpl) FindCodes(ctx context.Context, specs ...specification.Specification) ([]string, error) {
	var codes []string
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Study{}), specs...)
	if err := query.Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *StudyRepositoryImpl) FindExternalCodes(ctx context.Context, specs ...specification.Specification) ([]string, error) {
	var codes []string
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Study{}), specs...)
	if err := query.Where("external_code IS NOT NULL").Pluck("external_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
