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

type ProgramRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProgramMapper
}

func NewProgramRepository(db *gorm.DB) contract.ProgramRepository {
	return &ProgramRepositoryImpl{
		db:     db,
		mapper: mapper.NewProgramMapper(),
	}
}

func (r *ProgramRepositoryImpl) Create(ctx context.Context, program *entity.Program) error {
	m := r.mapper.ToModel(program)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*program = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProgramRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Program, error) {
	var m model.Program
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProgramRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Program, error) {
	var models []*model.Program
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProgramRepositoryImpl) Update(ctx context.Context, program *entity.Program) error {
	m := r.mapper.ToModel(program)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*program = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProgramRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Program{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
