package contract

import (
	"context"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
)

type AssayRepository interface {
	Create(ctx context.Context, assay *entity.Assay) error
	Update(ctx context.Context, assay *entity.Assay) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assay, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assay, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindCodes(ctx context.Context, specs ...specification.Specification) ([]string, error)
}

type AssayTypeRepository interface {
	Create(ctx context.Context, assayType *entity.AssayType) error
	Update(ctx context.Context, assayType *entity.AssayType) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssayType, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssayType, error)
}
