package contract

import (
	"context"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
)

type StudyRepository interface {
	Create(ctx context.Context, study *entity.Study) error
	Update(ctx context.Context, study *entity.Study) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Study, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Study, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindCodes returns only the code column of matching studies.
	FindCodes(ctx context.Context, specs ...specification.Specification) ([]string, error)
	FindExternalCodes(ctx context.Context, specs ...specification.Specification) ([]string, error)
}
