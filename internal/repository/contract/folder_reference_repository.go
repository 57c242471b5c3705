package contract

import (
	"context"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
)

type FolderReferenceRepository interface {
	Create(ctx context.Context, folder *entity.FolderReference) error
	Update(ctx context.Context, folder *entity.FolderReference) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FolderReference, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FolderReference, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
