package contract

import (
	"context"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
)

type ProgramRepository interface {
	Create(ctx context.Context, program *entity.Program) error
	Update(ctx context.Context, program *entity.Program) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Program, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Program, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type CollaboratorRepository interface {
	Create(ctx context.Context, collaborator *entity.Collaborator) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collaborator, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collaborator, error)
}
