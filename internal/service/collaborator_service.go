// FILE: internal/service/collaborator_service.go
package service

import (
	"context"
	"strings"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/database"

	"github.com/google/uuid"
)

type ICollaboratorService interface {
	GetAll(ctx context.Context) ([]*dto.CollaboratorResponse, error)
	Create(ctx context.Context, req *dto.CreateCollaboratorRequest) (*dto.CollaboratorResponse, error)
}

type collaboratorService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCollaboratorService(uowFactory unitofwork.RepositoryFactory) ICollaboratorService {
	return &collaboratorService{uowFactory: uowFactory}
}

func (s *collaboratorService) GetAll(ctx context.Context) ([]*dto.CollaboratorResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	collaborators, err := uow.CollaboratorRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.CollaboratorResponse, 0, len(collaborators))
	for _, c := range collaborators {
		res = append(res, collaboratorResponse(c))
	}
	return res, nil
}

func (s *collaboratorService) Create(ctx context.Context, req *dto.CreateCollaboratorRequest) (*dto.CollaboratorResponse, error) {
	name := strings.TrimSpace(req.Name)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.CollaboratorRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entity.NewDuplicateError("collaborator", "name", name)
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = name
	}
	collaborator := &entity.Collaborator{
		Id:         uuid.New(),
		Name:       name,
		Label:      label,
		CodePrefix: strings.ToUpper(strings.TrimSpace(req.CodePrefix)),
		Active:     true,
		CreatedAt:  time.Now(),
	}
	if err := uow.CollaboratorRepository().Create(ctx, collaborator); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, entity.NewDuplicateError("collaborator", "name", name)
		}
		return nil, err
	}
	return collaboratorResponse(collaborator), nil
}
