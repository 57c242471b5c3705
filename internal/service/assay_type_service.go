// FILE: internal/service/assay_type_service.go
package service

import (
	"context"
	"strings"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/assayfield"
	"study-tracker-be/pkg/database"

	"github.com/google/uuid"
)

type IAssayTypeService interface {
	GetAll(ctx context.Context) ([]*dto.AssayTypeResponse, error)
	Create(ctx context.Context, req *dto.CreateAssayTypeRequest) (*dto.AssayTypeResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.AssayTypeResponse, error)
}

type assayTypeService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAssayTypeService(uowFactory unitofwork.RepositoryFactory) IAssayTypeService {
	return &assayTypeService{uowFactory: uowFactory}
}

func (s *assayTypeService) GetAll(ctx context.Context) ([]*dto.AssayTypeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	types, err := uow.AssayTypeRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.AssayTypeResponse, 0, len(types))
	for _, at := range types {
		res = append(res, assayTypeResponse(at))
	}
	return res, nil
}

func (s *assayTypeService) Create(ctx context.Context, req *dto.CreateAssayTypeRequest) (*dto.AssayTypeResponse, error) {
	name := strings.TrimSpace(req.Name)
	assayType := &entity.AssayType{
		Id:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Active:      true,
		Tasks:       req.Tasks,
		CreatedAt:   time.Now(),
	}

	seen := make(map[string]bool, len(req.Fields))
	for _, f := range req.Fields {
		key := strings.ToLower(f.Name)
		if seen[key] {
			return nil, entity.NewValidationError("assay_type", f.Name, "field declared twice", nil)
		}
		seen[key] = true
		fieldType := assayfield.Type(strings.ToUpper(f.Type))
		if !fieldType.Valid() {
			return nil, entity.NewValidationError("assay_type", f.Name, "unknown field type "+f.Type, nil)
		}
		displayName := f.DisplayName
		if displayName == "" {
			displayName = f.Name
		}
		assayType.Fields = append(assayType.Fields, entity.AssayTypeField{
			Name:        f.Name,
			DisplayName: displayName,
			Type:        string(fieldType),
			Required:    f.Required,
			Description: f.Description,
		})
	}
	for _, r := range req.RequiredFields {
		assayType.RequiredFields = appendUnique(assayType.RequiredFields, strings.TrimSpace(r))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.AssayTypeRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entity.NewDuplicateError("assay_type", "name", name)
	}
	if err := uow.AssayTypeRepository().Create(ctx, assayType); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, entity.NewDuplicateError("assay_type", "name", name)
		}
		return nil, err
	}
	return assayTypeResponse(assayType), nil
}

func (s *assayTypeService) Show(ctx context.Context, id uuid.UUID) (*dto.AssayTypeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	assayType, err := uow.AssayTypeRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if assayType == nil {
		return nil, entity.NewNotFoundError("assay_type", id)
	}
	return assayTypeResponse(assayType), nil
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	if containsFold(list, v) {
		return list
	}
	return append(list, v)
}
