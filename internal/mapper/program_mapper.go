package mapper

import (
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/model"
)

type ProgramMapper struct{}

func NewProgramMapper() *ProgramMapper {
	return &ProgramMapper{}
}

func (m *ProgramMapper) ToEntity(p *model.Program) *entity.Program {
	if p == nil {
		return nil
	}
	return &entity.Program{
		Id:               p.Id,
		Name:             p.Name,
		Code:             p.Code,
		Description:      p.Description,
		Active:           p.Active,
		StorageFolderId:  p.StorageFolderId,
		NotebookFolderId: p.NotebookFolderId,
		CreatedById:      p.CreatedById,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        updatedAtPtr(p.UpdatedAt),
	}
}

func (m *ProgramMapper) ToModel(p *entity.Program) *model.Program {
	if p == nil {
		return nil
	}
	return &model.Program{
		Id:               p.Id,
		Name:             p.Name,
		Code:             p.Code,
		Description:      p.Description,
		Active:           p.Active,
		StorageFolderId:  p.StorageFolderId,
		NotebookFolderId: p.NotebookFolderId,
		CreatedById:      p.CreatedById,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        updatedAtValue(p.UpdatedAt),
	}
}

func (m *ProgramMapper) ToEntities(programs []*model.Program) []*entity.Program {
	entities := make([]*entity.Program, len(programs))
	for i, p := range programs {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

type CollaboratorMapper struct{}

func NewCollaboratorMapper() *CollaboratorMapper {
	return &CollaboratorMapper{}
}

func (m *CollaboratorMapper) ToEntity(c *model.Collaborator) *entity.Collaborator {
	if c == nil {
		return nil
	}
	return &entity.Collaborator{
		Id:         c.Id,
		Name:       c.Name,
		Label:      c.Label,
		CodePrefix: c.CodePrefix,
		Active:     c.Active,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *CollaboratorMapper) ToModel(c *entity.Collaborator) *model.Collaborator {
	if c == nil {
		return nil
	}
	return &model.Collaborator{
		Id:         c.Id,
		Name:       c.Name,
		Label:      c.Label,
		CodePrefix: c.CodePrefix,
		Active:     c.Active,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *CollaboratorMapper) ToEntities(collaborators []*model.Collaborator) []*entity.Collaborator {
	entities := make([]*entity.Collaborator, len(collaborators))
	for i, c := range collaborators {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
