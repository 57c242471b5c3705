package mapper

import (
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/model"
)

type FolderReferenceMapper struct{}

func NewFolderReferenceMapper() *FolderReferenceMapper {
	return &FolderReferenceMapper{}
}

func (m *FolderReferenceMapper) ToEntity(f *model.FolderReference) *entity.FolderReference {
	if f == nil {
		return nil
	}
	return &entity.FolderReference{
		Id:                f.Id,
		Kind:              entity.FolderKind(f.Kind),
		ReferenceId:       f.ReferenceId,
		Name:              f.Name,
		Path:              f.Path,
		Url:               f.Url,
		ParentReferenceId: f.ParentReferenceId,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         updatedAtPtr(f.UpdatedAt),
	}
}

func (m *FolderReferenceMapper) ToModel(f *entity.FolderReference) *model.FolderReference {
	if f == nil {
		return nil
	}
	return &model.FolderReference{
		Id:                f.Id,
		Kind:              string(f.Kind),
		ReferenceId:       f.ReferenceId,
		Name:              f.Name,
		Path:              f.Path,
		Url:               f.Url,
		ParentReferenceId: f.ParentReferenceId,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         updatedAtValue(f.UpdatedAt),
	}
}

func (m *FolderReferenceMapper) ToEntities(folders []*model.FolderReference) []*entity.FolderReference {
	entities := make([]*entity.FolderReference, len(folders))
	for i, f := range folders {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
