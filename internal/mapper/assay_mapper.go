package mapper

import (
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/model"

	"gorm.io/datatypes"
)

type AssayMapper struct{}

func NewAssayMapper() *AssayMapper {
	return &AssayMapper{}
}

func (m *AssayMapper) ToEntity(a *model.Assay) *entity.Assay {
	if a == nil {
		return nil
	}
	fields := make(map[string]interface{}, len(a.Fields))
	for k, v := range a.Fields {
		fields[k] = v
	}
	tasks := make([]entity.AssayTask, 0, len(a.Tasks))
	for _, t := range a.Tasks {
		tasks = append(tasks, entity.AssayTask{Label: t.Label, Status: t.Status, Order: t.Order})
	}
	return &entity.Assay{
		Id:               a.Id,
		Code:             a.Code,
		Name:             a.Name,
		Description:      a.Description,
		Status:           entity.Status(a.Status),
		StudyId:          a.StudyId,
		AssayTypeId:      a.AssayTypeId,
		Active:           a.Active,
		StartDate:        a.StartDate,
		EndDate:          a.EndDate,
		OwnerId:          a.OwnerId,
		UserIds:          stringsToUUIDs(a.UserIds),
		Fields:           fields,
		Attributes:       jsonToStringMap(a.Attributes),
		Tasks:            tasks,
		ExternalLinks:    linksToEntity(a.ExternalLinks),
		StorageFolderId:  a.StorageFolderId,
		NotebookFolderId: a.NotebookFolderId,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        updatedAtPtr(a.UpdatedAt),
	}
}

func (m *AssayMapper) ToModel(a *entity.Assay) *model.Assay {
	if a == nil {
		return nil
	}
	fields := datatypes.JSONMap{}
	for k, v := range a.Fields {
		fields[k] = v
	}
	tasks := make(datatypes.JSONSlice[model.AssayTask], 0, len(a.Tasks))
	for _, t := range a.Tasks {
		tasks = append(tasks, model.AssayTask{Label: t.Label, Status: t.Status, Order: t.Order})
	}
	return &model.Assay{
		Id:               a.Id,
		Code:             a.Code,
		Name:             a.Name,
		Description:      a.Description,
		Status:           string(a.Status),
		StudyId:          a.StudyId,
		AssayTypeId:      a.AssayTypeId,
		Active:           a.Active,
		StartDate:        a.StartDate,
		EndDate:          a.EndDate,
		OwnerId:          a.OwnerId,
		UserIds:          uuidsToStrings(a.UserIds),
		Fields:           fields,
		Attributes:       stringMapToJSON(a.Attributes),
		Tasks:            tasks,
		ExternalLinks:    linksToModel(a.ExternalLinks),
		StorageFolderId:  a.StorageFolderId,
		NotebookFolderId: a.NotebookFolderId,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        updatedAtValue(a.UpdatedAt),
	}
}

func (m *AssayMapper) ToEntities(assays []*model.Assay) []*entity.Assay {
	entities := make([]*entity.Assay, len(assays))
	for i, a := range assays {
		entities[i] = m.ToEntity(a)
	}
	return entities
}

type AssayTypeMapper struct{}

func NewAssayTypeMapper() *AssayTypeMapper {
	return &AssayTypeMapper{}
}

func (m *AssayTypeMapper) ToEntity(t *model.AssayType) *entity.AssayType {
	if t == nil {
		return nil
	}
	fields := make([]entity.AssayTypeField, 0, len(t.Fields))
	for _, f := range t.Fields {
		fields = append(fields, entity.AssayTypeField(f))
	}
	return &entity.AssayType{
		Id:             t.Id,
		Name:           t.Name,
		Description:    t.Description,
		Active:         t.Active,
		Fields:         fields,
		RequiredFields: copyStrings(t.RequiredFields),
		Tasks:          copyStrings(t.Tasks),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      updatedAtPtr(t.UpdatedAt),
	}
}

func (m *AssayTypeMapper) ToModel(t *entity.AssayType) *model.AssayType {
	if t == nil {
		return nil
	}
	fields := make(datatypes.JSONSlice[model.AssayTypeField], 0, len(t.Fields))
	for _, f := range t.Fields {
		fields = append(fields, model.AssayTypeField(f))
	}
	return &model.AssayType{
		Id:             t.Id,
		Name:           t.Name,
		Description:    t.Description,
		Active:         t.Active,
		Fields:         fields,
		RequiredFields: datatypes.JSONSlice[string](copyStrings(t.RequiredFields)),
		Tasks:          datatypes.JSONSlice[string](copyStrings(t.Tasks)),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      updatedAtValue(t.UpdatedAt),
	}
}

func (m *AssayTypeMapper) ToEntities(types []*model.AssayType) []*entity.AssayType {
	entities := make([]*entity.AssayType, len(types))
	for i, t := range types {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
