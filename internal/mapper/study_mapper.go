package mapper

import (
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/model"

	"gorm.io/datatypes"
)

type StudyMapper struct{}

func NewStudyMapper() *StudyMapper {
	return &StudyMapper{}
}

func (m *StudyMapper) ToEntity(s *model.Study) *entity.Study {
	if s == nil {
		return nil
	}
	return &entity.Study{
		Id:               s.Id,
		Code:             s.Code,
		ExternalCode:     s.ExternalCode,
		Name:             s.Name,
		Description:      s.Description,
		Status:           entity.Status(s.Status),
		ProgramId:        s.ProgramId,
		CollaboratorId:   s.CollaboratorId,
		Legacy:           s.Legacy,
		Active:           s.Active,
		StartDate:        s.StartDate,
		EndDate:          s.EndDate,
		OwnerId:          s.OwnerId,
		UserIds:          stringsToUUIDs(s.UserIds),
		Keywords:         copyStrings(s.Keywords),
		Attributes:       jsonToStringMap(s.Attributes),
		ExternalLinks:    linksToEntity(s.ExternalLinks),
		StorageFolderId:  s.StorageFolderId,
		NotebookFolderId: s.NotebookFolderId,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAtPtr(s.UpdatedAt),
	}
}

func (m *StudyMapper) ToModel(s *entity.Study) *model.Study {
	if s == nil {
		return nil
	}
	return &model.Study{
		Id:               s.Id,
		Code:             s.Code,
		ExternalCode:     s.ExternalCode,
		Name:             s.Name,
		Description:      s.Description,
		Status:           string(s.Status),
		ProgramId:        s.ProgramId,
		CollaboratorId:   s.CollaboratorId,
		Legacy:           s.Legacy,
		Active:           s.Active,
		StartDate:        s.StartDate,
		EndDate:          s.EndDate,
		OwnerId:          s.OwnerId,
		UserIds:          uuidsToStrings(s.UserIds),
		Keywords:         datatypes.JSONSlice[string](copyStrings(s.Keywords)),
		Attributes:       stringMapToJSON(s.Attributes),
		ExternalLinks:    linksToModel(s.ExternalLinks),
		StorageFolderId:  s.StorageFolderId,
		NotebookFolderId: s.NotebookFolderId,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAtValue(s.UpdatedAt),
	}
}

func (m *StudyMapper) ToEntities(studies []*model.Study) []*entity.Study {
	entities := make([]*entity.Study, len(studies))
	for i, s := range studies {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

func linksToEntity(links []model.ExternalLink) []entity.ExternalLink {
	out := make([]entity.ExternalLink, 0, len(links))
	for _, l := range links {
		out = append(out, entity.ExternalLink{Label: l.Label, Url: l.Url})
	}
	return out
}

func linksToModel(links []entity.ExternalLink) datatypes.JSONSlice[model.ExternalLink] {
	out := make(datatypes.JSONSlice[model.ExternalLink], 0, len(links))
	for _, l := range links {
		out = append(out, model.ExternalLink{Label: l.Label, Url: l.Url})
	}
	return out
}
