package mapper

import (
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:             u.Id,
		Username:       u.Username,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Admin:          u.Admin,
		Active:         u.Active,
		NotebookUserId: u.NotebookUserId,
		PasswordHash:   u.PasswordHash,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      updatedAtPtr(u.UpdatedAt),
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:             u.Id,
		Username:       u.Username,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Admin:          u.Admin,
		Active:         u.Active,
		NotebookUserId: u.NotebookUserId,
		PasswordHash:   u.PasswordHash,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      updatedAtValue(u.UpdatedAt),
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}
