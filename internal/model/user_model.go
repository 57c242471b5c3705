package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username       string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName    string    `gorm:"type:varchar(255)"`
	Admin          bool      `gorm:"not null"`
	Active         bool      `gorm:"not null"`
	NotebookUserId *string   `gorm:"type:varchar(255)"`
	PasswordHash   *string   `gorm:"type:varchar(255)"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
