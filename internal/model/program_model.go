package model

import (
	"time"

	"github.com/google/uuid"
)

type Program struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name             string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Code             string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	Description      string     `gorm:"type:text"`
	Active           bool       `gorm:"not null"`
	StorageFolderId  *uuid.UUID `gorm:"type:uuid;index"`
	NotebookFolderId *uuid.UUID `gorm:"type:uuid;index"`
	CreatedById      uuid.UUID  `gorm:"type:uuid"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

func (Program) TableName() string {
	return "programs"
}

type Collaborator struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Label      string    `gorm:"type:varchar(255)"`
	CodePrefix string    `gorm:"type:varchar(32);not null"`
	Active     bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Collaborator) TableName() string {
	return "collaborators"
}
