package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ExternalLink struct {
	Label string `json:"label"`
	Url   string `json:"url"`
}

type Study struct {
	Id               uuid.UUID                         `gorm:"type:uuid;primaryKey"`
	Code             string                            `gorm:"type:varchar(128);not null;uniqueIndex"`
	ExternalCode     *string                           `gorm:"type:varchar(128);uniqueIndex"`
	Name             string                            `gorm:"type:varchar(255);not null"`
	Description      string                            `gorm:"type:text"`
	Status           string                            `gorm:"type:varchar(20);not null"`
	ProgramId        uuid.UUID                         `gorm:"type:uuid;not null;index"`
	CollaboratorId   *uuid.UUID                        `gorm:"type:uuid;index"`
	Legacy           bool                              `gorm:"not null"`
	Active           bool                              `gorm:"not null"`
	StartDate        time.Time                         `gorm:"not null"`
	EndDate          *time.Time
	OwnerId          uuid.UUID                         `gorm:"type:uuid;not null"`
	UserIds          datatypes.JSONSlice[string]       `gorm:"type:jsonb"`
	Keywords         datatypes.JSONSlice[string]       `gorm:"type:jsonb"`
	Attributes       datatypes.JSONMap                 `gorm:"type:jsonb"`
	ExternalLinks    datatypes.JSONSlice[ExternalLink] `gorm:"type:jsonb"`
	StorageFolderId  *uuid.UUID                        `gorm:"type:uuid;index"`
	NotebookFolderId *uuid.UUID                        `gorm:"type:uuid;index"`
	CreatedAt        time.Time                         `gorm:"autoCreateTime"`
	UpdatedAt        time.Time                         `gorm:"autoUpdateTime"`
}

func (Study) TableName() string {
	return "studies"
}
