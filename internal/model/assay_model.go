package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssayTask struct {
	Label  string `json:"label"`
	Status string `json:"status"`
	Order  int    `json:"order"`
}

type Assay struct {
	Id               uuid.UUID                         `gorm:"type:uuid;primaryKey"`
	Code             string                            `gorm:"type:varchar(128);not null;uniqueIndex"`
	Name             string                            `gorm:"type:varchar(255);not null"`
	Description      string                            `gorm:"type:text"`
	Status           string                            `gorm:"type:varchar(20);not null"`
	StudyId          uuid.UUID                         `gorm:"type:uuid;not null;index"`
	AssayTypeId      uuid.UUID                         `gorm:"type:uuid;not null;index"`
	Active           bool                              `gorm:"not null"`
	StartDate        time.Time                         `gorm:"not null"`
	EndDate          *time.Time
	OwnerId          uuid.UUID                         `gorm:"type:uuid;not null"`
	UserIds          datatypes.JSONSlice[string]       `gorm:"type:jsonb"`
	Fields           datatypes.JSONMap                 `gorm:"type:jsonb"`
	Attributes       datatypes.JSONMap                 `gorm:"type:jsonb"`
	Tasks            datatypes.JSONSlice[AssayTask]    `gorm:"type:jsonb"`
	ExternalLinks    datatypes.JSONSlice[ExternalLink] `gorm:"type:jsonb"`
	StorageFolderId  *uuid.UUID                        `gorm:"type:uuid;index"`
	NotebookFolderId *uuid.UUID                        `gorm:"type:uuid;index"`
	CreatedAt        time.Time                         `gorm:"autoCreateTime"`
	UpdatedAt        time.Time                         `gorm:"autoUpdateTime"`
}

func (Assay) TableName() string {
	return "assays"
}

type AssayTypeField struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

type AssayType struct {
	Id             uuid.UUID                           `gorm:"type:uuid;primaryKey"`
	Name           string                              `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description    string                              `gorm:"type:text"`
	Active         bool                                `gorm:"not null"`
	Fields         datatypes.JSONSlice[AssayTypeField] `gorm:"type:jsonb"`
	RequiredFields datatypes.JSONSlice[string]         `gorm:"type:jsonb"`
	Tasks          datatypes.JSONSlice[string]         `gorm:"type:jsonb"`
	CreatedAt      time.Time                           `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                           `gorm:"autoUpdateTime"`
}

func (AssayType) TableName() string {
	return "assay_types"
}
