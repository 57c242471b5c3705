package model

import (
	"time"

	"github.com/google/uuid"
)

type FolderReference struct {
	Id                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Kind              string     `gorm:"type:varchar(20);not null;index:idx_folder_references_kind_path,priority:1"`
	ReferenceId       string     `gorm:"type:varchar(512);not null"`
	Name              string     `gorm:"type:varchar(512);not null"`
	Path              string     `gorm:"type:varchar(2048);not null;index:idx_folder_references_kind_path,priority:2"`
	Url               string     `gorm:"type:varchar(2048)"`
	ParentReferenceId *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

func (FolderReference) TableName() string {
	return "folder_references"
}
