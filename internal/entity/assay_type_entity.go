package entity

import (
	"time"

	"github.com/google/uuid"
)

type AssayTypeField struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

type AssayType struct {
	Id             uuid.UUID
	Name           string
	Description    string
	Active         bool
	Fields         []AssayTypeField
	RequiredFields []string
	Tasks          []string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
