// FILE: internal/dto/assay_type_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type AssayTypeFieldRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	DisplayName string `json:"display_name" validate:"max=255"`
	Type        string `json:"type" validate:"required,oneof=STRING TEXT DATE INTEGER FLOAT BOOLEAN"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

type CreateAssayTypeRequest struct {
	Name           string                  `json:"name" validate:"required,max=255"`
	Description    string                  `json:"description"`
	Fields         []AssayTypeFieldRequest `json:"fields" validate:"dive"`
	RequiredFields []string                `json:"required_fields" validate:"dive,required"`
	Tasks          []string                `json:"tasks" validate:"dive,required"`
}

type AssayTypeFieldResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

type AssayTypeResponse struct {
	Id             uuid.UUID                `json:"id"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description"`
	Active         bool                     `json:"active"`
	Fields         []AssayTypeFieldResponse `json:"fields"`
	RequiredFields []string                 `json:"required_fields"`
	Tasks          []string                 `json:"tasks"`
	CreatedAt      time.Time                `json:"created_at"`
}
