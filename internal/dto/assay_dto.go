// FILE: internal/dto/assay_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type AssayTaskRequest struct {
	Label  string `json:"label" validate:"required,max=255"`
	Status string `json:"status" validate:"max=32"`
	Order  int    `json:"order"`
}

type AssayTaskResponse struct {
	Label  string `json:"label"`
	Status string `json:"status"`
	Order  int    `json:"order"`
}

type CreateAssayRequest struct {
	StudyId       uuid.UUID              `json:"study_id" validate:"required"`
	AssayTypeId   uuid.UUID              `json:"assay_type_id" validate:"required"`
	Name          string                 `json:"name" validate:"required,max=255"`
	Code          string                 `json:"code" validate:"max=64"`
	Description   string                 `json:"description"`
	Status        string                 `json:"status" validate:"omitempty,oneof=IN_PLANNING ACTIVE ON_HOLD COMPLETE DEPRECATED"`
	NotebookUrl   string                 `json:"notebook_url" validate:"omitempty,url"`
	TemplateId    string                 `json:"template_id"`
	StartDate     *time.Time             `json:"start_date"`
	EndDate       *time.Time             `json:"end_date"`
	UserIds       []uuid.UUID            `json:"user_ids"`
	Fields        map[string]interface{} `json:"fields"`
	Attributes    map[string]string      `json:"attributes"`
	Tasks         []AssayTaskRequest     `json:"tasks" validate:"dive"`
	ExternalLinks []ExternalLinkRequest  `json:"external_links" validate:"dive"`
}

type UpdateAssayRequest struct {
	Id            uuid.UUID
	Description   *string                `json:"description"`
	Status        *string                `json:"status" validate:"omitempty,oneof=IN_PLANNING ACTIVE ON_HOLD COMPLETE DEPRECATED"`
	StartDate     *time.Time             `json:"start_date"`
	EndDate       *time.Time             `json:"end_date"`
	OwnerId       *uuid.UUID             `json:"owner_id"`
	UserIds       []uuid.UUID            `json:"user_ids"`
	Fields        map[string]interface{} `json:"fields"`
	Attributes    map[string]string      `json:"attributes"`
	Tasks         []AssayTaskRequest     `json:"tasks" validate:"omitempty,dive"`
	ExternalLinks []ExternalLinkRequest  `json:"external_links" validate:"omitempty,dive"`
}

type AssayResponse struct {
	Id             uuid.UUID                `json:"id"`
	Code           string                   `json:"code"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description"`
	Status         string                   `json:"status"`
	StudyId        uuid.UUID                `json:"study_id"`
	StudyCode      string                   `json:"study_code,omitempty"`
	AssayTypeId    uuid.UUID                `json:"assay_type_id"`
	AssayTypeName  string                   `json:"assay_type_name,omitempty"`
	Legacy         bool                     `json:"legacy"`
	Active         bool                     `json:"active"`
	StartDate      time.Time                `json:"start_date"`
	EndDate        *time.Time               `json:"end_date"`
	OwnerId        uuid.UUID                `json:"owner_id"`
	UserIds        []uuid.UUID              `json:"user_ids"`
	Fields         map[string]interface{}   `json:"fields"`
	Attributes     map[string]string        `json:"attributes"`
	Tasks          []AssayTaskResponse      `json:"tasks"`
	ExternalLinks  []ExternalLinkResponse   `json:"external_links"`
	StorageFolder  *FolderReferenceResponse `json:"storage_folder"`
	NotebookFolder *FolderReferenceResponse `json:"notebook_folder"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      *time.Time               `json:"updated_at"`
}

type CreateAssayResponse struct {
	Assay    *AssayResponse `json:"assay"`
	EntryUrl string         `json:"entry_url,omitempty"`
	Report   []StepResponse `json:"report"`
}
