// FILE: internal/dto/study_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateStudyRequest struct {
	ProgramId      uuid.UUID             `json:"program_id" validate:"required"`
	Name           string                `json:"name" validate:"required,max=255"`
	Code           string                `json:"code" validate:"max=64"`
	ExternalCode   string                `json:"external_code" validate:"max=64"`
	Description    string                `json:"description"`
	Status         string                `json:"status" validate:"omitempty,oneof=IN_PLANNING ACTIVE ON_HOLD COMPLETE DEPRECATED"`
	CollaboratorId *uuid.UUID            `json:"collaborator_id"`
	Legacy         bool                  `json:"legacy"`
	NotebookUrl    string                `json:"notebook_url" validate:"omitempty,url"`
	TemplateId     string                `json:"template_id"`
	StartDate      *time.Time            `json:"start_date"`
	EndDate        *time.Time            `json:"end_date"`
	UserIds        []uuid.UUID           `json:"user_ids"`
	Keywords       []string              `json:"keywords" validate:"dive,required"`
	Attributes     map[string]string     `json:"attributes"`
	ExternalLinks  []ExternalLinkRequest `json:"external_links" validate:"dive"`
}

// UpdateStudyRequest only carries mutable fields; nil leaves a field untouched.
type UpdateStudyRequest struct {
	Id            uuid.UUID
	Description   *string               `json:"description"`
	Status        *string               `json:"status" validate:"omitempty,oneof=IN_PLANNING ACTIVE ON_HOLD COMPLETE DEPRECATED"`
	StartDate     *time.Time            `json:"start_date"`
	EndDate       *time.Time            `json:"end_date"`
	OwnerId       *uuid.UUID            `json:"owner_id"`
	UserIds       []uuid.UUID           `json:"user_ids"`
	Keywords      []string              `json:"keywords" validate:"omitempty,dive,required"`
	Attributes    map[string]string     `json:"attributes"`
	ExternalLinks []ExternalLinkRequest `json:"external_links" validate:"omitempty,dive"`
}

type StudyResponse struct {
	Id             uuid.UUID                `json:"id"`
	Code           string                   `json:"code"`
	ExternalCode   *string                  `json:"external_code"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description"`
	Status         string                   `json:"status"`
	ProgramId      uuid.UUID                `json:"program_id"`
	ProgramName    string                   `json:"program_name,omitempty"`
	CollaboratorId *uuid.UUID               `json:"collaborator_id"`
	Legacy         bool                     `json:"legacy"`
	Active         bool                     `json:"active"`
	StartDate      time.Time                `json:"start_date"`
	EndDate        *time.Time               `json:"end_date"`
	OwnerId        uuid.UUID                `json:"owner_id"`
	UserIds        []uuid.UUID              `json:"user_ids"`
	Keywords       []string                 `json:"keywords"`
	Attributes     map[string]string        `json:"attributes"`
	ExternalLinks  []ExternalLinkResponse   `json:"external_links"`
	StorageFolder  *FolderReferenceResponse `json:"storage_folder"`
	NotebookFolder *FolderReferenceResponse `json:"notebook_folder"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      *time.Time               `json:"updated_at"`
}

type CreateStudyResponse struct {
	Study    *StudyResponse `json:"study"`
	EntryUrl string         `json:"entry_url,omitempty"`
	Report   []StepResponse `json:"report"`
}
