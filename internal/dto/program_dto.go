// FILE: internal/dto/program_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProgramRequest struct {
	Name             string `json:"name" validate:"required,max=255"`
	Code             string `json:"code" validate:"required,alphanum,max=32"`
	Description      string `json:"description"`
	NotebookFolderId string `json:"notebook_folder_id" validate:"omitempty,max=255"`
}

type UpdateProgramRequest struct {
	Id          uuid.UUID
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type ProgramResponse struct {
	Id             uuid.UUID                `json:"id"`
	Name           string                   `json:"name"`
	Code           string                   `json:"code"`
	Description    string                   `json:"description"`
	Active         bool                     `json:"active"`
	StorageFolder  *FolderReferenceResponse `json:"storage_folder"`
	NotebookFolder *FolderReferenceResponse `json:"notebook_folder"`
	CreatedById    uuid.UUID                `json:"created_by_id"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      *time.Time               `json:"updated_at"`
}

type CreateProgramResponse struct {
	Program *ProgramResponse `json:"program"`
	Report  []StepResponse   `json:"report"`
}

type CreateCollaboratorRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Label      string `json:"label" validate:"max=255"`
	CodePrefix string `json:"code_prefix" validate:"required,alphanum,max=16"`
}

type CollaboratorResponse struct {
	Id         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	CodePrefix string    `json:"code_prefix"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}
