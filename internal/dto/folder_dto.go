// FILE: internal/dto/folder_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type FolderReferenceResponse struct {
	Id          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	ReferenceId string    `json:"reference_id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Url         string    `json:"url"`
}

type FileResponse struct {
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	Url          string     `json:"url"`
	Size         int64      `json:"size"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// FolderListingResponse is a storage folder with its contents, nested up to the
// configured listing depth.
type FolderListingResponse struct {
	Name       string                   `json:"name"`
	Path       string                   `json:"path"`
	Url        string                   `json:"url"`
	Files      []FileResponse           `json:"files"`
	SubFolders []*FolderListingResponse `json:"sub_folders"`
}

type StepResponse struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type ExternalLinkRequest struct {
	Label string `json:"label" validate:"required,max=255"`
	Url   string `json:"url" validate:"required,url"`
}

type ExternalLinkResponse struct {
	Label string `json:"label"`
	Url   string `json:"url"`
}

type RepairResponse struct {
	Entity         string                   `json:"entity"`
	EntityId       uuid.UUID                `json:"entity_id"`
	Kind           string                   `json:"kind"`
	Action         string                   `json:"action"`
	BackendCreated bool                     `json:"backend_created"`
	Folder         *FolderReferenceResponse `json:"folder"`
}

// PublishSummaryMessage asks the summary consumer to write the summary file of
// a freshly provisioned study or assay.
type PublishSummaryMessage struct {
	EntityType string    `json:"entity_type"`
	EntityId   uuid.UUID `json:"entity_id"`
}
