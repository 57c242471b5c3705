package entity

import (
	"time"

	"github.com/google/uuid"
)

type AssayTask struct {
	Label  string `json:"label"`
	Status string `json:"status"`
	Order  int    `json:"order"`
}

type Assay struct {
	Id               uuid.UUID
	Code             string
	Name             string
	Description      string
	Status           Status
	StudyId          uuid.UUID
	AssayTypeId      uuid.UUID
	Active           bool
	StartDate        time.Time
	EndDate          *time.Time
	OwnerId          uuid.UUID
	UserIds          []uuid.UUID
	Fields           map[string]interface{}
	Attributes       map[string]string
	Tasks            []AssayTask
	ExternalLinks    []ExternalLink
	StorageFolderId  *uuid.UUID
	NotebookFolderId *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        *time.Time

	Study          *Study
	AssayType      *AssayType
	StorageFolder  *FolderReference
	NotebookFolder *FolderReference
}

// Legacy assays inherit the flag from the study they were imported with.
func (a *Assay) Legacy() bool {
	return a.Study != nil && a.Study.Legacy
}

func (a *Assay) ApplyStatus(status Status, now time.Time) {
	a.Status = status
	if status == StatusComplete && a.EndDate == nil {
		end := now
		a.EndDate = &end
	}
}
