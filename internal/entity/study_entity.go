// internal/entity/study_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusInPlanning Status = "IN_PLANNING"
	StatusActive     Status = "ACTIVE"
	StatusOnHold     Status = "ON_HOLD"
	StatusComplete   Status = "COMPLETE"
	StatusDeprecated Status = "DEPRECATED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInPlanning, StatusActive, StatusOnHold, StatusComplete, StatusDeprecated:
		return true
	}
	return false
}

type Study struct {
	Id               uuid.UUID
	Code             string
	ExternalCode     *string
	Name             string
	Description      string
	Status           Status
	ProgramId        uuid.UUID
	CollaboratorId   *uuid.UUID
	Legacy           bool
	Active           bool
	StartDate        time.Time
	EndDate          *time.Time
	OwnerId          uuid.UUID
	UserIds          []uuid.UUID
	Keywords         []string
	Attributes       map[string]string
	ExternalLinks    []ExternalLink
	StorageFolderId  *uuid.UUID
	NotebookFolderId *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        *time.Time

	Program        *Program
	Collaborator   *Collaborator
	StorageFolder  *FolderReference
	NotebookFolder *FolderReference
}

// ApplyStatus moves the study to status, stamping the end date the first time
// it is completed.
func (s *Study) ApplyStatus(status Status, now time.Time) {
	s.Status = status
	if status == StatusComplete && s.EndDate == nil {
		end := now
		s.EndDate = &end
	}
}
