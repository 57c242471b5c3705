package entity

import (
	"time"

	"github.com/google/uuid"
)

type FolderKind string

const (
	FolderKindStorage  FolderKind = "STORAGE"
	FolderKindNotebook FolderKind = "NOTEBOOK"
)

// FolderReference points at a folder living in an external backend. A reference
// belongs to at most one Program, Study or Assay.
type FolderReference struct {
	Id                uuid.UUID
	Kind              FolderKind
	ReferenceId       string
	Name              string
	Path              string
	Url               string
	ParentReferenceId *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

type ExternalLink struct {
	Label string `json:"label"`
	Url   string `json:"url"`
}
