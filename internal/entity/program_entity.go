package entity

import (
	"time"

	"github.com/google/uuid"
)

type Program struct {
	Id               uuid.UUID
	Name             string
	Code             string
	Description      string
	Active           bool
	StorageFolderId  *uuid.UUID
	NotebookFolderId *uuid.UUID
	CreatedById      uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        *time.Time

	// Resolved on demand, never persisted through the program row.
	StorageFolder  *FolderReference
	NotebookFolder *FolderReference
}

type Collaborator struct {
	Id         uuid.UUID
	Name       string
	Label      string
	CodePrefix string
	Active     bool
	CreatedAt  time.Time
}
