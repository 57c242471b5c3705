// Package notebook defines the capability surface the application consumes
// from an electronic lab notebook (ELN) service: folders, entries, entry
// templates and users. Vendor drivers live in sub-packages.
package notebook

import (
	"context"
	"errors"
)

type Driver string

const (
	DriverREST Driver = "rest"
	DriverNone Driver = "none"
)

var (
	ErrNotFound      = errors.New("notebook: resource not found")
	ErrAlreadyExists = errors.New("notebook: resource already exists")
)

type Folder struct {
	ReferenceId       string
	Name              string
	Path              string
	Url               string
	ParentReferenceId string
}

// Field is one custom descriptive field written onto an entry.
type Field struct {
	Name  string
	Value string
}

type EntryRequest struct {
	Title             string
	FolderReferenceId string
	AuthorIds         []string
	TemplateId        string
	Fields            []Field
}

type Entry struct {
	ReferenceId       string
	Title             string
	Url               string
	FolderReferenceId string
}

type Template struct {
	ReferenceId string
	Name        string
}

type User struct {
	ReferenceId string
	Username    string
	Email       string
	Name        string
}

// Page is one page of a token-paginated listing. An empty NextToken marks the
// last page.
type Page[T any] struct {
	Items     []T
	NextToken string
}

type Backend interface {
	Driver() Driver
	CreateFolder(ctx context.Context, name, parentReferenceId string) (*Folder, error)
	FindFolderById(ctx context.Context, id string) (*Folder, error)
	CreateEntry(ctx context.Context, req EntryRequest) (*Entry, error)
	FindEntryTemplates(ctx context.Context, pageToken string) (Page[Template], error)
	FindUsers(ctx context.Context, pageToken string) (Page[User], error)
	FindUserByNativeId(ctx context.Context, id string) (*User, error)
}
