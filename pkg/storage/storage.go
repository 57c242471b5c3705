// Package storage defines the capability surface the application consumes from
// a file-storage backend: create or find a folder for an entity and upload
// files into it. Vendor drivers live in sub-packages.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// Driver identifies a concrete storage backend implementation.
type Driver string

const (
	DriverLocal Driver = "local"
	DriverS3    Driver = "s3"
	DriverNone  Driver = "none"
)

var (
	ErrNotFound      = errors.New("storage: folder not found")
	ErrAlreadyExists = errors.New("storage: folder already exists")
)

// Target addresses the folder owned by a Program, Study or Assay.
type Target struct {
	Name       string
	ParentPath string
}

// Path is the slash separated location of the folder relative to the backend root.
func (t Target) Path() string {
	name := SanitizeName(t.Name)
	parent := strings.Trim(t.ParentPath, "/")
	if parent == "" {
		return name
	}
	return path.Join(parent, name)
}

type Folder struct {
	ReferenceId string
	Name        string
	Path        string
	Url         string
	SubFolders  []*Folder
	Files       []*File
}

type File struct {
	ReferenceId  string
	Name         string
	Path         string
	Url          string
	Size         int64
	LastModified time.Time
}

// FindOptions controls deep listing. Depth 0 returns only the folder itself;
// drivers clip Depth to their configured maximum.
type FindOptions struct {
	Depth int
}

type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Backend interface {
	Driver() Driver
	CreateFolder(ctx context.Context, target Target) (*Folder, error)
	FindFolder(ctx context.Context, target Target, opts FindOptions) (*Folder, error)
	UploadFile(ctx context.Context, target Target, upload Upload) (*File, error)
}

// SanitizeName makes a display name safe to use as a single path segment.
func SanitizeName(name string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", "\x00", "")
	cleaned := strings.TrimSpace(r.Replace(name))
	if cleaned == "." || cleaned == ".." {
		return "_"
	}
	return cleaned
}

func ClampDepth(requested, max int) int {
	if requested < 0 {
		return 0
	}
	if requested > max {
		return max
	}
	return requested
}
