// Package storagetest provides an in-memory storage.Backend for tests.
package storagetest

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"study-tracker-be/pkg/storage"
)

type Backend struct {
	mu sync.Mutex

	Folders map[string]*storage.Folder
	Files   map[string][]byte

	// Err fails every call when set. The narrower fields fail one operation.
	Err             error
	CreateFolderErr error
	FindFolderErr   error
	Calls           map[string]int
}

func New() *Backend {
	return &Backend{Folders: map[string]*storage.Folder{}, Files: map[string][]byte{}, Calls: map[string]int{}}
}

func (b *Backend) Driver() storage.Driver { return storage.DriverLocal }

// AddFolder seeds a folder at the target's path, as if created out of band.
func (b *Backend) AddFolder(target storage.Target) *storage.Folder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addFolder(target.Path())
}

func (b *Backend) addFolder(p string) *storage.Folder {
	f := &storage.Folder{ReferenceId: "ref:" + p, Name: path.Base(p), Path: p, Url: "https://files.test/" + p}
	b.Folders[p] = f
	return f
}

func (b *Backend) CreateFolder(_ context.Context, target storage.Target) (*storage.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["CreateFolder"]++
	if err := b.fail(b.CreateFolderErr); err != nil {
		return nil, err
	}
	p := target.Path()
	if _, ok := b.Folders[p]; ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrAlreadyExists, p)
	}
	f := b.addFolder(p)
	cp := *f
	return &cp, nil
}

func (b *Backend) FindFolder(_ context.Context, target storage.Target, opts storage.FindOptions) (*storage.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["FindFolder"]++
	if err := b.fail(b.FindFolderErr); err != nil {
		return nil, err
	}
	p := target.Path()
	f, ok := b.Folders[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, p)
	}
	cp := *f
	if opts.Depth > 0 {
		var names []string
		for key := range b.Files {
			if path.Dir(key) == p {
				names = append(names, key)
			}
		}
		sort.Strings(names)
		for _, key := range names {
			cp.Files = append(cp.Files, &storage.File{
				ReferenceId: key, Name: path.Base(key), Path: key,
				Url: "https://files.test/" + key, Size: int64(len(b.Files[key])),
			})
		}
	}
	return &cp, nil
}

func (b *Backend) UploadFile(_ context.Context, target storage.Target, upload storage.Upload) (*storage.File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["UploadFile"]++
	if err := b.fail(nil); err != nil {
		return nil, err
	}
	p := target.Path()
	if _, ok := b.Folders[p]; !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, p)
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, err
	}
	key := path.Join(p, storage.SanitizeName(upload.Name))
	b.Files[key] = data
	return &storage.File{
		ReferenceId:  key,
		Name:         path.Base(key),
		Path:         key,
		Url:          "https://files.test/" + key,
		Size:         int64(len(data)),
		LastModified: time.Now().UTC(),
	}, nil
}

// Rename moves a folder to a new path, simulating an out of band change.
func (b *Backend) Rename(oldPath, newPath string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Folders, oldPath)
	b.addFolder(strings.Trim(newPath, "/"))
}

func (b *Backend) CallCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Calls[op]
}

func (b *Backend) File(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.Files[key]
	return data, ok
}

func (b *Backend) fail(specific error) error {
	if b.Err != nil {
		return b.Err
	}
	return specific
}
