// Package notebooktest provides an in-memory notebook.Backend for tests.
package notebooktest

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"sync"

	"study-tracker-be/pkg/notebook"
)

type Backend struct {
	mu sync.Mutex

	Folders   map[string]*notebook.Folder
	Entries   []notebook.EntryRequest
	Templates []notebook.Template
	Users     []notebook.User
	PageSize  int

	// Err fails every call when set. The narrower fields fail one operation.
	Err             error
	CreateFolderErr error
	CreateEntryErr  error
	FindFolderErr   error
	Calls           map[string]int
	nextId          int
}

func New() *Backend {
	return &Backend{Folders: map[string]*notebook.Folder{}, Calls: map[string]int{}, PageSize: 2}
}

func (b *Backend) Driver() notebook.Driver { return notebook.DriverREST }

// AddFolder seeds a folder and returns it.
func (b *Backend) AddFolder(name, parentId string) *notebook.Folder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addFolder(name, parentId)
}

func (b *Backend) addFolder(name, parentId string) *notebook.Folder {
	b.nextId++
	id := "lib_" + strconv.Itoa(b.nextId)
	p := name
	if parent, ok := b.Folders[parentId]; ok {
		p = path.Join(parent.Path, name)
	}
	f := &notebook.Folder{
		ReferenceId:       id,
		Name:              name,
		Path:              p,
		Url:               "https://eln.test/folders/" + id,
		ParentReferenceId: parentId,
	}
	b.Folders[id] = f
	return f
}

func (b *Backend) CreateFolder(_ context.Context, name, parentReferenceId string) (*notebook.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["CreateFolder"]++
	if err := b.fail(b.CreateFolderErr); err != nil {
		return nil, err
	}
	if parentReferenceId != "" {
		if _, ok := b.Folders[parentReferenceId]; !ok {
			return nil, fmt.Errorf("%w: parent %s", notebook.ErrNotFound, parentReferenceId)
		}
	}
	for _, f := range b.Folders {
		if f.Name == name && f.ParentReferenceId == parentReferenceId {
			return nil, fmt.Errorf("%w: %s", notebook.ErrAlreadyExists, name)
		}
	}
	f := b.addFolder(name, parentReferenceId)
	cp := *f
	return &cp, nil
}

func (b *Backend) FindFolderById(_ context.Context, id string) (*notebook.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["FindFolderById"]++
	if err := b.fail(b.FindFolderErr); err != nil {
		return nil, err
	}
	f, ok := b.Folders[id]
	if !ok {
		return nil, fmt.Errorf("%w: folder %s", notebook.ErrNotFound, id)
	}
	cp := *f
	return &cp, nil
}

func (b *Backend) CreateEntry(_ context.Context, req notebook.EntryRequest) (*notebook.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["CreateEntry"]++
	if err := b.fail(b.CreateEntryErr); err != nil {
		return nil, err
	}
	b.Entries = append(b.Entries, req)
	b.nextId++
	id := "etr_" + strconv.Itoa(b.nextId)
	return &notebook.Entry{
		ReferenceId:       id,
		Title:             req.Title,
		Url:               "https://eln.test/entries/" + id,
		FolderReferenceId: req.FolderReferenceId,
	}, nil
}

func (b *Backend) FindEntryTemplates(_ context.Context, pageToken string) (notebook.Page[notebook.Template], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["FindEntryTemplates"]++
	if err := b.fail(nil); err != nil {
		return notebook.Page[notebook.Template]{}, err
	}
	items, next := page(b.Templates, pageToken, b.PageSize)
	return notebook.Page[notebook.Template]{Items: items, NextToken: next}, nil
}

func (b *Backend) FindUsers(_ context.Context, pageToken string) (notebook.Page[notebook.User], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["FindUsers"]++
	if err := b.fail(nil); err != nil {
		return notebook.Page[notebook.User]{}, err
	}
	items, next := page(b.Users, pageToken, b.PageSize)
	return notebook.Page[notebook.User]{Items: items, NextToken: next}, nil
}

func (b *Backend) FindUserByNativeId(_ context.Context, id string) (*notebook.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls["FindUserByNativeId"]++
	if err := b.fail(nil); err != nil {
		return nil, err
	}
	for _, u := range b.Users {
		if u.ReferenceId == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", notebook.ErrNotFound, id)
}

func (b *Backend) CallCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Calls[op]
}

func (b *Backend) fail(specific error) error {
	if b.Err != nil {
		return b.Err
	}
	return specific
}

func page[T any](items []T, token string, size int) ([]T, string) {
	start, _ := strconv.Atoi(token)
	if start > len(items) {
		start = len(items)
	}
	if size <= 0 || start+size >= len(items) {
		return items[start:], ""
	}
	return items[start : start+size], strconv.Itoa(start + size)
}
