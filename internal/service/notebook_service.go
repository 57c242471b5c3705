// FILE: internal/service/notebook_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/pkg/notebook"
)

// INotebookService reads entry templates and folders from the lab notebook.
type INotebookService interface {
	Templates(ctx context.Context) ([]*dto.NotebookTemplateResponse, error)
	Folder(ctx context.Context, referenceId string) (*dto.NotebookFolderResponse, error)
}

type notebookService struct {
	notebook    notebook.Backend
	directory   *notebook.Directory
	callTimeout time.Duration
}

func NewNotebookService(backend notebook.Backend, directory *notebook.Directory, callTimeout time.Duration) INotebookService {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &notebookService{
		notebook:    backend,
		directory:   directory,
		callTimeout: callTimeout,
	}
}

func (s *notebookService) Templates(ctx context.Context) ([]*dto.NotebookTemplateResponse, error) {
	if s.notebook == nil || s.directory == nil {
		return nil, entity.NewConflictError("notebook", "notebook backend not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	templates, err := s.directory.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notebook templates: %w", err)
	}
	res := make([]*dto.NotebookTemplateResponse, 0, len(templates))
	for _, t := range templates {
		res = append(res, &dto.NotebookTemplateResponse{ReferenceId: t.ReferenceId, Name: t.Name})
	}
	return res, nil
}

func (s *notebookService) Folder(ctx context.Context, referenceId string) (*dto.NotebookFolderResponse, error) {
	if s.notebook == nil {
		return nil, entity.NewConflictError("notebook", "notebook backend not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	folder, err := s.notebook.FindFolderById(ctx, referenceId)
	if err != nil {
		if errors.Is(err, notebook.ErrNotFound) {
			return nil, entity.NewNotFoundError("notebook folder", referenceId)
		}
		return nil, fmt.Errorf("find notebook folder %s: %w", referenceId, err)
	}
	return &dto.NotebookFolderResponse{
		ReferenceId:       folder.ReferenceId,
		Name:              folder.Name,
		Path:              folder.Path,
		Url:               folder.Url,
		ParentReferenceId: folder.ParentReferenceId,
	}, nil
}
