// FILE: internal/service/responses.go
package service

import (
	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/pkg/storage"
)

func folderResponse(f *entity.FolderReference) *dto.FolderReferenceResponse {
	if f == nil {
		return nil
	}
	return &dto.FolderReferenceResponse{
		Id:          f.Id,
		Kind:        string(f.Kind),
		ReferenceId: f.ReferenceId,
		Name:        f.Name,
		Path:        f.Path,
		Url:         f.Url,
	}
}

func listingResponse(f *storage.Folder) *dto.FolderListingResponse {
	res := &dto.FolderListingResponse{
		Name:       f.Name,
		Path:       f.Path,
		Url:        f.Url,
		Files:      make([]dto.FileResponse, 0, len(f.Files)),
		SubFolders: make([]*dto.FolderListingResponse, 0, len(f.SubFolders)),
	}
	for _, file := range f.Files {
		res.Files = append(res.Files, fileResponse(file))
	}
	for _, sub := range f.SubFolders {
		res.SubFolders = append(res.SubFolders, listingResponse(sub))
	}
	return res
}

func fileResponse(f *storage.File) dto.FileResponse {
	res := dto.FileResponse{Name: f.Name, Path: f.Path, Url: f.Url, Size: f.Size}
	if !f.LastModified.IsZero() {
		modified := f.LastModified
		res.LastModified = &modified
	}
	return res
}

func stepsResponse(report provisioning.Report) []dto.StepResponse {
	steps := make([]dto.StepResponse, 0, len(report.Steps))
	for _, s := range report.Steps {
		steps = append(steps, dto.StepResponse{Step: string(s.Step), Status: string(s.Status), Reason: s.Reason})
	}
	return steps
}

func linksResponse(links []entity.ExternalLink) []dto.ExternalLinkResponse {
	res := make([]dto.ExternalLinkResponse, 0, len(links))
	for _, l := range links {
		res = append(res, dto.ExternalLinkResponse{Label: l.Label, Url: l.Url})
	}
	return res
}

func linksEntity(links []dto.ExternalLinkRequest) []entity.ExternalLink {
	res := make([]entity.ExternalLink, 0, len(links))
	for _, l := range links {
		res = append(res, entity.ExternalLink{Label: l.Label, Url: l.Url})
	}
	return res
}

func programResponse(p *entity.Program) *dto.ProgramResponse {
	return &dto.ProgramResponse{
		Id:             p.Id,
		Name:           p.Name,
		Code:           p.Code,
		Description:    p.Description,
		Active:         p.Active,
		StorageFolder:  folderResponse(p.StorageFolder),
		NotebookFolder: folderResponse(p.NotebookFolder),
		CreatedById:    p.CreatedById,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func studyResponse(s *entity.Study) *dto.StudyResponse {
	res := &dto.StudyResponse{
		Id:             s.Id,
		Code:           s.Code,
		ExternalCode:   s.ExternalCode,
		Name:           s.Name,
		Description:    s.Description,
		Status:         string(s.Status),
		ProgramId:      s.ProgramId,
		CollaboratorId: s.CollaboratorId,
		Legacy:         s.Legacy,
		Active:         s.Active,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		OwnerId:        s.OwnerId,
		UserIds:        s.UserIds,
		Keywords:       s.Keywords,
		Attributes:     s.Attributes,
		ExternalLinks:  linksResponse(s.ExternalLinks),
		StorageFolder:  folderResponse(s.StorageFolder),
		NotebookFolder: folderResponse(s.NotebookFolder),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.Program != nil {
		res.ProgramName = s.Program.Name
	}
	return res
}

func assayResponse(a *entity.Assay) *dto.AssayResponse {
	res := &dto.AssayResponse{
		Id:             a.Id,
		Code:           a.Code,
		Name:           a.Name,
		Description:    a.Description,
		Status:         string(a.Status),
		StudyId:        a.StudyId,
		AssayTypeId:    a.AssayTypeId,
		Legacy:         a.Legacy(),
		Active:         a.Active,
		StartDate:      a.StartDate,
		EndDate:        a.EndDate,
		OwnerId:        a.OwnerId,
		UserIds:        a.UserIds,
		Fields:         a.Fields,
		Attributes:     a.Attributes,
		Tasks:          make([]dto.AssayTaskResponse, 0, len(a.Tasks)),
		ExternalLinks:  linksResponse(a.ExternalLinks),
		StorageFolder:  folderResponse(a.StorageFolder),
		NotebookFolder: folderResponse(a.NotebookFolder),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	for _, t := range a.Tasks {
		res.Tasks = append(res.Tasks, dto.AssayTaskResponse{Label: t.Label, Status: t.Status, Order: t.Order})
	}
	if a.Study != nil {
		res.StudyCode = a.Study.Code
	}
	if a.AssayType != nil {
		res.AssayTypeName = a.AssayType.Name
	}
	return res
}

func assayTypeResponse(at *entity.AssayType) *dto.AssayTypeResponse {
	res := &dto.AssayTypeResponse{
		Id:             at.Id,
		Name:           at.Name,
		Description:    at.Description,
		Active:         at.Active,
		Fields:         make([]dto.AssayTypeFieldResponse, 0, len(at.Fields)),
		RequiredFields: at.RequiredFields,
		Tasks:          at.Tasks,
		CreatedAt:      at.CreatedAt,
	}
	for _, f := range at.Fields {
		res.Fields = append(res.Fields, dto.AssayTypeFieldResponse{
			Name:        f.Name,
			DisplayName: f.DisplayName,
			Type:        f.Type,
			Required:    f.Required,
			Description: f.Description,
		})
	}
	return res
}

func collaboratorResponse(c *entity.Collaborator) *dto.CollaboratorResponse {
	return &dto.CollaboratorResponse{
		Id:         c.Id,
		Name:       c.Name,
		Label:      c.Label,
		CodePrefix: c.CodePrefix,
		Active:     c.Active,
		CreatedAt:  c.CreatedAt,
	}
}

func userResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		Id:             u.Id,
		Username:       u.Username,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Admin:          u.Admin,
		Active:         u.Active,
		NotebookUserId: u.NotebookUserId,
		CreatedAt:      u.CreatedAt,
	}
}
