// FILE: internal/dto/notebook_dto.go
package dto

type NotebookTemplateResponse struct {
	ReferenceId string `json:"reference_id"`
	Name        string `json:"name"`
}

type NotebookFolderResponse struct {
	ReferenceId       string `json:"reference_id"`
	Name              string `json:"name"`
	Path              string `json:"path"`
	Url               string `json:"url"`
	ParentReferenceId string `json:"parent_reference_id,omitempty"`
}
