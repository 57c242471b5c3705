package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByCode struct {
	Code string
}

func (s ByCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("code = ?", s.Code)
}

// CodePrefix matches codes starting with Prefix. LIKE wildcards in the prefix
// are escaped so a code such as "ON_C" only matches literally.
type CodePrefix struct {
	Prefix string
}

func (s CodePrefix) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("code LIKE ? ESCAPE '\\'", escapeLike(s.Prefix)+"%")
}

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(name) = LOWER(?)", s.Name)
}

type ByProgramID struct {
	ProgramID uuid.UUID
}

func (s ByProgramID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("program_id = ?", s.ProgramID)
}

type ByStudyID struct {
	StudyID uuid.UUID
}

func (s ByStudyID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("study_id = ?", s.StudyID)
}

type ByCollaboratorID struct {
	CollaboratorID uuid.UUID
}

func (s ByCollaboratorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collaborator_id = ?", s.CollaboratorID)
}

type ExternalCodePrefix struct {
	Prefix string
}

func (s ExternalCodePrefix) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_code LIKE ? ESCAPE '\\'", escapeLike(s.Prefix)+"%")
}

type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func escapeLike(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

type ByExternalCode struct {
	Code string
}

func (s ByExternalCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_code = ?", s.Code)
}
