package specification

import (
	"gorm.io/gorm"
)

type FolderByKind struct {
	Kind string
}

func (s FolderByKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", s.Kind)
}

type FolderByPath struct {
	Path string
}

func (s FolderByPath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("path = ?", s.Path)
}

// OrphanedFolder keeps references no program, study or assay points at.
type OrphanedFolder struct{}

func (s OrphanedFolder) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("NOT EXISTS (SELECT 1 FROM programs p WHERE p.storage_folder_id = folder_references.id OR p.notebook_folder_id = folder_references.id)").
		Where("NOT EXISTS (SELECT 1 FROM studies s WHERE s.storage_folder_id = folder_references.id OR s.notebook_folder_id = folder_references.id)").
		Where("NOT EXISTS (SELECT 1 FROM assays a WHERE a.storage_folder_id = folder_references.id OR a.notebook_folder_id = folder_references.id)")
}
