package model

// All lists every table managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&FolderReference{},
		&Collaborator{},
		&Program{},
		&Study{},
		&AssayType{},
		&Assay{},
	}
}
