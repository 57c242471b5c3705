package provisioning

import (
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"

	"study-tracker-be/internal/entity"
	"study-tracker-be/pkg/storage"
)

// SummaryLinkLabel labels the external link pointing at a summary entry.
const SummaryLinkLabel = "Summary ELN Entry"

var (
	markupTag  = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// EntityFolderName is the display name shared by the storage folder, the
// notebook folder and the notebook entry of a study or assay.
func EntityFolderName(code, name string) string {
	return fmt.Sprintf("%s - %s", code, name)
}

// SummaryFileName is the markdown summary uploaded into an entity's storage folder.
func SummaryFileName(code string) string {
	return code + " Summary.md"
}

func StudyEntryTitle(study *entity.Study) string {
	return fmt.Sprintf("%s Study Summary: %s", study.Code, study.Name)
}

func AssayEntryTitle(assay *entity.Assay) string {
	return fmt.Sprintf("%s Assay Summary: %s", assay.Code, assay.Name)
}

// ProgramStorageTarget places the program folder at the backend root under
// the program name, verbatim.
func ProgramStorageTarget(program *entity.Program) storage.Target {
	return storage.Target{Name: program.Name}
}

// ProgramStoragePath is where the program folder lives: its recorded path
// when one exists, otherwise the path derived from its name.
func ProgramStoragePath(program *entity.Program) string {
	if program.StorageFolder != nil && program.StorageFolder.Path != "" {
		return program.StorageFolder.Path
	}
	return ProgramStorageTarget(program).Path()
}

func StudyStorageTarget(study *entity.Study) storage.Target {
	parent := ""
	if study.Program != nil {
		parent = ProgramStoragePath(study.Program)
	}
	return storage.Target{Name: EntityFolderName(study.Code, study.Name), ParentPath: parent}
}

func StudyStoragePath(study *entity.Study) string {
	if study.StorageFolder != nil && study.StorageFolder.Path != "" {
		return study.StorageFolder.Path
	}
	return StudyStorageTarget(study).Path()
}

func AssayStorageTarget(assay *entity.Assay) storage.Target {
	parent := ""
	if assay.Study != nil {
		parent = StudyStoragePath(assay.Study)
	}
	return storage.Target{Name: EntityFolderName(assay.Code, assay.Name), ParentPath: parent}
}

// StoragePathTarget addresses a recorded folder path directly.
func StoragePathTarget(p string) storage.Target {
	p = strings.Trim(p, "/")
	dir := path.Dir(p)
	if dir == "." {
		dir = ""
	}
	return storage.Target{Name: path.Base(p), ParentPath: dir}
}

// StripMarkup turns rich-text descriptions into plain text for notebook fields.
func StripMarkup(s string) string {
	s = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n").Replace(s)
	s = markupTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
