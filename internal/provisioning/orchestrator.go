// Package provisioning creates studies and assays together with their folders
// in the storage and notebook backends, and repairs those references later.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/idgen"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/assayfield"
	"study-tracker-be/pkg/database"
	"study-tracker-be/pkg/notebook"
	"study-tracker-be/pkg/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	logModule          = "PROVISIONING"
	defaultCallTimeout = 30 * time.Second
	defaultAttempts    = 3
	defaultTaskStatus  = "TODO"
)

type Config struct {
	// CallTimeout bounds every individual backend call.
	CallTimeout time.Duration
	// PersistAttempts bounds how often a code is re-derived after a unique
	// violation at persistence time.
	PersistAttempts int
}

type Orchestrator struct {
	uowFactory unitofwork.RepositoryFactory
	codes      idgen.IGenerator
	storage    storage.Backend
	notebook   notebook.Backend
	directory  *notebook.Directory
	logger     logger.ILogger
	tracer     trace.Tracer
	cfg        Config
	now        func() time.Time
}

// NewOrchestrator wires the provisioning flow. Either backend may be nil, which
// disables the steps that depend on it.
func NewOrchestrator(
	uowFactory unitofwork.RepositoryFactory,
	codes idgen.IGenerator,
	storageBackend storage.Backend,
	notebookBackend notebook.Backend,
	directory *notebook.Directory,
	log logger.ILogger,
	cfg Config,
) *Orchestrator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.PersistAttempts <= 0 {
		cfg.PersistAttempts = defaultAttempts
	}
	if directory == nil && notebookBackend != nil {
		directory = notebook.NewDirectory(notebookBackend, 5*time.Minute)
	}
	return &Orchestrator{
		uowFactory: uowFactory,
		codes:      codes,
		storage:    storageBackend,
		notebook:   notebookBackend,
		directory:  directory,
		logger:     log,
		tracer:     otel.Tracer("study-tracker-be/provisioning"),
		cfg:        cfg,
		now:        time.Now,
	}
}

type StudyRequest struct {
	Study *entity.Study
	// NotebookUrl is adopted verbatim as the notebook reference of a legacy study.
	NotebookUrl string
	TemplateId  string
}

type StudyResult struct {
	Study  *entity.Study
	Entry  *notebook.Entry
	Report Report
}

type AssayRequest struct {
	Assay       *entity.Assay
	NotebookUrl string
	TemplateId  string
}

type AssayResult struct {
	Assay  *entity.Assay
	Entry  *notebook.Entry
	Report Report
}

// ProvisionStudy validates and stores a new study. Backend failures degrade
// the result instead of failing it; validation, code assignment and
// persistence failures abort with nothing stored locally.
func (o *Orchestrator) ProvisionStudy(ctx context.Context, req StudyRequest) (*StudyResult, error) {
	study := req.Study
	if study == nil {
		return nil, entity.NewValidationError("study", "", "study is required", nil)
	}
	result := &StudyResult{Study: study}
	report := &result.Report

	if err := o.run(ctx, StepValidate, func(ctx context.Context) error {
		return o.validateStudy(ctx, study)
	}); err != nil {
		return nil, err
	}
	report.ok(StepValidate)
	program, collaborator := study.Program, study.Collaborator

	generated := study.Code == ""
	if err := o.run(ctx, StepAssignCode, func(ctx context.Context) error {
		return o.assignStudyCodes(ctx, study)
	}); err != nil {
		return nil, err
	}
	if generated {
		report.ok(StepAssignCode, "generated "+study.Code)
	} else {
		report.ok(StepAssignCode, "caller supplied "+study.Code)
	}

	storageRef := o.provisionStorageFolder(ctx, report, StudyStorageTarget(study), program.StorageFolderId)

	folderName := EntityFolderName(study.Code, study.Name)
	var notebookRef *entity.FolderReference
	switch {
	case study.Legacy:
		notebookRef = o.adoptLegacyNotebook(report, folderName, req.NotebookUrl, "legacy study")
	case o.notebook == nil:
		report.skip(StepCreateNotebookFolder, "notebook backend not configured")
	case program.NotebookFolder == nil:
		report.skip(StepCreateNotebookFolder, "program has no notebook folder")
	default:
		notebookRef = o.provisionNotebookFolder(ctx, report, folderName, program.NotebookFolder)
	}

	var entry *notebook.Entry
	switch {
	case study.Legacy:
		report.skip(StepCreateNotebookEntry, "legacy study")
	case notebookRef == nil:
		report.skip(StepCreateNotebookEntry, "no notebook folder")
	default:
		entry = o.createEntry(ctx, report, notebook.EntryRequest{
			Title:             StudyEntryTitle(study),
			FolderReferenceId: notebookRef.ReferenceId,
			AuthorIds:         o.resolveAuthors(ctx, append([]uuid.UUID{study.OwnerId}, study.UserIds...)),
			TemplateId:        req.TemplateId,
			Fields: []notebook.Field{
				{Name: "Name", Value: study.Name},
				{Name: "Code", Value: study.Code},
				{Name: "Description", Value: StripMarkup(study.Description)},
				{Name: "Program", Value: program.Name},
			},
		})
	}
	result.Entry = entry

	canRetry := generated && storageRef == nil && notebookRef == nil && entry == nil
	if err := o.run(ctx, StepPersist, func(ctx context.Context) error {
		return o.persist(ctx, "study", study.Code, canRetry,
			func(ctx context.Context) (string, error) {
				study.Code = ""
				err := o.assignStudyCodes(ctx, study)
				return study.Code, err
			},
			func(ctx context.Context, uow unitofwork.UnitOfWork) error {
				if err := o.createRefs(ctx, uow, storageRef, notebookRef); err != nil {
					return err
				}
				study.StorageFolderId = refId(storageRef)
				study.NotebookFolderId = refId(notebookRef)
				return uow.StudyRepository().Create(ctx, study)
			})
	}); err != nil {
		return nil, err
	}
	report.ok(StepPersist)
	attachStudy(study, program, collaborator, storageRef, notebookRef)

	if entry == nil {
		report.skip(StepLinkEntryUrl, "no notebook entry")
		return result, nil
	}
	_ = o.run(ctx, StepLinkEntryUrl, func(ctx context.Context) error {
		previous := study.ExternalLinks
		study.ExternalLinks = append(append([]entity.ExternalLink{}, previous...), entity.ExternalLink{Label: SummaryLinkLabel, Url: entry.Url})
		if err := o.uowFactory.NewUnitOfWork(ctx).StudyRepository().Update(ctx, study); err != nil {
			study.ExternalLinks = previous
			o.degrade(ctx, report, StepLinkEntryUrl, err, map[string]interface{}{"code": study.Code})
			return nil
		}
		attachStudy(study, program, collaborator, storageRef, notebookRef)
		report.ok(StepLinkEntryUrl)
		return nil
	})
	return result, nil
}

// ProvisionAssay is ProvisionStudy for assays. Field values are checked against
// the assay type's schema and stored in their coerced form.
func (o *Orchestrator) ProvisionAssay(ctx context.Context, req AssayRequest) (*AssayResult, error) {
	assay := req.Assay
	if assay == nil {
		return nil, entity.NewValidationError("assay", "", "assay is required", nil)
	}
	result := &AssayResult{Assay: assay}
	report := &result.Report

	if err := o.run(ctx, StepValidate, func(ctx context.Context) error {
		return o.validateAssay(ctx, assay)
	}); err != nil {
		return nil, err
	}
	report.ok(StepValidate)
	study, assayType := assay.Study, assay.AssayType

	generated := assay.Code == ""
	if generated {
		if err := o.run(ctx, StepAssignCode, func(ctx context.Context) error {
			code, err := o.codes.GenerateAssayCode(ctx, assay)
			assay.Code = code
			return err
		}); err != nil {
			return nil, err
		}
		report.ok(StepAssignCode, "generated "+assay.Code)
	} else {
		report.ok(StepAssignCode, "caller supplied "+assay.Code)
	}

	storageRef := o.provisionStorageFolder(ctx, report, AssayStorageTarget(assay), study.StorageFolderId)

	folderName := EntityFolderName(assay.Code, assay.Name)
	var notebookRef *entity.FolderReference
	switch {
	case assay.Legacy():
		notebookRef = o.adoptLegacyNotebook(report, folderName, req.NotebookUrl, "legacy study")
	case o.notebook == nil:
		report.skip(StepCreateNotebookFolder, "notebook backend not configured")
	case study.NotebookFolder == nil:
		report.skip(StepCreateNotebookFolder, "study has no notebook folder")
	default:
		notebookRef = o.provisionNotebookFolder(ctx, report, folderName, study.NotebookFolder)
	}

	var entry *notebook.Entry
	switch {
	case assay.Legacy():
		report.skip(StepCreateNotebookEntry, "legacy study")
	case notebookRef == nil:
		report.skip(StepCreateNotebookEntry, "no notebook folder")
	default:
		entry = o.createEntry(ctx, report, notebook.EntryRequest{
			Title:             AssayEntryTitle(assay),
			FolderReferenceId: notebookRef.ReferenceId,
			AuthorIds:         o.resolveAuthors(ctx, append([]uuid.UUID{assay.OwnerId}, assay.UserIds...)),
			TemplateId:        req.TemplateId,
			Fields: []notebook.Field{
				{Name: "Name", Value: assay.Name},
				{Name: "Code", Value: assay.Code},
				{Name: "Description", Value: StripMarkup(assay.Description)},
				{Name: "Assay Type", Value: assayType.Name},
				{Name: "Study", Value: study.Code},
			},
		})
	}
	result.Entry = entry

	canRetry := generated && storageRef == nil && notebookRef == nil && entry == nil
	if err := o.run(ctx, StepPersist, func(ctx context.Context) error {
		return o.persist(ctx, "assay", assay.Code, canRetry,
			func(ctx context.Context) (string, error) {
				code, err := o.codes.GenerateAssayCode(ctx, assay)
				assay.Code = code
				return code, err
			},
			func(ctx context.Context, uow unitofwork.UnitOfWork) error {
				if err := o.createRefs(ctx, uow, storageRef, notebookRef); err != nil {
					return err
				}
				assay.StorageFolderId = refId(storageRef)
				assay.NotebookFolderId = refId(notebookRef)
				return uow.AssayRepository().Create(ctx, assay)
			})
	}); err != nil {
		return nil, err
	}
	report.ok(StepPersist)
	attachAssay(assay, study, assayType, storageRef, notebookRef)

	if entry == nil {
		report.skip(StepLinkEntryUrl, "no notebook entry")
		return result, nil
	}
	_ = o.run(ctx, StepLinkEntryUrl, func(ctx context.Context) error {
		previous := assay.ExternalLinks
		assay.ExternalLinks = append(append([]entity.ExternalLink{}, previous...), entity.ExternalLink{Label: SummaryLinkLabel, Url: entry.Url})
		if err := o.uowFactory.NewUnitOfWork(ctx).AssayRepository().Update(ctx, assay); err != nil {
			assay.ExternalLinks = previous
			o.degrade(ctx, report, StepLinkEntryUrl, err, map[string]interface{}{"code": assay.Code})
			return nil
		}
		attachAssay(assay, study, assayType, storageRef, notebookRef)
		report.ok(StepLinkEntryUrl)
		return nil
	})
	return result, nil
}

func (o *Orchestrator) validateStudy(ctx context.Context, study *entity.Study) error {
	study.Name = strings.TrimSpace(study.Name)
	if study.Name == "" {
		return entity.NewValidationError("study", "name", "name is required", nil)
	}
	if study.Status == "" {
		study.Status = entity.StatusInPlanning
	}
	if !study.Status.Valid() {
		return entity.NewValidationError("study", "status", fmt.Sprintf("unknown status %q", study.Status), nil)
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	program, err := uow.ProgramRepository().FindOne(ctx, specification.ByID{ID: study.ProgramId})
	if err != nil {
		return err
	}
	if program == nil {
		return entity.NewNotFoundError("program", study.ProgramId)
	}
	if err := LoadProgramFolders(ctx, uow, program); err != nil {
		return err
	}
	study.Program = program

	if study.CollaboratorId != nil {
		collaborator, err := uow.CollaboratorRepository().FindOne(ctx, specification.ByID{ID: *study.CollaboratorId})
		if err != nil {
			return err
		}
		if collaborator == nil {
			return entity.NewNotFoundError("collaborator", *study.CollaboratorId)
		}
		study.Collaborator = collaborator
	}

	sibling, err := uow.StudyRepository().FindOne(ctx,
		specification.ByProgramID{ProgramID: program.Id},
		specification.ByName{Name: study.Name},
	)
	if err != nil {
		return err
	}
	if sibling != nil {
		return entity.NewDuplicateError("study", "name", study.Name)
	}
	if study.Code != "" {
		n, err := uow.StudyRepository().Count(ctx, specification.ByCode{Code: study.Code})
		if err != nil {
			return err
		}
		if n > 0 {
			return entity.NewDuplicateError("study", "code", study.Code)
		}
	}
	if study.ExternalCode != nil && *study.ExternalCode != "" {
		n, err := uow.StudyRepository().Count(ctx, specification.ByExternalCode{Code: *study.ExternalCode})
		if err != nil {
			return err
		}
		if n > 0 {
			return entity.NewDuplicateError("study", "externalCode", *study.ExternalCode)
		}
	}

	now := o.now()
	if study.Id == uuid.Nil {
		study.Id = uuid.New()
	}
	if study.StartDate.IsZero() {
		study.StartDate = now.UTC()
	}
	if study.Status == entity.StatusComplete && study.EndDate == nil {
		study.ApplyStatus(study.Status, now.UTC())
	}
	study.Active = true
	study.CreatedAt = now
	return nil
}

func (o *Orchestrator) assignStudyCodes(ctx context.Context, study *entity.Study) error {
	if study.Code == "" {
		code, err := o.codes.GenerateStudyCode(ctx, study)
		if err != nil {
			return err
		}
		study.Code = code
	}
	if study.Collaborator != nil && (study.ExternalCode == nil || *study.ExternalCode == "") {
		code, err := o.codes.GenerateExternalCode(ctx, study)
		if err != nil {
			return err
		}
		study.ExternalCode = &code
	}
	return nil
}

func (o *Orchestrator) validateAssay(ctx context.Context, assay *entity.Assay) error {
	assay.Name = strings.TrimSpace(assay.Name)
	if assay.Name == "" {
		return entity.NewValidationError("assay", "name", "name is required", nil)
	}
	if assay.Status == "" {
		assay.Status = entity.StatusInPlanning
	}
	if !assay.Status.Valid() {
		return entity.NewValidationError("assay", "status", fmt.Sprintf("unknown status %q", assay.Status), nil)
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	study, err := LoadStudy(ctx, uow, assay.StudyId)
	if err != nil {
		return err
	}
	assay.Study = study

	assayType, err := uow.AssayTypeRepository().FindOne(ctx, specification.ByID{ID: assay.AssayTypeId})
	if err != nil {
		return err
	}
	if assayType == nil {
		return entity.NewNotFoundError("assay type", assay.AssayTypeId)
	}
	assay.AssayType = assayType

	sibling, err := uow.AssayRepository().FindOne(ctx,
		specification.ByStudyID{StudyID: study.Id},
		specification.ByName{Name: assay.Name},
	)
	if err != nil {
		return err
	}
	if sibling != nil {
		return entity.NewDuplicateError("assay", "name", assay.Name)
	}
	if assay.Code != "" {
		n, err := uow.AssayRepository().Count(ctx, specification.ByCode{Code: assay.Code})
		if err != nil {
			return err
		}
		if n > 0 {
			return entity.NewDuplicateError("assay", "code", assay.Code)
		}
	}

	fields, err := ValidateAssayFields(assayType, assay.Fields)
	if err != nil {
		return err
	}
	assay.Fields = fields

	if len(assay.Tasks) == 0 {
		for i, label := range assayType.Tasks {
			assay.Tasks = append(assay.Tasks, entity.AssayTask{Label: label, Status: defaultTaskStatus, Order: i})
		}
	}

	now := o.now()
	if assay.Id == uuid.Nil {
		assay.Id = uuid.New()
	}
	if assay.StartDate.IsZero() {
		assay.StartDate = now.UTC()
	}
	if assay.Status == entity.StatusComplete && assay.EndDate == nil {
		assay.ApplyStatus(assay.Status, now.UTC())
	}
	assay.Active = true
	assay.CreatedAt = now
	return nil
}

// AssaySchema translates an assay type into the field schema values are
// validated against.
func AssaySchema(assayType *entity.AssayType) assayfield.Schema {
	schema := assayfield.Schema{RequiredFields: assayType.RequiredFields}
	for _, f := range assayType.Fields {
		schema.Fields = append(schema.Fields, assayfield.Definition{
			Name:     f.Name,
			Type:     assayfield.Type(strings.ToUpper(f.Type)),
			Required: f.Required,
		})
	}
	return schema
}

// ValidateAssayFields coerces values against the assay type schema, reporting
// the offending field as a validation error.
func ValidateAssayFields(assayType *entity.AssayType, values map[string]interface{}) (map[string]interface{}, error) {
	fields, err := assayfield.Validate(AssaySchema(assayType), values)
	if err != nil {
		var fe *assayfield.FieldError
		if errors.As(err, &fe) {
			return nil, entity.NewValidationError("assay", fe.Field, fe.Error(), err)
		}
		return nil, entity.NewValidationError("assay", "fields", err.Error(), err)
	}
	return fields, nil
}

func (o *Orchestrator) provisionStorageFolder(ctx context.Context, report *Report, target storage.Target, parentId *uuid.UUID) *entity.FolderReference {
	if o.storage == nil {
		report.skip(StepCreateStorageFolder, "storage backend not configured")
		return nil
	}
	var ref *entity.FolderReference
	_ = o.run(ctx, StepCreateStorageFolder, func(ctx context.Context) error {
		details := map[string]interface{}{"path": target.Path()}
		folder, adopted, err := o.createOrAdoptStorageFolder(ctx, target)
		if err != nil {
			o.degrade(ctx, report, StepCreateStorageFolder, err, details)
			return nil
		}
		ref = storageRef(folder, parentId, o.now())
		switch {
		case !adopted:
			report.ok(StepCreateStorageFolder)
		case folder.Name != storage.SanitizeName(target.Name):
			reason := fmt.Sprintf("adopted existing folder %q, expected name %q", folder.Name, target.Name)
			details["adoptedName"] = folder.Name
			o.logger.Warn(logModule, reason, details)
			trace.SpanFromContext(ctx).AddEvent("adopted folder with mismatched name")
			report.degrade(StepCreateStorageFolder, reason)
		default:
			report.ok(StepCreateStorageFolder, "adopted existing folder")
		}
		return nil
	})
	return ref
}

// createOrAdoptStorageFolder treats an already-exists rejection as a signal to
// adopt the folder the backend already holds.
func (o *Orchestrator) createOrAdoptStorageFolder(ctx context.Context, target storage.Target) (*storage.Folder, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	folder, err := o.storage.CreateFolder(callCtx, target)
	cancel()
	if err == nil {
		return folder, false, nil
	}
	if !errors.Is(err, storage.ErrAlreadyExists) {
		return nil, false, err
	}
	callCtx, cancel = context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()
	folder, err = o.storage.FindFolder(callCtx, target, storage.FindOptions{})
	if err != nil {
		return nil, true, fmt.Errorf("folder exists but could not be fetched: %w", err)
	}
	return folder, true, nil
}

func (o *Orchestrator) provisionNotebookFolder(ctx context.Context, report *Report, name string, parent *entity.FolderReference) *entity.FolderReference {
	var ref *entity.FolderReference
	_ = o.run(ctx, StepCreateNotebookFolder, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
		defer cancel()
		folder, err := o.notebook.CreateFolder(callCtx, name, parent.ReferenceId)
		if err != nil {
			o.degrade(ctx, report, StepCreateNotebookFolder, err, map[string]interface{}{"name": name, "parent": parent.ReferenceId})
			return nil
		}
		ref = notebookRef(folder, &parent.Id, o.now())
		report.ok(StepCreateNotebookFolder)
		return nil
	})
	return ref
}

func (o *Orchestrator) adoptLegacyNotebook(report *Report, name, url, reason string) *entity.FolderReference {
	url = strings.TrimSpace(url)
	if url == "" {
		report.skip(StepCreateNotebookFolder, reason)
		return nil
	}
	report.ok(StepCreateNotebookFolder, "adopted legacy notebook url")
	return &entity.FolderReference{
		Id:          uuid.New(),
		Kind:        entity.FolderKindNotebook,
		ReferenceId: url,
		Name:        name,
		Path:        name,
		Url:         url,
		CreatedAt:   o.now(),
	}
}

func (o *Orchestrator) createEntry(ctx context.Context, report *Report, req notebook.EntryRequest) *notebook.Entry {
	var entry *notebook.Entry
	_ = o.run(ctx, StepCreateNotebookEntry, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
		defer cancel()
		created, err := o.notebook.CreateEntry(callCtx, req)
		if err != nil {
			o.degrade(ctx, report, StepCreateNotebookEntry, err, map[string]interface{}{"title": req.Title})
			return nil
		}
		entry = created
		report.ok(StepCreateNotebookEntry)
		return nil
	})
	return entry
}

// resolveAuthors maps application users to notebook user ids. Users without a
// mapping are skipped.
func (o *Orchestrator) resolveAuthors(ctx context.Context, userIds []uuid.UUID) []string {
	ids := make([]uuid.UUID, 0, len(userIds))
	seen := map[uuid.UUID]bool{}
	for _, id := range userIds {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 || o.directory == nil {
		return nil
	}

	users, err := o.uowFactory.NewUnitOfWork(ctx).UserRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		o.logger.Warn(logModule, "Failed to load entry authors", map[string]interface{}{"error": err.Error()})
		return nil
	}
	byId := make(map[uuid.UUID]*entity.User, len(users))
	for _, u := range users {
		byId[u.Id] = u
	}

	authors := make([]string, 0, len(ids))
	for _, id := range ids {
		user, ok := byId[id]
		if !ok {
			o.logger.Warn(logModule, "Entry author not found", map[string]interface{}{"userId": id.String()})
			continue
		}
		identity := notebook.Identity{Username: user.Username, Email: user.Email}
		if user.NotebookUserId != nil {
			identity.NativeId = *user.NotebookUserId
		}
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
		nativeId, found, err := o.directory.Resolve(callCtx, identity)
		cancel()
		if err != nil {
			o.logger.Warn(logModule, "Failed to resolve notebook user", map[string]interface{}{"userId": id.String(), "error": err.Error()})
			continue
		}
		if !found {
			o.logger.Warn(logModule, "No notebook user mapped", map[string]interface{}{"userId": id.String(), "username": user.Username})
			continue
		}
		authors = append(authors, nativeId)
	}
	return authors
}

func (o *Orchestrator) createRefs(ctx context.Context, uow unitofwork.UnitOfWork, refs ...*entity.FolderReference) error {
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if err := uow.FolderReferenceRepository().Create(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

// persist runs write in one transaction. A unique violation re-derives the
// code and tries again only while canRetry holds, meaning nothing external
// has been named after the current code yet.
func (o *Orchestrator) persist(
	ctx context.Context,
	entityName, code string,
	canRetry bool,
	regenerate func(ctx context.Context) (string, error),
	write func(ctx context.Context, uow unitofwork.UnitOfWork) error,
) error {
	for attempt := 1; ; attempt++ {
		err := o.inTransaction(ctx, write)
		if err == nil {
			return nil
		}
		if !database.IsUniqueViolation(err) {
			return err
		}
		if !canRetry || attempt >= o.cfg.PersistAttempts {
			dup := entity.NewDuplicateError(entityName, "code", code)
			dup.Err = err
			return dup
		}
		o.logger.Warn(logModule, "Code taken concurrently, assigning a new one", map[string]interface{}{
			"entity": entityName, "code": code, "attempt": attempt,
		})
		if code, err = regenerate(ctx); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) inTransaction(ctx context.Context, write func(ctx context.Context, uow unitofwork.UnitOfWork) error) error {
	uow := o.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()
	if err := write(ctx, uow); err != nil {
		return err
	}
	return uow.Commit()
}

// run executes one step inside its own span.
func (o *Orchestrator) run(ctx context.Context, step Step, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "provisioning."+strings.ToLower(string(step)),
		trace.WithAttributes(attribute.String("provisioning.step", string(step))))
	defer span.End()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (o *Orchestrator) degrade(ctx context.Context, report *Report, step Step, err error, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["step"] = string(step)
	details["error"] = err.Error()
	o.logger.Warn(logModule, "Backend call failed, continuing without resource", details)
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	report.degrade(step, err.Error())
}

// LoadStudy fetches a study with its program and every folder reference the
// naming rules depend on.
func LoadStudy(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Study, error) {
	study, err := uow.StudyRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if study == nil {
		return nil, entity.NewNotFoundError("study", id)
	}
	program, err := uow.ProgramRepository().FindOne(ctx, specification.ByID{ID: study.ProgramId})
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, entity.NewNotFoundError("program", study.ProgramId)
	}
	if err := LoadProgramFolders(ctx, uow, program); err != nil {
		return nil, err
	}
	study.Program = program
	if study.StorageFolder, err = loadFolder(ctx, uow, study.StorageFolderId); err != nil {
		return nil, err
	}
	if study.NotebookFolder, err = loadFolder(ctx, uow, study.NotebookFolderId); err != nil {
		return nil, err
	}
	return study, nil
}

// LoadAssay fetches an assay with its type, study, program and folder references.
func LoadAssay(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Assay, error) {
	assay, err := uow.AssayRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if assay == nil {
		return nil, entity.NewNotFoundError("assay", id)
	}
	if assay.Study, err = LoadStudy(ctx, uow, assay.StudyId); err != nil {
		return nil, err
	}
	if assay.AssayType, err = uow.AssayTypeRepository().FindOne(ctx, specification.ByID{ID: assay.AssayTypeId}); err != nil {
		return nil, err
	}
	NormalizeAssayFields(assay)
	if assay.StorageFolder, err = loadFolder(ctx, uow, assay.StorageFolderId); err != nil {
		return nil, err
	}
	if assay.NotebookFolder, err = loadFolder(ctx, uow, assay.NotebookFolderId); err != nil {
		return nil, err
	}
	return assay, nil
}

// NormalizeAssayFields restores the declared types of stored field values.
// JSON columns hand numbers back as json.Number.
func NormalizeAssayFields(assay *entity.Assay) {
	if assay == nil || assay.AssayType == nil {
		return
	}
	assay.Fields = assayfield.Normalize(AssaySchema(assay.AssayType), assay.Fields)
}

func LoadProgramFolders(ctx context.Context, uow unitofwork.UnitOfWork, program *entity.Program) error {
	var err error
	if program.StorageFolder, err = loadFolder(ctx, uow, program.StorageFolderId); err != nil {
		return err
	}
	program.NotebookFolder, err = loadFolder(ctx, uow, program.NotebookFolderId)
	return err
}

func loadFolder(ctx context.Context, uow unitofwork.UnitOfWork, id *uuid.UUID) (*entity.FolderReference, error) {
	if id == nil {
		return nil, nil
	}
	return uow.FolderReferenceRepository().FindOne(ctx, specification.ByID{ID: *id})
}

func storageRef(folder *storage.Folder, parentId *uuid.UUID, now time.Time) *entity.FolderReference {
	return &entity.FolderReference{
		Id:                uuid.New(),
		Kind:              entity.FolderKindStorage,
		ReferenceId:       folder.ReferenceId,
		Name:              folder.Name,
		Path:              folder.Path,
		Url:               folder.Url,
		ParentReferenceId: parentId,
		CreatedAt:         now,
	}
}

func notebookRef(folder *notebook.Folder, parentId *uuid.UUID, now time.Time) *entity.FolderReference {
	return &entity.FolderReference{
		Id:                uuid.New(),
		Kind:              entity.FolderKindNotebook,
		ReferenceId:       folder.ReferenceId,
		Name:              folder.Name,
		Path:              folder.Path,
		Url:               folder.Url,
		ParentReferenceId: parentId,
		CreatedAt:         now,
	}
}

func refId(ref *entity.FolderReference) *uuid.UUID {
	if ref == nil {
		return nil
	}
	id := ref.Id
	return &id
}

// Repository writes replace the entity with its stored form; these put the
// resolved relations back.
func attachStudy(study *entity.Study, program *entity.Program, collaborator *entity.Collaborator, storageRef, notebookRef *entity.FolderReference) {
	study.Program = program
	study.Collaborator = collaborator
	study.StorageFolder = storageRef
	study.NotebookFolder = notebookRef
}

func attachAssay(assay *entity.Assay, study *entity.Study, assayType *entity.AssayType, storageRef, notebookRef *entity.FolderReference) {
	assay.Study = study
	assay.AssayType = assayType
	assay.StorageFolder = storageRef
	assay.NotebookFolder = notebookRef
	NormalizeAssayFields(assay)
}
