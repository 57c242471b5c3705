// Package idgen assigns human readable hierarchical codes to studies and assays.
package idgen

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
)

const defaultAttempts = 5

type Options struct {
	// Padding zero-pads the sequence to this width. 0 keeps the bare number.
	Padding int
	// Attempts bounds how many candidates are probed before giving up.
	Attempts int
}

type IGenerator interface {
	GenerateStudyCode(ctx context.Context, study *entity.Study) (string, error)
	GenerateAssayCode(ctx context.Context, assay *entity.Assay) (string, error)
	GenerateExternalCode(ctx context.Context, study *entity.Study) (string, error)
}

type generator struct {
	uowFactory unitofwork.RepositoryFactory
	padding    int
	attempts   int
}

func NewGenerator(uowFactory unitofwork.RepositoryFactory, opts Options) IGenerator {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	padding := opts.Padding
	if padding < 0 {
		padding = 0
	}
	return &generator{uowFactory: uowFactory, padding: padding, attempts: attempts}
}

// GenerateStudyCode returns {programCode}-{n} where n follows the highest
// sequence already used under the study's program.
func (g *generator) GenerateStudyCode(ctx context.Context, study *entity.Study) (string, error) {
	if study.Program == nil || study.Program.Code == "" {
		return "", entity.NewValidationError("study", "programId", "program must be resolved before assigning a code", nil)
	}
	repo := g.uowFactory.NewUnitOfWork(ctx).StudyRepository()
	find := func(ctx context.Context, prefix string) ([]string, error) {
		return repo.FindCodes(ctx, specification.CodePrefix{Prefix: prefix})
	}
	return g.next(ctx, "study", study.Program.Code, find, countTaken(repo.Count, byCode))
}

// GenerateAssayCode returns {studyCode}-{n} under the assay's study.
func (g *generator) GenerateAssayCode(ctx context.Context, assay *entity.Assay) (string, error) {
	if assay.Study == nil || assay.Study.Code == "" {
		return "", entity.NewValidationError("assay", "studyId", "study must be resolved before assigning a code", nil)
	}
	repo := g.uowFactory.NewUnitOfWork(ctx).AssayRepository()
	find := func(ctx context.Context, prefix string) ([]string, error) {
		return repo.FindCodes(ctx, specification.CodePrefix{Prefix: prefix})
	}
	return g.next(ctx, "assay", assay.Study.Code, find, countTaken(repo.Count, byCode))
}

// GenerateExternalCode returns {collaboratorPrefix}-{n}. Only studies linked
// to a collaborator carry an external code.
func (g *generator) GenerateExternalCode(ctx context.Context, study *entity.Study) (string, error) {
	if study.Collaborator == nil || study.Collaborator.CodePrefix == "" {
		return "", entity.NewValidationError("study", "collaboratorId", "collaborator with a code prefix is required for an external code", nil)
	}
	repo := g.uowFactory.NewUnitOfWork(ctx).StudyRepository()
	find := func(ctx context.Context, prefix string) ([]string, error) {
		return repo.FindExternalCodes(ctx, specification.ExternalCodePrefix{Prefix: prefix})
	}
	byExternal := func(code string) specification.Specification { return specification.ByExternalCode{Code: code} }
	return g.next(ctx, "study", study.Collaborator.CodePrefix, find, countTaken(repo.Count, byExternal))
}

type counter func(ctx context.Context, specs ...specification.Specification) (int64, error)

type takenFunc func(ctx context.Context, code string) (bool, error)

func byCode(code string) specification.Specification { return specification.ByCode{Code: code} }

func countTaken(count counter, spec func(string) specification.Specification) takenFunc {
	return func(ctx context.Context, code string) (bool, error) {
		n, err := count(ctx, spec(code))
		return n > 0, err
	}
}

func (g *generator) next(
	ctx context.Context,
	entityName, parentCode string,
	find func(ctx context.Context, prefix string) ([]string, error),
	taken takenFunc,
) (string, error) {
	codes, err := find(ctx, parentCode+"-")
	if err != nil {
		return "", err
	}
	seq := MaxSequence(parentCode, codes)

	var candidate string
	for i := 0; i < g.attempts; i++ {
		seq++
		candidate = Format(parentCode, seq, g.padding)
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", entity.NewDuplicateError(entityName, "code", candidate)
}

// Format renders {parentCode}-{seq}, zero-padding seq to padding digits.
func Format(parentCode string, seq, padding int) string {
	return fmt.Sprintf("%s-%0*d", parentCode, padding, seq)
}

// MaxSequence returns the highest n among codes shaped exactly {parentCode}-{n}.
// Deeper descendants such as ONC-1-2 under ONC are ignored.
func MaxSequence(parentCode string, codes []string) int {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(parentCode) + `-(\d+)$`)
	max := 0
	for _, code := range codes {
		m := pattern.FindStringSubmatch(strings.TrimSpace(code))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
