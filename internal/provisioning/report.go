package provisioning

import "strings"

type Step string

const (
	StepValidate             Step = "VALIDATE"
	StepAssignCode           Step = "ASSIGN_CODE"
	StepCreateStorageFolder  Step = "CREATE_STORAGE_FOLDER"
	StepCreateNotebookFolder Step = "CREATE_NOTEBOOK_FOLDER"
	StepCreateNotebookEntry  Step = "CREATE_NOTEBOOK_ENTRY"
	StepPersist              Step = "PERSIST"
	StepLinkEntryUrl         Step = "LINK_ENTRY_URL"
)

type StepStatus string

const (
	StatusOK       StepStatus = "ok"
	StatusSkipped  StepStatus = "skipped"
	StatusDegraded StepStatus = "degraded"
)

type StepResult struct {
	Step   Step       `json:"step"`
	Status StepStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// Report accumulates the outcome of every provisioning step in execution order.
type Report struct {
	Steps []StepResult `json:"steps"`
}

func (r *Report) ok(step Step, reason ...string) {
	r.Steps = append(r.Steps, StepResult{Step: step, Status: StatusOK, Reason: strings.Join(reason, "; ")})
}

func (r *Report) skip(step Step, reason string) {
	r.Steps = append(r.Steps, StepResult{Step: step, Status: StatusSkipped, Reason: reason})
}

func (r *Report) degrade(step Step, reason string) {
	r.Steps = append(r.Steps, StepResult{Step: step, Status: StatusDegraded, Reason: reason})
}

// Degraded reports whether any step finished without its external resource.
func (r Report) Degraded() bool {
	for _, s := range r.Steps {
		if s.Status == StatusDegraded {
			return true
		}
	}
	return false
}

// Result returns the recorded outcome of step. The boolean is false when the
// step never ran.
func (r Report) Result(step Step) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == step {
			return s, true
		}
	}
	return StepResult{}, false
}
