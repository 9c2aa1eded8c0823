package schemas

import (
	"time"
)

// -- Step Result Schemas --

// StepStatus is the terminal state of a single step.
type StepStatus string

const (
	StatusPass    StepStatus = "pass"
	StatusFail    StepStatus = "fail"
	StatusTimeout StepStatus = "timeout"
	// StatusSkipped is only produced when the whole run is cancelled before the
	// step could start.
	StatusSkipped StepStatus = "skipped"
)

// Failed reports whether the status counts against the process exit code.
func (s StepStatus) Failed() bool {
	return s == StatusFail || s == StatusTimeout
}

// Artifact is a screenshot persisted for one step.
type Artifact struct {
	// Name is the sanitized file name, e.g. "open_homepage.png".
	Name string `json:"name"`
	// Path is where the file was written.
	Path string `json:"path"`
	// RelPath is Path relative to the report directory and is what reports link to.
	RelPath string `json:"rel_path"`
	Size    int    `json:"size"`
}

// StepResult is produced once per step, in step order. It is filled in by the
// sequencer and the report attacher and must not be modified once the run
// has moved on to the next step.
type StepResult struct {
	Index  int        `json:"index"`
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	// Err is the step's own failure, kept for errors.As by callers.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
	// Warnings holds non-fatal problems: a missing optional element or a
	// failed screenshot capture.
	Warnings []string `json:"warnings,omitempty"`
	// Context is the markdown snippet a report renders inline with the step.
	Context    string        `json:"context,omitempty"`
	Screenshot *Artifact     `json:"screenshot,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// AddWarning appends a non-fatal message to the result.
func (r *StepResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Fail marks the result as failed with err and the given status.
func (r *StepResult) Fail(status StepStatus, err error) {
	r.Status = status
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}
