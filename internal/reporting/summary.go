// internal/reporting/summary.go
package reporting

import (
	"github.com/xkilldash9x/stepshot/api/schemas"
)

// Summary counts step outcomes for a run.
type Summary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	TimedOut int `json:"timed_out"`
	Skipped  int `json:"skipped"`
	// Warnings is the number of steps that carry at least one warning.
	Warnings int `json:"warnings"`
}

// Summarize tallies results by status.
func Summarize(results []schemas.StepResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case schemas.StatusPass:
			s.Passed++
		case schemas.StatusFail:
			s.Failed++
		case schemas.StatusTimeout:
			s.TimedOut++
		case schemas.StatusSkipped:
			s.Skipped++
		}
		if len(r.Warnings) > 0 {
			s.Warnings++
		}
	}
	return s
}

// OK is true when no step failed or timed out. Skipped steps only occur on
// an interrupted run and do not count as failures on their own.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.TimedOut == 0
}

// ExitCode maps the summary to the process exit status.
func (s Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}
