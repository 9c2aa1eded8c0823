package schemas

import (
	"fmt"
	"time"
)

// -- Error Taxonomy --

// SessionStartError means the browser could not be launched or did not become
// ready in time. It is the only error that aborts a run.
type SessionStartError struct {
	Timeout time.Duration
	Err     error
}

func (e *SessionStartError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("browser session did not start within %v: %v", e.Timeout, e.Err)
	}
	return fmt.Sprintf("browser session failed to start: %v", e.Err)
}

func (e *SessionStartError) Unwrap() error { return e.Err }

// StepTimeoutError is recorded on a step that exceeded its time budget.
type StepTimeoutError struct {
	Step    string
	Timeout time.Duration
}

func (e *StepTimeoutError) Error() string {
	return fmt.Sprintf("step %q exceeded its timeout of %v", e.Step, e.Timeout)
}

// ElementNotFoundError is returned when a required selector matches nothing.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("no element matches selector %q", e.Selector)
}

// CaptureError wraps any failure to take or persist a step screenshot.
type CaptureError struct {
	Step string
	// Op is the stage that failed: "capture", "mkdir" or "write".
	Op  string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("screenshot %s failed for step %q: %v", e.Op, e.Step, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
