// internal/runner/step.go
package runner

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

// Action is the work a step performs against the browser. It must honour ctx;
// the sequencer cancels it when the step's timeout expires.
type Action func(ctx context.Context, sc *StepContext) error

// Step is one named unit of a scenario. A nil Action is valid and means the
// step only produces a screenshot.
type Step struct {
	Name   string
	Action Action
}

// StepContext is what an Action receives besides its context: the shared
// browser session, a logger scoped to the step, and a way to record
// non-fatal warnings.
type StepContext struct {
	Session schemas.Session
	Logger  *zap.Logger

	mu       sync.Mutex
	warnings []string
	sealed   bool
}

func newStepContext(session schemas.Session, logger *zap.Logger) *StepContext {
	return &StepContext{Session: session, Logger: logger}
}

// Warn records a non-fatal problem on the step's result. Warnings raised
// after the step has been finalized (for example by an action that outlived
// its timeout) are logged and dropped.
func (sc *StepContext) Warn(msg string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.sealed {
		sc.Logger.Warn("Dropping warning raised after step finished.", zap.String("warning", msg))
		return
	}
	sc.warnings = append(sc.warnings, msg)
}

// seal stops further warnings and returns the ones collected so far.
func (sc *StepContext) seal() []string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.sealed = true
	return sc.warnings
}
