// internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
	"github.com/xkilldash9x/stepshot/internal/config"
	"github.com/xkilldash9x/stepshot/internal/reporting"
)

const (
	defaultStepTimeout    = 30 * time.Second
	defaultCaptureTimeout = 10 * time.Second
	// timeoutGrace is how long a timed-out action gets to notice its
	// cancelled context before the sequencer moves on without it.
	timeoutGrace = 2 * time.Second
)

// Capturer persists a screenshot of the session for a step.
type Capturer interface {
	Capture(ctx context.Context, s schemas.Session, stepName string) (*schemas.Artifact, error)
}

// Phase is the coarse state of a Runner.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is Idle, Running(Step) or Completed. Step is the 1-based index of the
// step in progress and is only meaningful while running.
type State struct {
	Phase Phase
	Step  int
}

func (s State) String() string {
	if s.Phase == PhaseRunning {
		return fmt.Sprintf("running(%d)", s.Step)
	}
	return s.Phase.String()
}

// Runner executes steps strictly in order against one session. A Runner
// performs a single run.
type Runner struct {
	capturer       Capturer
	logger         *zap.Logger
	stepTimeout    time.Duration
	captureTimeout time.Duration
	grace          time.Duration

	mu    sync.Mutex
	state State
}

// New creates a Runner. capturer may be nil, in which case no screenshots are
// taken.
func New(cfg config.RunConfig, capturer Capturer, logger *zap.Logger) *Runner {
	stepTimeout := cfg.StepTimeout
	if stepTimeout <= 0 {
		stepTimeout = defaultStepTimeout
	}
	captureTimeout := cfg.CaptureTimeout
	if captureTimeout <= 0 {
		captureTimeout = defaultCaptureTimeout
	}
	return &Runner{
		capturer:       capturer,
		logger:         logger.Named("runner"),
		stepTimeout:    stepTimeout,
		captureTimeout: captureTimeout,
		grace:          timeoutGrace,
	}
}

// State reports where the runner is in its lifecycle.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

// Run executes steps in order and returns exactly one result per step, in
// step order. A failing or timed-out step never stops the sequence; a
// cancelled ctx marks every step that has not started as skipped. Calling
// Run on a Runner that has already run returns nil.
//
// An action that ignores its cancelled context is abandoned after a short
// grace period and may still be using session while the capture and later
// steps run. Actions should return promptly once ctx is done.
func (r *Runner) Run(ctx context.Context, session schemas.Session, steps []Step) []schemas.StepResult {
	r.mu.Lock()
	if r.state.Phase != PhaseIdle {
		r.mu.Unlock()
		r.logger.Error("Runner has already been used; refusing to run again.", zap.Stringer("state", r.state))
		return nil
	}
	r.state = State{Phase: PhaseRunning}
	r.mu.Unlock()
	defer r.setState(State{Phase: PhaseCompleted})

	results := make([]schemas.StepResult, 0, len(steps))
	for i, step := range steps {
		result := schemas.StepResult{Index: i + 1, Name: step.Name}

		if err := ctx.Err(); err != nil {
			result.Status = schemas.StatusSkipped
			result.Error = fmt.Sprintf("run cancelled before step started: %v", err)
			r.logger.Warn("Skipping step.", zap.Int("step", result.Index), zap.String("name", step.Name))
			results = append(results, result)
			continue
		}

		r.setState(State{Phase: PhaseRunning, Step: i + 1})
		r.logger.Info("Step started.", zap.Int("step", result.Index), zap.String("name", step.Name))

		result.StartedAt = time.Now()
		r.execute(ctx, session, step, &result)
		result.Duration = time.Since(result.StartedAt)

		r.capture(ctx, session, &result)

		fields := []zap.Field{
			zap.Int("step", result.Index),
			zap.String("name", result.Name),
			zap.String("status", string(result.Status)),
			zap.Duration("duration", result.Duration),
		}
		if result.Context != "" {
			fields = append(fields, zap.String("context", result.Context))
		}
		if result.Status.Failed() {
			r.logger.Error("Step failed.", append(fields, zap.String("error", result.Error))...)
		} else {
			r.logger.Info("Step finished.", fields...)
		}
		results = append(results, result)
	}
	return results
}

// execute runs the step's action under its own timeout and records the
// outcome on result. Panics in the action are recovered.
func (r *Runner) execute(ctx context.Context, session schemas.Session, step Step, result *schemas.StepResult) {
	sc := newStepContext(session, r.logger.With(zap.String("step", step.Name)))
	if step.Action == nil {
		result.Status = schemas.StatusPass
		return
	}

	stepCtx, cancel := context.WithTimeout(ctx, r.stepTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("step panicked: %v", p)
			}
		}()
		done <- step.Action(stepCtx, sc)
	}()

	var err error
	timedOut := false
	select {
	case err = <-done:
	case <-stepCtx.Done():
		select {
		case err = <-done:
		case <-time.After(r.grace):
			r.logger.Warn("Step action did not return after cancellation.", zap.String("name", step.Name))
		}
		timedOut = errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	}
	result.Warnings = append(result.Warnings, sc.seal()...)

	var notFound *schemas.ElementNotFoundError
	switch {
	case timedOut:
		result.Fail(schemas.StatusTimeout, &schemas.StepTimeoutError{Step: step.Name, Timeout: r.stepTimeout})
	case err == nil:
		result.Status = schemas.StatusPass
	case errors.As(err, &notFound):
		// A missing element is tolerated; the step passes with a warning.
		result.Status = schemas.StatusPass
		result.AddWarning(notFound.Error())
	case ctx.Err() != nil:
		result.Fail(schemas.StatusFail, fmt.Errorf("run cancelled during step: %w", err))
	default:
		result.Fail(schemas.StatusFail, err)
	}
}

// capture takes the post-step screenshot and attaches it. Failures become
// warnings and never change the step's status. The capture is detached from
// ctx so an interrupted step still gets its screenshot attempt.
func (r *Runner) capture(ctx context.Context, session schemas.Session, result *schemas.StepResult) {
	if r.capturer == nil {
		return
	}
	captureCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.captureTimeout)
	defer cancel()

	artifact, err := r.capturer.Capture(captureCtx, session, result.Name)
	if err != nil {
		r.logger.Warn("Screenshot capture failed.", zap.String("name", result.Name), zap.Error(err))
		result.AddWarning(err.Error())
		return
	}
	reporting.Attach(result, artifact)
}
