// File: internal/service/components.go
package service

import (
	"context"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
	"github.com/xkilldash9x/stepshot/internal/capture"
	"github.com/xkilldash9x/stepshot/internal/runner"
)

// Launcher starts and stops the browser session a run uses.
type Launcher interface {
	Start(ctx context.Context) (schemas.Session, error)
	Stop(ctx context.Context, s schemas.Session)
}

// Components holds everything a single smoke run needs and owns the
// lifecycle of its browser session.
type Components struct {
	RunID    string
	Logger   *zap.Logger
	Fs       afero.Fs
	Launcher Launcher
	Capturer *capture.Capturer
	Runner   *runner.Runner

	mu      sync.Mutex
	session schemas.Session
	stopped bool
}

// StartSession launches the browser. It must succeed before the suite runs.
func (c *Components) StartSession(ctx context.Context) (schemas.Session, error) {
	s, err := c.Launcher.Start(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return s, nil
}

// Shutdown stops the browser if it was started. Only the first call has an
// effect.
func (c *Components) Shutdown(ctx context.Context) {
	c.mu.Lock()
	if c.stopped || c.session == nil {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	s := c.session
	c.mu.Unlock()

	c.Logger.Debug("Beginning components shutdown sequence.")
	c.Launcher.Stop(ctx, s)
	c.Logger.Debug("Components shut down.")
}
