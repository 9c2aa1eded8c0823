// File: internal/service/factory.go
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
	"github.com/xkilldash9x/stepshot/internal/browser"
	"github.com/xkilldash9x/stepshot/internal/capture"
	"github.com/xkilldash9x/stepshot/internal/config"
	"github.com/xkilldash9x/stepshot/internal/runner"
)

// ComponentFactory creates the set of components needed for a run.
// This abstraction is what makes the run command testable without Chrome.
type ComponentFactory interface {
	Create(cfg *config.Config, logger *zap.Logger) (*Components, error)
}

// concreteFactory is the production implementation of the ComponentFactory.
type concreteFactory struct {
	fs afero.Fs
}

// NewComponentFactory creates a factory that launches real Chrome and writes
// artifacts to fs.
func NewComponentFactory(fs afero.Fs) ComponentFactory {
	return &concreteFactory{fs: fs}
}

// Create wires a chromedp-backed launcher into a fresh set of components.
func (f *concreteFactory) Create(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	return Assemble(cfg, logger, f.fs, func(l *zap.Logger) Launcher {
		return chromeLauncher{m: browser.NewManager(cfg.Browser, l)}
	}), nil
}

// Assemble builds components around the launcher returned by newLauncher.
// Every component shares a logger tagged with a fresh run ID.
func Assemble(cfg *config.Config, logger *zap.Logger, fs afero.Fs, newLauncher func(*zap.Logger) Launcher) *Components {
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	capturer := capture.NewCapturer(fs, cfg.Report.Dir, cfg.Report.ScreenshotDir, logger)
	return &Components{
		RunID:    runID,
		Logger:   logger,
		Fs:       fs,
		Launcher: newLauncher(logger),
		Capturer: capturer,
		Runner:   runner.New(cfg.Run, capturer, logger),
	}
}

// chromeLauncher adapts browser.Manager to Launcher.
type chromeLauncher struct {
	m *browser.Manager
}

func (l chromeLauncher) Start(ctx context.Context) (schemas.Session, error) {
	s, err := l.m.Start(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (l chromeLauncher) Stop(ctx context.Context, s schemas.Session) {
	bs, _ := s.(*browser.Session)
	l.m.Stop(ctx, bs)
}
