// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
	"github.com/xkilldash9x/stepshot/internal/config"
)

const defaultStopTimeout = 10 * time.Second

// Manager owns the browser process lifecycle for a single run.
type Manager struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

// NewManager creates a browser manager. No browser is launched until Start.
func NewManager(cfg config.BrowserConfig, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger.Named("browser_manager"),
	}
}

// Start launches Chrome and opens the tab the run will use. The browser is
// ready once the first (empty) chromedp.Run against the tab has completed; if
// that does not happen within the configured startup timeout, every context
// allocated so far is released and a *schemas.SessionStartError is returned.
//
// The browser outlives cancellation of ctx; it is only torn down by Stop.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	m.logger.Info("Launching browser.",
		zap.Bool("headless", m.cfg.Headless),
		zap.Bool("no_sandbox", m.cfg.NoSandbox),
		zap.Int("width", m.cfg.WindowWidth),
		zap.Int("height", m.cfg.WindowHeight),
		zap.Duration("startup_timeout", m.cfg.StartupTimeout),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(Detach(ctx), DefaultAllocatorOptions(m.cfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, m.contextOptions()...)

	release := func() {
		tabCancel()
		allocCancel()
	}

	ready := make(chan error, 1)
	go func() {
		// The first Run on a fresh context allocates the browser and the tab.
		ready <- chromedp.Run(tabCtx)
	}()

	timer := time.NewTimer(m.cfg.StartupTimeout)
	defer timer.Stop()

	select {
	case err := <-ready:
		if err != nil {
			release()
			m.logger.Error("Browser failed to start.", zap.Error(err))
			return nil, &schemas.SessionStartError{Err: err}
		}
	case <-timer.C:
		release()
		m.logger.Error("Browser did not become ready in time.", zap.Duration("timeout", m.cfg.StartupTimeout))
		return nil, &schemas.SessionStartError{Timeout: m.cfg.StartupTimeout, Err: context.DeadlineExceeded}
	case <-ctx.Done():
		release()
		return nil, &schemas.SessionStartError{Err: ctx.Err()}
	}

	s := newSession(tabCtx, tabCancel, allocCancel, m.logger)
	m.logger.Info("Browser session ready.", zap.String("session_id", s.ID()))
	return s, nil
}

func (m *Manager) contextOptions() []chromedp.ContextOption {
	sugar := m.logger.Named("cdp").Sugar()
	opts := []chromedp.ContextOption{
		chromedp.WithLogf(sugar.Infof),
		chromedp.WithErrorf(sugar.Warnf),
	}
	if m.cfg.Debug {
		opts = append(opts, chromedp.WithDebugf(sugar.Debugf))
	}
	return opts
}

// Stop closes the browser. It is safe to call on a nil, already stopped or
// crashed session: problems are logged and never returned.
func (m *Manager) Stop(ctx context.Context, s *Session) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Recovered from panic during browser shutdown.", zap.Any("panic", r))
		}
	}()

	if s == nil {
		m.logger.Warn("Stop called without a session; nothing to close.")
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		m.logger.Warn("Browser session already stopped.", zap.String("session_id", s.id))
		return
	}
	s.closed = true
	s.mu.Unlock()

	timeout := m.cfg.StopTimeout
	if timeout <= 0 {
		timeout = defaultStopTimeout
	}

	done := make(chan error, 1)
	go func() {
		// chromedp.Cancel asks the browser to close gracefully and waits for it.
		done <- chromedp.Cancel(s.ctx)
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("Browser did not close cleanly; forcing shutdown.", zap.Error(err))
		}
	case <-time.After(timeout):
		m.logger.Warn("Timed out waiting for browser to close; forcing shutdown.", zap.Duration("timeout", timeout))
	case <-ctx.Done():
		m.logger.Warn("Shutdown context ended before browser closed; forcing shutdown.", zap.Error(ctx.Err()))
	}

	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	m.logger.Info("Chrome closed.", zap.String("session_id", s.id))
}
