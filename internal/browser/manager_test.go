// internal/browser/manager_test.go
package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stepshot/api/schemas"
	"github.com/xkilldash9x/stepshot/internal/config"
)

func testBrowserConfig() config.BrowserConfig {
	return config.BrowserConfig{
		Headless:       true,
		NoSandbox:      true,
		DisableGPU:     true,
		WindowWidth:    1280,
		WindowHeight:   720,
		StartupTimeout: 20 * time.Second,
		StopTimeout:    5 * time.Second,
	}
}

func TestManager_Start_MissingBinary(t *testing.T) {
	cfg := testBrowserConfig()
	cfg.ExecPath = "/nonexistent/path/to/chrome"
	m := NewManager(cfg, zaptest.NewLogger(t))

	s, err := m.Start(context.Background())
	require.Error(t, err)
	assert.Nil(t, s)

	var startErr *schemas.SessionStartError
	require.True(t, errors.As(err, &startErr))
	assert.Zero(t, startErr.Timeout, "a launch failure is not a timeout")
}

func TestManager_Start_CancelledContext(t *testing.T) {
	cfg := testBrowserConfig()
	cfg.ExecPath = "/nonexistent/path/to/chrome"
	m := NewManager(cfg, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Start(ctx)
	var startErr *schemas.SessionStartError
	require.ErrorAs(t, err, &startErr)
}

func TestManager_Stop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	m := NewManager(testBrowserConfig(), logger)

	t.Run("NilSession", func(t *testing.T) {
		assert.NotPanics(t, func() { m.Stop(context.Background(), nil) })
	})

	t.Run("IdempotentTeardown", func(t *testing.T) {
		var tabCancels, allocCancels atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		s := newSession(ctx,
			func() { tabCancels.Add(1); cancel() },
			func() { allocCancels.Add(1) },
			logger,
		)

		m.Stop(context.Background(), s)
		m.Stop(context.Background(), s)

		assert.Equal(t, int32(1), tabCancels.Load())
		assert.Equal(t, int32(1), allocCancels.Load())
		assert.True(t, s.isClosed())
	})

	t.Run("ExpiredShutdownContext", func(t *testing.T) {
		var allocCancels atomic.Int32
		s := newSession(context.Background(), func() {}, func() { allocCancels.Add(1) }, logger)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NotPanics(t, func() { m.Stop(ctx, s) })
		assert.Equal(t, int32(1), allocCancels.Load(), "teardown is forced even when ctx is done")
	})
}

func TestSession_ClosedRejectsActions(t *testing.T) {
	s := newSession(context.Background(), func() {}, func() {}, zaptest.NewLogger(t))
	NewManager(testBrowserConfig(), zaptest.NewLogger(t)).Stop(context.Background(), s)

	ctx := context.Background()
	assert.ErrorIs(t, s.Navigate(ctx, "http://example.com"), ErrSessionClosed)
	assert.ErrorIs(t, s.Evaluate(ctx, "1", nil), ErrSessionClosed)

	_, err := s.FindElement(ctx, "footer")
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, found, err := s.FindOptional(ctx, "footer")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.False(t, found)

	_, err = s.CaptureViewport(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = s.Title(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = s.CurrentURL(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)

	assert.Error(t, s.ScrollIntoView(ctx, nil))
}

// TestSession_Integration drives a real browser against a local page. It
// needs a Chrome or Chromium binary on PATH.
func TestSession_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser integration test in short mode")
	}
	var execPath string
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			execPath = p
			break
		}
	}
	if execPath == "" {
		t.Skip("no Chrome binary found on PATH")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!doctype html><html><head><title>Stepshot Fixture</title></head>
<body><div style="height:4000px">content</div><footer id="f">footer</footer></body></html>`))
	}))
	defer srv.Close()

	cfg := testBrowserConfig()
	cfg.ExecPath = execPath
	m := NewManager(cfg, zaptest.NewLogger(t))

	s, err := m.Start(context.Background())
	require.NoError(t, err)
	defer m.Stop(context.Background(), s)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, s.Navigate(ctx, srv.URL))

	title, err := s.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stepshot Fixture", title)

	require.NoError(t, s.Evaluate(ctx, "window.scrollBy(0, 1000)", nil))

	footer, found, err := s.FindOptional(ctx, "footer")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "footer", footer.TagName)
	require.NoError(t, s.ScrollIntoView(ctx, footer))

	_, found, err = s.FindOptional(ctx, "nav.missing")
	require.NoError(t, err)
	assert.False(t, found)

	png, err := s.CaptureViewport(ctx)
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
