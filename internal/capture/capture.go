// internal/capture/capture.go
package capture

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

const (
	// Extension is appended to every sanitized screenshot name.
	Extension = ".png"
	// fallbackName is used when a step name is empty.
	fallbackName = "screenshot"
)

// SanitizeBase maps every character outside [A-Za-z0-9] to a single
// underscore and lower-cases the result. Runs of separators are not
// collapsed, so "Open homepage" and "Open  homepage" stay distinct.
func SanitizeBase(name string) string {
	if name == "" {
		return fallbackName
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Sanitize returns the screenshot file name for a step, e.g.
// "Hover over footer" becomes "hover_over_footer.png".
func Sanitize(name string) string {
	return SanitizeBase(name) + Extension
}

// Capturer takes viewport screenshots and persists them under a directory
// inside the report directory.
type Capturer struct {
	fs     afero.Fs
	dir    string
	relDir string
	logger *zap.Logger
}

// NewCapturer creates a capturer that writes to reportDir/screenshotDir on fs.
func NewCapturer(fs afero.Fs, reportDir, screenshotDir string, logger *zap.Logger) *Capturer {
	return &Capturer{
		fs:     fs,
		dir:    filepath.Join(reportDir, screenshotDir),
		relDir: filepath.ToSlash(filepath.Clean(screenshotDir)),
		logger: logger.Named("capture"),
	}
}

// Dir is the directory screenshots are written to.
func (c *Capturer) Dir() string {
	return c.dir
}

// Capture grabs the current viewport of s and writes it as <sanitized>.png,
// overwriting any previous file of the same name.
func (c *Capturer) Capture(ctx context.Context, s schemas.Session, stepName string) (*schemas.Artifact, error) {
	if s == nil {
		return nil, &schemas.CaptureError{Step: stepName, Op: "capture", Err: errors.New("no browser session")}
	}

	buf, err := s.CaptureViewport(ctx)
	if err != nil {
		return nil, &schemas.CaptureError{Step: stepName, Op: "capture", Err: err}
	}

	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return nil, &schemas.CaptureError{Step: stepName, Op: "mkdir", Err: err}
	}

	name := Sanitize(stepName)
	target := filepath.Join(c.dir, name)
	if err := afero.WriteFile(c.fs, target, buf, 0o644); err != nil {
		return nil, &schemas.CaptureError{Step: stepName, Op: "write", Err: err}
	}

	c.logger.Debug("Screenshot saved.", zap.String("step", stepName), zap.String("path", target), zap.Int("bytes", len(buf)))

	return &schemas.Artifact{
		Name:    name,
		Path:    target,
		RelPath: path.Join(c.relDir, name),
		Size:    len(buf),
	}, nil
}
