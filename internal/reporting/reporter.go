// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

// Report formats and the file each one writes inside the report directory.
const (
	FormatHTML  = "html"
	FormatJSON  = "json"
	FormatJUnit = "junit"

	htmlFile  = "index.html"
	jsonFile  = "report.json"
	junitFile = "junit.xml"
)

// Meta describes the run a report belongs to.
type Meta struct {
	RunID      string    `json:"run_id"`
	Title      string    `json:"title"`
	TargetURL  string    `json:"target_url"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Reporter defines the interface for writing step results to an output.
type Reporter interface {
	// Write records the results of a run. Results are rendered on Close.
	Write(results []schemas.StepResult) error
	// Close renders the report and closes the underlying file.
	Close() error
	// Path is the file the report is written to.
	Path() string
}

// FileName returns the file a format writes, or "" for an unknown format.
func FileName(format string) string {
	switch strings.ToLower(format) {
	case FormatHTML:
		return htmlFile
	case FormatJSON:
		return jsonFile
	case FormatJUnit:
		return junitFile
	default:
		return ""
	}
}

// New creates a reporter for format writing into dir on fs. The directory is
// created if needed; screenshots referenced by the report live beneath it.
func New(fs afero.Fs, format, dir string, meta Meta) (Reporter, error) {
	format = strings.ToLower(format)
	name := FileName(format)
	if name == "" {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	outputPath := filepath.Join(dir, name)
	f, err := fs.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}

	out := &output{WriteCloser: f, path: outputPath}
	switch format {
	case FormatHTML:
		return NewHTMLReporter(out, meta), nil
	case FormatJSON:
		return NewJSONReporter(out, meta), nil
	default:
		return NewJUnitReporter(out, meta), nil
	}
}

// output pairs a writer with the path it was opened at.
type output struct {
	io.WriteCloser
	path string
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// NopCloser adapts w for the reporter constructors; closing it does nothing.
func NopCloser(w io.Writer) io.WriteCloser {
	return &nopWriteCloser{w}
}

func pathOf(w io.WriteCloser) string {
	if o, ok := w.(*output); ok {
		return o.path
	}
	return ""
}

// base holds what every reporter shares: the destination, the run metadata
// and the buffered results.
type base struct {
	writer  io.WriteCloser
	meta    Meta
	results []schemas.StepResult
	closed  bool
}

func (b *base) Write(results []schemas.StepResult) error {
	if b.closed {
		return fmt.Errorf("reporter is closed")
	}
	b.results = append(b.results, results...)
	return nil
}

func (b *base) Path() string {
	return pathOf(b.writer)
}

// finish runs render once, then closes the writer. The first error wins.
func (b *base) finish(render func(io.Writer) error) error {
	if b.closed {
		return nil
	}
	b.closed = true

	renderErr := render(b.writer)
	closeErr := b.writer.Close()
	if renderErr != nil {
		return renderErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close report: %w", closeErr)
	}
	return nil
}
