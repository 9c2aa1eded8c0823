// internal/reporting/html.go
package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
	"github.com/xkilldash9x/stepshot/internal/observability"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Meta.Title }}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
.step { border: 1px solid #ddd; border-radius: 4px; padding: 1em; margin-bottom: 1.5em; }
.status { font-weight: bold; text-transform: uppercase; }
.pass { color: #1a7f37; } .fail, .timeout { color: #cf222e; } .skipped { color: #6e7781; }
.warning { color: #9a6700; }
.context img { max-width: 100%; border: 1px solid #ccc; }
</style>
</head>
<body>
<h1>{{ .Meta.Title }}</h1>
<p>Target: <a href="{{ .Meta.TargetURL }}">{{ .Meta.TargetURL }}</a><br>
Run: <code>{{ .Meta.RunID }}</code><br>
Started: {{ .Started }} &middot; Duration: {{ .Elapsed }}</p>
<p class="summary">{{ .Summary.Passed }} passed, {{ .Summary.Failed }} failed, {{ .Summary.TimedOut }} timed out, {{ .Summary.Skipped }} skipped of {{ .Summary.Total }} steps.</p>
{{ range .Steps }}
<section class="step" id="step-{{ .Index }}">
<h2>{{ .Index }}. {{ .Name }} <span class="status {{ .Status }}">{{ .Status }}</span></h2>
<p>Duration: {{ .Duration }}</p>
{{ with .Error }}<p class="error">{{ . }}</p>{{ end }}
{{ range .Warnings }}<p class="warning">Warning: {{ . }}</p>{{ end }}
<div class="context">{{ .Context }}</div>
</section>
{{ end }}
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Parse(htmlTemplate))

type htmlStep struct {
	Index    int
	Name     string
	Status   schemas.StepStatus
	Duration time.Duration
	Error    string
	Warnings []string
	Context  template.HTML
}

type htmlPage struct {
	Meta    Meta
	Started string
	Elapsed time.Duration
	Summary Summary
	Steps   []htmlStep
}

// HTMLReporter renders a self-contained page. Each step's markdown context is
// converted with goldmark, so screenshots appear inline.
type HTMLReporter struct {
	base
	md     goldmark.Markdown
	logger *zap.Logger
}

// NewHTMLReporter creates a reporter that writes an HTML page to writer.
func NewHTMLReporter(writer io.WriteCloser, meta Meta) *HTMLReporter {
	return &HTMLReporter{
		base:   base{writer: writer, meta: meta},
		md:     goldmark.New(),
		logger: observability.GetLogger().Named("html_reporter"),
	}
}

// Close renders the page and closes the writer.
func (r *HTMLReporter) Close() error {
	return r.finish(func(w io.Writer) error {
		page := htmlPage{
			Meta:    r.meta,
			Started: r.meta.StartedAt.Format(time.RFC1123),
			Elapsed: r.meta.FinishedAt.Sub(r.meta.StartedAt).Round(time.Millisecond),
			Summary: Summarize(r.results),
			Steps:   make([]htmlStep, 0, len(r.results)),
		}
		for _, res := range r.results {
			page.Steps = append(page.Steps, htmlStep{
				Index:    res.Index,
				Name:     res.Name,
				Status:   res.Status,
				Duration: res.Duration.Round(time.Millisecond),
				Error:    res.Error,
				Warnings: res.Warnings,
				Context:  r.renderMarkdown(res.Context),
			})
		}
		if err := reportTemplate.Execute(w, page); err != nil {
			return fmt.Errorf("failed to render html report: %w", err)
		}
		return nil
	})
}

// renderMarkdown converts src to HTML. goldmark escapes raw HTML in the
// source, which is what makes the template.HTML conversion safe.
func (r *HTMLReporter) renderMarkdown(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		r.logger.Warn("Failed to render step context; embedding it as text.", zap.Error(err))
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
