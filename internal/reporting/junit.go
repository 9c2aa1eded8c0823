// internal/reporting/junit.go
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

// JUnitReporter writes a JUnit XML document with one testcase per step, so CI
// systems can show step outcomes natively. Screenshot references go into
// system-out.
type JUnitReporter struct {
	base
}

// NewJUnitReporter creates a reporter that writes JUnit XML to writer.
func NewJUnitReporter(writer io.WriteCloser, meta Meta) *JUnitReporter {
	return &JUnitReporter{base: base{writer: writer, meta: meta}}
}

// Close builds the document and closes the writer.
func (r *JUnitReporter) Close() error {
	return r.finish(func(w io.Writer) error {
		doc := r.document()
		if _, err := doc.WriteTo(w); err != nil {
			return fmt.Errorf("failed to write junit report: %w", err)
		}
		return nil
	})
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func (r *JUnitReporter) document() *etree.Document {
	summary := Summarize(r.results)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", r.meta.Title)

	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", r.meta.Title)
	suite.CreateAttr("id", r.meta.RunID)
	suite.CreateAttr("tests", strconv.Itoa(summary.Total))
	// Timeouts are reported as errors, ordinary failures as failures.
	suite.CreateAttr("failures", strconv.Itoa(summary.Failed))
	suite.CreateAttr("errors", strconv.Itoa(summary.TimedOut))
	suite.CreateAttr("skipped", strconv.Itoa(summary.Skipped))
	suite.CreateAttr("time", seconds(r.meta.FinishedAt.Sub(r.meta.StartedAt)))
	if !r.meta.StartedAt.IsZero() {
		suite.CreateAttr("timestamp", r.meta.StartedAt.UTC().Format(time.RFC3339))
	}

	props := suite.CreateElement("properties")
	prop := props.CreateElement("property")
	prop.CreateAttr("name", "target_url")
	prop.CreateAttr("value", r.meta.TargetURL)

	for _, res := range r.results {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", res.Name)
		tc.CreateAttr("classname", "stepshot")
		tc.CreateAttr("time", seconds(res.Duration))

		switch res.Status {
		case schemas.StatusFail:
			f := tc.CreateElement("failure")
			f.CreateAttr("message", res.Error)
			f.CreateAttr("type", "StepFailure")
		case schemas.StatusTimeout:
			e := tc.CreateElement("error")
			e.CreateAttr("message", res.Error)
			e.CreateAttr("type", "StepTimeout")
		case schemas.StatusSkipped:
			tc.CreateElement("skipped")
		}

		var out []string
		if res.Context != "" {
			out = append(out, res.Context)
		}
		for _, warn := range res.Warnings {
			out = append(out, "warning: "+warn)
		}
		if len(out) > 0 {
			tc.CreateElement("system-out").SetText(strings.Join(out, "\n"))
		}
	}

	doc.Indent(2)
	return doc
}
