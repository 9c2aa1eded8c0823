// internal/reporting/json.go
package reporting

import (
	"fmt"
	"io"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

// jsonDocument is the top level of report.json.
type jsonDocument struct {
	Meta
	Summary Summary              `json:"summary"`
	Steps   []schemas.StepResult `json:"steps"`
}

// JSONReporter writes the run as a single indented JSON document.
type JSONReporter struct {
	base
}

// NewJSONReporter creates a reporter that writes JSON to writer.
func NewJSONReporter(writer io.WriteCloser, meta Meta) *JSONReporter {
	return &JSONReporter{base: base{writer: writer, meta: meta}}
}

// Close encodes the document and closes the writer.
func (r *JSONReporter) Close() error {
	return r.finish(func(w io.Writer) error {
		steps := r.results
		if steps == nil {
			// Initialize empty slices (not nil) for proper JSON marshalling
			steps = []schemas.StepResult{}
		}
		doc := jsonDocument{Meta: r.meta, Summary: Summarize(steps), Steps: steps}

		data, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json report: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write json report: %w", err)
		}
		return nil
	})
}
