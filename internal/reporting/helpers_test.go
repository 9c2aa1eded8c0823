// internal/reporting/helpers_test.go
package reporting_test

import (
	"bytes"
	"errors"
	"time"

	"github.com/xkilldash9x/stepshot/api/schemas"
	"github.com/xkilldash9x/stepshot/internal/reporting"
)

// MockWriteCloser allows capturing output and simulating I/O errors.
type MockWriteCloser struct {
	Buffer    *bytes.Buffer
	FailWrite bool
	FailClose bool
	Closed    int
}

func newMockWriter() *MockWriteCloser {
	return &MockWriteCloser{Buffer: new(bytes.Buffer)}
}

// Write writes to the internal buffer, simulating a write error if configured.
func (m *MockWriteCloser) Write(p []byte) (n int, err error) {
	if m.FailWrite {
		return 0, errors.New("simulated write error")
	}
	return m.Buffer.Write(p)
}

// Close simulates a closing error if configured.
func (m *MockWriteCloser) Close() error {
	m.Closed++
	if m.FailClose {
		return errors.New("simulated close error")
	}
	return nil
}

var testStart = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func testMeta() reporting.Meta {
	return reporting.Meta{
		RunID:      "run-123",
		Title:      "Multi-Step Smoke Test with Screenshots",
		TargetURL:  "https://example.com",
		StartedAt:  testStart,
		FinishedAt: testStart.Add(4500 * time.Millisecond),
	}
}

// sampleResults covers every status a run can produce.
func sampleResults() []schemas.StepResult {
	pass := schemas.StepResult{Index: 1, Name: "Open homepage", Status: schemas.StatusPass, StartedAt: testStart, Duration: 1200 * time.Millisecond}
	reporting.Attach(&pass, &schemas.Artifact{Name: "open_homepage.png", RelPath: "screenshots/open_homepage.png"})

	fail := schemas.StepResult{Index: 2, Name: "Scroll down", StartedAt: testStart, Duration: 300 * time.Millisecond}
	fail.Fail(schemas.StatusFail, errors.New("javascript error"))
	reporting.Attach(&fail, &schemas.Artifact{Name: "scroll_down.png", RelPath: "screenshots/scroll_down.png"})

	timeout := schemas.StepResult{Index: 3, Name: "Scroll to top", StartedAt: testStart, Duration: 30 * time.Second}
	timeout.Fail(schemas.StatusTimeout, &schemas.StepTimeoutError{Step: "Scroll to top", Timeout: 30 * time.Second})
	timeout.AddWarning("screenshot capture failed")

	warned := schemas.StepResult{Index: 4, Name: "Hover over footer", Status: schemas.StatusPass, StartedAt: testStart}
	warned.AddWarning("footer not found")

	skipped := schemas.StepResult{Index: 5, Name: "Final screenshot", Status: schemas.StatusSkipped}

	return []schemas.StepResult{pass, fail, timeout, warned, skipped}
}
