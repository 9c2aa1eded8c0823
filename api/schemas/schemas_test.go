package schemas_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/stepshot/api/schemas"
)

// -- Test Cases --

// TestStepStatus_Failed pins which statuses count against the exit code.
func TestStepStatus_Failed(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		status   schemas.StepStatus
		expected bool
	}{
		{schemas.StatusPass, false},
		{schemas.StatusSkipped, false},
		{schemas.StatusFail, true},
		{schemas.StatusTimeout, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.Failed())
		})
	}
}

func TestStepResult_FailAndWarn(t *testing.T) {
	t.Parallel()
	res := schemas.StepResult{Name: "Open homepage", Status: schemas.StatusPass}

	res.AddWarning("footer not found")
	res.AddWarning("capture failed")
	assert.Equal(t, []string{"footer not found", "capture failed"}, res.Warnings)
	assert.Equal(t, schemas.StatusPass, res.Status, "warnings must not change the status")

	timeoutErr := &schemas.StepTimeoutError{Step: res.Name, Timeout: 30 * time.Second}
	res.Fail(schemas.StatusTimeout, timeoutErr)
	assert.Equal(t, schemas.StatusTimeout, res.Status)
	assert.Equal(t, timeoutErr.Error(), res.Error)

	var target *schemas.StepTimeoutError
	require.True(t, errors.As(res.Err, &target))
	assert.Equal(t, 30*time.Second, target.Timeout)
}

// TestErrorTaxonomy verifies the typed errors survive wrapping.
func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	t.Run("SessionStartError", func(t *testing.T) {
		err := fmt.Errorf("run aborted: %w", &schemas.SessionStartError{
			Timeout: 20 * time.Second,
			Err:     context.DeadlineExceeded,
		})
		var target *schemas.SessionStartError
		require.True(t, errors.As(err, &target))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "did not start within 20s")
	})

	t.Run("SessionStartErrorWithoutTimeout", func(t *testing.T) {
		err := &schemas.SessionStartError{Err: errors.New("exec: not found")}
		assert.Equal(t, "browser session failed to start: exec: not found", err.Error())
	})

	t.Run("CaptureError", func(t *testing.T) {
		cause := errors.New("read-only file system")
		err := fmt.Errorf("wrapped: %w", &schemas.CaptureError{Step: "Scroll down", Op: "write", Err: cause})
		var target *schemas.CaptureError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "write", target.Op)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("ElementNotFoundError", func(t *testing.T) {
		err := &schemas.ElementNotFoundError{Selector: "footer"}
		assert.Equal(t, `no element matches selector "footer"`, err.Error())
	})
}
