package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcessExecutor_Validation(t *testing.T) {
	_, err := NewProcessExecutor(ExecutorConfig{Target: "", Timeout: time.Second})
	require.Error(t, err)

	_, err = NewProcessExecutor(ExecutorConfig{Target: "tests/", Timeout: 0})
	require.Error(t, err)

	ex, err := NewProcessExecutor(ExecutorConfig{Target: "tests/", Timeout: time.Second})
	require.NoError(t, err)
	assert.NotNil(t, ex)
}

func TestProcessExecutor_PassingRun(t *testing.T) {
	ex, err := NewProcessExecutor(ExecutorConfig{
		Command: []string{"true"},
		Target:  "tests/",
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)

	result := ex.ExecuteOnce(context.Background(), 1)
	assert.True(t, result.Passed)
	assert.False(t, result.TimedOut)
	assert.Empty(t, result.InvocationError)
	assert.Equal(t, 1, result.RunIndex)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestProcessExecutor_FailingRun(t *testing.T) {
	ex, err := NewProcessExecutor(ExecutorConfig{
		Command: []string{"false"},
		Target:  "tests/",
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)

	result := ex.ExecuteOnce(context.Background(), 2)
	assert.False(t, result.Passed)
	assert.False(t, result.TimedOut)
	// A non-zero exit is a test failure, not an invocation problem.
	assert.Empty(t, result.InvocationError)
}

func TestProcessExecutor_Timeout(t *testing.T) {
	// The trailing '#' comments out the target and verbosity arguments that
	// the executor appends.
	ex, err := NewProcessExecutor(ExecutorConfig{
		Command: []string{"sh", "-c", "sleep 5 #"},
		Target:  "tests/",
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	result := ex.ExecuteOnce(context.Background(), 1)
	assert.False(t, result.Passed)
	assert.True(t, result.TimedOut)
	// The duration is pinned to the timeout ceiling for comparability.
	assert.Equal(t, 100*time.Millisecond, result.Duration)
	assert.Contains(t, result.Stderr, TimeoutSentinel)
}

func TestProcessExecutor_MissingBinary(t *testing.T) {
	ex, err := NewProcessExecutor(ExecutorConfig{
		Command: []string{"/nonexistent/test-runner-binary"},
		Target:  "tests/",
		Timeout: time.Second,
	})
	require.NoError(t, err)

	result := ex.ExecuteOnce(context.Background(), 1)
	assert.False(t, result.Passed)
	assert.False(t, result.TimedOut)
	assert.NotEmpty(t, result.InvocationError)
	assert.NotEmpty(t, result.Stderr)
}

func TestProcessExecutor_CapturesOutput(t *testing.T) {
	ex, err := NewProcessExecutor(ExecutorConfig{
		Command: []string{"sh", "-c", "echo 'test_demo.py::test_one PASSED'; echo 'warning' >&2 #"},
		Target:  "tests/",
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)

	result := ex.ExecuteOnce(context.Background(), 1)
	assert.True(t, result.Passed)
	assert.Contains(t, result.Stdout, "test_demo.py::test_one PASSED")
	assert.Contains(t, result.Stderr, "warning")
}
