package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakescan/flakescan/types"
)

func TestNewFileLogger(t *testing.T) {
	base := t.TempDir()
	fl, err := NewFileLogger(base, "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", fl.GetRunID())
	assert.Equal(t, filepath.Join(base, "flakescan-abc123"), fl.LogDir())
	assert.DirExists(t, filepath.Join(fl.LogDir(), "runs"))
}

func TestNewFileLogger_EmptyRunID(t *testing.T) {
	_, err := NewFileLogger(t.TempDir(), "")
	assert.Error(t, err)
}

func TestFileLogger_LogRun(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir(), "abc123")
	require.NoError(t, err)

	require.NoError(t, fl.LogRun(types.RawRunResult{
		RunIndex: 3,
		Stdout:   "test_a.py::test_ok PASSED",
		Stderr:   "warning: deprecation",
	}))

	runDir := filepath.Join(fl.LogDir(), "runs", "003")
	stdout, err := os.ReadFile(filepath.Join(runDir, "stdout.txt"))
	require.NoError(t, err)
	assert.Equal(t, "test_a.py::test_ok PASSED", string(stdout))

	stderr, err := os.ReadFile(filepath.Join(runDir, "stderr.txt"))
	require.NoError(t, err)
	assert.Equal(t, "warning: deprecation", string(stderr))
}

func TestFileLogger_WriteReport(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir(), "abc123")
	require.NoError(t, err)

	path, err := fl.WriteReport("report.txt", []byte("summary"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fl.LogDir(), "report.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "summary", string(data))
}
