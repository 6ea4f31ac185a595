// Package logging persists per-run artifacts so a session can be inspected
// after the process exits. Nothing here is read back by the analysis itself;
// the in-memory results remain the source of truth.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/flakescan/flakescan/types"
)

const (
	// RunDirectoryPrefix is the standardized prefix for session directories.
	RunDirectoryPrefix = "flakescan-"

	stdoutFilename = "stdout.txt"
	stderrFilename = "stderr.txt"
)

// FileLogger writes raw run output and report files under
// <baseDir>/flakescan-<runID>/.
type FileLogger struct {
	baseDir string
	logDir  string
	runsDir string
	runID   string
	mu      sync.Mutex
}

// NewFileLogger creates the session directory tree for the given run ID.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	logDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	runsDir := filepath.Join(logDir, "runs")
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory %s: %w", runsDir, err)
	}

	return &FileLogger{
		baseDir: baseDir,
		logDir:  logDir,
		runsDir: runsDir,
		runID:   runID,
	}, nil
}

// GetRunID returns the session run ID.
func (l *FileLogger) GetRunID() string {
	return l.runID
}

// LogDir returns the session directory.
func (l *FileLogger) LogDir() string {
	return l.logDir
}

// LogRun writes the stdout and stderr of a single run to
// runs/NNN/{stdout,stderr}.txt.
func (l *FileLogger) LogRun(result types.RawRunResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	runDir := filepath.Join(l.runsDir, fmt.Sprintf("%03d", result.RunIndex))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory %s: %w", runDir, err)
	}

	if err := os.WriteFile(filepath.Join(runDir, stdoutFilename), []byte(result.Stdout), 0644); err != nil {
		return fmt.Errorf("failed to write stdout: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, stderrFilename), []byte(result.Stderr), 0644); err != nil {
		return fmt.Errorf("failed to write stderr: %w", err)
	}
	return nil
}

// WriteReport stores a composed report file in the session directory and
// returns its path.
func (l *FileLogger) WriteReport(filename string, data []byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.logDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}
