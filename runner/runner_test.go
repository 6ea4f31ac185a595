package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakescan/flakescan/types"
)

// scriptedExecutor replays a fixed pass/fail sequence, one entry per run.
type scriptedExecutor struct {
	outcomes []bool
	calls    []int
}

func (e *scriptedExecutor) ExecuteOnce(ctx context.Context, runIndex int) types.RawRunResult {
	e.calls = append(e.calls, runIndex)
	passed := true
	if runIndex-1 < len(e.outcomes) {
		passed = e.outcomes[runIndex-1]
	}
	return types.RawRunResult{
		RunIndex: runIndex,
		Passed:   passed,
		Duration: 10 * time.Millisecond,
	}
}

type recordingStore struct {
	logged []types.RawRunResult
	err    error
}

func (s *recordingStore) LogRun(result types.RawRunResult) error {
	s.logged = append(s.logged, result)
	return s.err
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Executor: nil, RunCount: 3})
	require.Error(t, err)

	_, err = New(Config{Executor: &scriptedExecutor{}, RunCount: 0})
	require.Error(t, err)
}

func TestNew_GeneratesRunID(t *testing.T) {
	r, err := New(Config{Executor: &scriptedExecutor{}, RunCount: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, r.RunID())

	r2, err := New(Config{Executor: &scriptedExecutor{}, RunCount: 1, RunID: "fixed-id"})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", r2.RunID())
}

func TestExecute_SequentialInIndexOrder(t *testing.T) {
	ex := &scriptedExecutor{outcomes: []bool{true, false, true, true, false}}
	r, err := New(Config{Executor: ex, RunCount: 5})
	require.NoError(t, err)

	results := r.Execute(context.Background())
	require.Len(t, results, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ex.calls)
	for i, result := range results {
		assert.Equal(t, i+1, result.RunIndex)
		assert.Equal(t, ex.outcomes[i], result.Passed)
	}
}

func TestExecute_PersistsArtifacts(t *testing.T) {
	store := &recordingStore{}
	r, err := New(Config{
		Executor:  &scriptedExecutor{outcomes: []bool{true, true, true}},
		RunCount:  3,
		Artifacts: store,
	})
	require.NoError(t, err)

	results := r.Execute(context.Background())
	assert.Len(t, results, 3)
	assert.Len(t, store.logged, 3)
}

func TestExecute_ArtifactFailureDoesNotAbort(t *testing.T) {
	store := &recordingStore{err: fmt.Errorf("disk full")}
	r, err := New(Config{
		Executor:  &scriptedExecutor{outcomes: []bool{true, true}},
		RunCount:  2,
		Artifacts: store,
	})
	require.NoError(t, err)

	results := r.Execute(context.Background())
	assert.Len(t, results, 2, "artifact failures must not lose run results")
}

func TestExecute_CancellationStopsBetweenRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := New(Config{Executor: &scriptedExecutor{}, RunCount: 5})
	require.NoError(t, err)

	results := r.Execute(ctx)
	assert.Empty(t, results)
}
