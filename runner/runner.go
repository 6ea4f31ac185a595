// Package runner executes the external test runner repeatedly and recovers
// per-test outcomes from its output.
package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/flakescan/flakescan/metrics"
	"github.com/flakescan/flakescan/types"
)

// ArtifactStore persists the raw output of each run for later inspection.
type ArtifactStore interface {
	LogRun(result types.RawRunResult) error
}

// Runner drives a full multi-run session against a single target.
type Runner struct {
	executor  Executor
	runCount  int
	runID     string
	artifacts ArtifactStore
	log       logrus.FieldLogger
	tracer    trace.Tracer
}

// Config holds configuration for creating a Runner.
type Config struct {
	Executor Executor
	RunCount int
	// RunID identifies the session in logs, metrics and artifact paths.
	// A fresh UUID is generated when empty.
	RunID     string
	Artifacts ArtifactStore
	Log       logrus.FieldLogger
}

// New creates a Runner. RunCount must be at least 1.
func New(cfg Config) (*Runner, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if cfg.RunCount < 1 {
		return nil, fmt.Errorf("run count must be at least 1, got %d", cfg.RunCount)
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}

	return &Runner{
		executor:  cfg.Executor,
		runCount:  cfg.RunCount,
		runID:     cfg.RunID,
		artifacts: cfg.Artifacts,
		log:       cfg.Log,
		tracer:    otel.Tracer("flakescan/runner"),
	}, nil
}

// RunID returns the session identifier.
func (r *Runner) RunID() string {
	return r.runID
}

// Execute performs the runs sequentially, in index order, one subprocess at
// a time. Runs are never parallelized: duration measurements feed the
// performance-variance signal and must reflect an uncontended environment.
// Caller cancellation is honored between runs; the result slice then holds
// whatever runs completed.
func (r *Runner) Execute(ctx context.Context) []types.RawRunResult {
	r.log.WithFields(logrus.Fields{"run_id": r.runID, "runs": r.runCount}).Info("starting multi-run session")

	results := make([]types.RawRunResult, 0, r.runCount)
	for i := 1; i <= r.runCount; i++ {
		if ctx.Err() != nil {
			r.log.WithFields(logrus.Fields{"run_id": r.runID, "completed": len(results)}).Warn("session cancelled between runs")
			break
		}

		runCtx, span := r.tracer.Start(ctx, fmt.Sprintf("run %d/%d", i, r.runCount))
		result := r.executor.ExecuteOnce(runCtx, i)
		span.End()

		metrics.RecordRun(r.runID, result.Passed, result.TimedOut, result.Duration)
		r.log.WithFields(logrus.Fields{
			"run_id":   r.runID,
			"run":      i,
			"passed":   result.Passed,
			"duration": result.Duration,
		}).Info("run complete")

		if r.artifacts != nil {
			if err := r.artifacts.LogRun(result); err != nil {
				// Artifact storage is best effort; the in-memory result is
				// the source of truth for aggregation.
				r.log.WithError(err).Warn("failed to persist run artifacts")
				metrics.RecordErrorDetails("artifact_store", err)
			}
		}

		results = append(results, result)
	}

	return results
}
