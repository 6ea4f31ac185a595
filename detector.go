// Package flakescan ties the runner, aggregation, scanning and reporting
// stages into one analysis session.
package flakescan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/flakescan/flakescan/analyze"
	"github.com/flakescan/flakescan/discovery"
	"github.com/flakescan/flakescan/logging"
	"github.com/flakescan/flakescan/metrics"
	"github.com/flakescan/flakescan/reporting"
	"github.com/flakescan/flakescan/runner"
	"github.com/flakescan/flakescan/scanner"
)

// Detector orchestrates one end-to-end analysis: execute the target N times,
// aggregate per-test verdicts, optionally scan the test sources, and return a
// structured report.
type Detector struct {
	cfg       *Config
	runID     string
	artifacts *logging.FileLogger
}

// NewDetector prepares a session for the given configuration, including the
// artifact directory. Returns a RuntimeError on setup failure.
func NewDetector(cfg *Config) (*Detector, error) {
	if cfg == nil {
		return nil, NewRuntimeError(fmt.Errorf("config is required"))
	}

	runID := uuid.New().String()
	artifacts, err := logging.NewFileLogger(cfg.OutDir, runID)
	if err != nil {
		return nil, NewRuntimeError(fmt.Errorf("failed to set up artifact storage: %w", err))
	}

	cfg.Log.WithField("run_id", runID).WithField("log_dir", artifacts.LogDir()).Info("session initialized")

	return &Detector{
		cfg:       cfg,
		runID:     runID,
		artifacts: artifacts,
	}, nil
}

// RunID returns the session identifier.
func (d *Detector) RunID() string {
	return d.runID
}

// ArtifactDir returns the directory holding this session's raw run output.
func (d *Detector) ArtifactDir() string {
	return d.artifacts.LogDir()
}

// WriteReportArtifact archives a rendered report alongside the raw run
// output and returns its path.
func (d *Detector) WriteReportArtifact(filename string, data []byte) (string, error) {
	return d.artifacts.WriteReport(filename, data)
}

// Run performs the full analysis and returns the report. Test outcomes never
// produce an error here; only operational failures do.
func (d *Detector) Run(ctx context.Context) (*reporting.Report, error) {
	ctx, span := otel.Tracer("flakescan/detector").Start(ctx, "analysis session")
	defer span.End()

	executor, err := runner.NewProcessExecutor(runner.ExecutorConfig{
		Command: d.cfg.RunnerCommand,
		Target:  d.cfg.Target,
		Timeout: d.cfg.RunTimeout,
		Log:     d.cfg.Log,
	})
	if err != nil {
		return nil, NewRuntimeError(err)
	}

	r, err := runner.New(runner.Config{
		Executor:  executor,
		RunCount:  d.cfg.Runs,
		RunID:     d.runID,
		Artifacts: d.artifacts,
		Log:       d.cfg.Log,
	})
	if err != nil {
		return nil, NewRuntimeError(err)
	}

	raws := r.Execute(ctx)

	verdicts := analyze.Aggregate(raws, analyze.Config{
		VarianceThresholdRatio: d.cfg.VarianceThresholdRatio,
		ExtractNames:           runner.ExtractTestNames,
	})
	metrics.RecordVerdicts(d.runID, verdicts)

	report := &reporting.Report{
		RunID:        d.runID,
		Target:       d.cfg.Target,
		RunsExecuted: len(raws),
		GeneratedAt:  time.Now().UTC(),
		Verdicts:     verdicts,
	}

	if d.cfg.PatternAnalysis {
		if err := d.scanSources(report); err != nil {
			// The scan is supplementary; a scan failure degrades the report
			// rather than discarding the run results.
			d.cfg.Log.WithError(err).Warn("pattern analysis failed")
			metrics.RecordErrorDetails("pattern_scan", err)
		}
	}

	return report, nil
}

// scanSources locates test files under the target and applies the pattern
// rule tables, recording findings on the report.
func (d *Detector) scanSources(report *reporting.Report) error {
	files, err := discovery.FindTestFiles(d.cfg.Target, d.cfg.TestFilePatterns, d.cfg.ExcludeDirs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		d.cfg.Log.WithField("target", d.cfg.Target).Info("no test files found to scan")
		return nil
	}

	rules := scanner.DefaultRules()
	if d.cfg.SecurityAnalysis {
		rules = append(rules, scanner.SecurityRules()...)
	}
	rules = append(rules, d.cfg.ExtraRules...)

	findings, skipped := scanner.ScanFiles(files, rules)
	report.Findings = findings
	report.SkippedFiles = skipped

	d.cfg.Log.WithFields(logrus.Fields{
		"files":   len(files),
		"flagged": len(findings),
		"skipped": len(skipped),
	}).Info("pattern scan complete")
	return nil
}
