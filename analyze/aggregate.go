// Package analyze merges per-run outcomes into per-test reliability
// verdicts.
package analyze

import (
	"time"

	"github.com/flakescan/flakescan/types"
)

// DefaultVarianceThresholdRatio is the default ratio of duration variance to
// mean duration above which a test is marked performance-variable. The 50%
// figure is a tunable heuristic, not a statistically derived bound; callers
// calibrate it per environment through Config.
const DefaultVarianceThresholdRatio = 0.5

// NameExtractor recovers the test identifiers observed in one run's output.
type NameExtractor func(stdout, stderr string) []string

// Config controls aggregation.
type Config struct {
	// VarianceThresholdRatio is compared against variance/mean when
	// attaching the PERFORMANCE_VARIABLE modifier. Zero or negative values
	// fall back to DefaultVarianceThresholdRatio.
	VarianceThresholdRatio float64
	// ExtractNames parses run output into test identifiers. When nil, every
	// run is attributed to the fallback identifier.
	ExtractNames NameExtractor
}

func (c Config) ratio() float64 {
	if c.VarianceThresholdRatio <= 0 {
		return DefaultVarianceThresholdRatio
	}
	return c.VarianceThresholdRatio
}

// Session is the in-memory accumulation of RunRecords for one analysis
// invocation, keyed by test name with records in run order. It is created
// empty, populated as runs are observed, and discarded with the report.
type Session struct {
	records map[string][]types.RunRecord
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{records: make(map[string][]types.RunRecord)}
}

// Observe appends one RunRecord per test name for the given run. A test seen
// through the fallback identifier shares the whole-run outcome. Empty name
// slices are attributed to the fallback identifier so the run is never lost.
func (s *Session) Observe(run types.RawRunResult, names []string) {
	if len(names) == 0 {
		names = []string{types.FallbackTestName}
	}
	for _, name := range names {
		s.records[name] = append(s.records[name], types.RunRecord{
			TestName:  name,
			Succeeded: run.Passed,
			Duration:  run.Duration,
			RunIndex:  run.RunIndex,
			Stdout:    run.Stdout,
			Stderr:    run.Stderr,
		})
	}
}

// Records returns the observations for a test name in run order.
func (s *Session) Records(name string) []types.RunRecord {
	return s.records[name]
}

// Aggregate extracts test names from each raw run, accumulates RunRecords
// and computes a verdict per test. An empty input yields an empty mapping:
// "no signal", which callers must distinguish from "all tests stable".
// The mapping is rebuilt whole on every call; verdicts are never patched.
func Aggregate(raws []types.RawRunResult, cfg Config) map[string]types.ReliabilityVerdict {
	session := NewSession()
	for _, raw := range raws {
		var names []string
		if cfg.ExtractNames != nil {
			names = cfg.ExtractNames(raw.Stdout, raw.Stderr)
		}
		session.Observe(raw, names)
	}
	return session.Verdicts(cfg)
}

// Verdicts computes the verdict mapping from the session's current records.
// Tests with zero observations are absent from the result, not reported as
// zero-run verdicts.
func (s *Session) Verdicts(cfg Config) map[string]types.ReliabilityVerdict {
	verdicts := make(map[string]types.ReliabilityVerdict, len(s.records))
	for name, records := range s.records {
		if len(records) == 0 {
			continue
		}
		verdicts[name] = computeVerdict(name, records, cfg.ratio())
	}
	return verdicts
}

func computeVerdict(name string, records []types.RunRecord, ratio float64) types.ReliabilityVerdict {
	var successes int
	durations := make([]float64, len(records))
	for i, rec := range records {
		if rec.Succeeded {
			successes++
		}
		durations[i] = rec.Duration.Seconds()
	}

	total := len(records)
	rate := float64(successes) / float64(total)
	mean := meanOf(durations)
	variance := populationVariance(durations, mean)

	verdict := types.ReliabilityVerdict{
		TestName:         name,
		SuccessRate:      rate,
		TotalRuns:        total,
		SuccessfulRuns:   successes,
		FailedRuns:       total - successes,
		AvgDuration:      time.Duration(mean * float64(time.Second)),
		DurationVariance: variance,
	}

	switch {
	case rate == 1.0:
		verdict.Tier = types.TierStable
	case rate == 0.0:
		verdict.Tier = types.TierFailing
	default:
		verdict.Tier = types.TierFlaky
	}

	// Timing instability is orthogonal to pass/fail stability.
	if variance > mean*ratio {
		verdict.PerformanceVariable = true
	}

	return verdict
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationVariance is defined as 0 for a single-sample series rather than
// undefined, so a lone run never divides by zero.
func populationVariance(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
