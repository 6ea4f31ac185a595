package types

import (
	"fmt"
	"strings"
	"time"
)

// Tier is the coarse reliability classification of a test across runs.
type Tier string

const (
	TierStable  Tier = "STABLE"
	TierFlaky   Tier = "FLAKY"
	TierFailing Tier = "FAILING"
)

// FallbackTestName is the synthetic identifier attached to a run when no
// individual test names could be recovered from the runner output. It keeps
// whole-run outcomes visible to the aggregator instead of dropping them.
const FallbackTestName = "all_tests"

// RawRunResult captures one invocation of the external test runner.
type RawRunResult struct {
	RunIndex int           `json:"run_index"`
	Passed   bool          `json:"passed"`
	Duration time.Duration `json:"duration"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	TimedOut bool          `json:"timed_out,omitempty"`
	// InvocationError holds the error text when the runner could not be
	// started at all (missing binary, permission denied). The run still
	// counts as a failed observation.
	InvocationError string `json:"invocation_error,omitempty"`
}

// RunRecord is a single (test, run) observation. Records are immutable once
// created and owned by the aggregation session that created them.
type RunRecord struct {
	TestName  string        `json:"test_name"`
	Succeeded bool          `json:"succeeded"`
	Duration  time.Duration `json:"duration"`
	RunIndex  int           `json:"run_index"`
	Stdout    string        `json:"stdout,omitempty"`
	Stderr    string        `json:"stderr,omitempty"`
}

// ReliabilityVerdict is the derived, read-only summary for one test name.
// Verdicts are recomputed whole from the session; they are never patched in
// place.
type ReliabilityVerdict struct {
	TestName       string        `json:"test_name"`
	Tier           Tier          `json:"tier"`
	SuccessRate    float64       `json:"success_rate"`
	TotalRuns      int           `json:"total_runs"`
	SuccessfulRuns int           `json:"successful_runs"`
	FailedRuns     int           `json:"failed_runs"`
	AvgDuration    time.Duration `json:"avg_duration"`
	// DurationVariance is the population variance of the observed durations,
	// in seconds squared. A single-run series has variance 0.
	DurationVariance float64 `json:"duration_variance"`
	// PerformanceVariable marks unstable timing. It is orthogonal to the
	// tier and may attach to stable, flaky and failing tests alike.
	PerformanceVariable bool `json:"performance_variable,omitempty"`
}

// Label renders the tier plus the performance modifier, e.g. "FLAKY" or
// "STABLE_PERFORMANCE".
func (v ReliabilityVerdict) Label() string {
	if v.PerformanceVariable {
		return string(v.Tier) + "_PERFORMANCE"
	}
	return string(v.Tier)
}

// Category classifies a static pattern finding by the kind of
// non-determinism it introduces.
type Category string

const (
	CategoryTimeDependent      Category = "TIME_DEPENDENT"
	CategoryRandomData         Category = "RANDOM_DATA"
	CategoryExternalDependency Category = "EXTERNAL_DEPENDENCY"
	CategoryFilesystem         Category = "FILESYSTEM"
	CategoryGlobalState        Category = "GLOBAL_STATE"

	// Security-scan categories, reported only under context gating.
	CategoryWeakRandom       Category = "WEAK_RANDOM"
	CategoryHardcodedSecret  Category = "HARDCODED_SECRET"
	CategorySQLInjectionRisk Category = "SQL_INJECTION_RISK"
)

// Severity ranks findings. CRITICAL is reserved for the security scan's
// escalation rules; the general flaky-pattern scan uses LOW through HIGH.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// severityRank orders severities for sorting and comparisons.
var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the numeric order of the severity, higher is more severe.
func (s Severity) Rank() int {
	return severityRank[s]
}

// PatternMatch is a single textual occurrence of a flakiness-prone construct
// found by the static scanner. Matches are immutable.
type PatternMatch struct {
	Category        Category `json:"category"`
	Severity        Severity `json:"severity"`
	SourceFile      string   `json:"source_file"`
	LineNumber      int      `json:"line_number"`
	MatchedText     string   `json:"matched_text"`
	Description     string   `json:"description"`
	RemediationHint string   `json:"remediation_hint"`
}

func (m PatternMatch) String() string {
	return fmt.Sprintf("%s:%d [%s/%s] %s", m.SourceFile, m.LineNumber, m.Category, m.Severity, m.Description)
}

// SplitTestName splits a "module::class::test" identifier into its module
// and remaining path. The module is the first segment; the rest is joined
// back with "::".
func SplitTestName(name string) (module, rest string) {
	parts := strings.SplitN(name, "::", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
