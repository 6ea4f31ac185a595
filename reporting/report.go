// Package reporting renders aggregated verdicts and scan findings into
// human-readable output. The core analysis returns structured data; all
// presentation decisions live here.
package reporting

import (
	"sort"
	"time"

	"github.com/flakescan/flakescan/scanner"
	"github.com/flakescan/flakescan/types"
)

// Report is the structured result of one analysis session, consumed by the
// output sinks.
type Report struct {
	RunID        string
	Target       string
	RunsExecuted int
	GeneratedAt  time.Time

	Verdicts map[string]types.ReliabilityVerdict

	// Findings holds the static scan results per file, in scan order. Empty
	// when pattern analysis was not requested.
	Findings     []scanner.FileFindings
	SkippedFiles []string
}

// Summary holds the top-level counts for the report header.
type Summary struct {
	TotalTests          int
	Flaky               int
	Failing             int
	Stable              int
	PerformanceVariable int
	TotalFindings       int
	FilesWithFindings   int
}

// Summary computes the headline counts.
func (r *Report) Summary() Summary {
	s := Summary{TotalTests: len(r.Verdicts)}
	for _, v := range r.Verdicts {
		switch v.Tier {
		case types.TierFlaky:
			s.Flaky++
		case types.TierFailing:
			s.Failing++
		case types.TierStable:
			s.Stable++
		}
		if v.PerformanceVariable {
			s.PerformanceVariable++
		}
	}
	for _, f := range r.Findings {
		s.TotalFindings += len(f.Matches)
	}
	s.FilesWithFindings = len(r.Findings)
	return s
}

// HasUnreliableTests reports whether any test was flaky or failing. This
// drives the process exit code.
func (r *Report) HasUnreliableTests() bool {
	for _, v := range r.Verdicts {
		if v.Tier != types.TierStable {
			return true
		}
	}
	return false
}

// SortedVerdicts returns all verdicts ordered by test name for deterministic
// output.
func (r *Report) SortedVerdicts() []types.ReliabilityVerdict {
	verdicts := make([]types.ReliabilityVerdict, 0, len(r.Verdicts))
	for _, v := range r.Verdicts {
		verdicts = append(verdicts, v)
	}
	sort.Slice(verdicts, func(i, j int) bool {
		return verdicts[i].TestName < verdicts[j].TestName
	})
	return verdicts
}

// TestsByTier returns the verdicts of one tier, worst success rate first,
// ties broken by name.
func (r *Report) TestsByTier(tier types.Tier) []types.ReliabilityVerdict {
	var verdicts []types.ReliabilityVerdict
	for _, v := range r.Verdicts {
		if v.Tier == tier {
			verdicts = append(verdicts, v)
		}
	}
	sort.Slice(verdicts, func(i, j int) bool {
		if verdicts[i].SuccessRate != verdicts[j].SuccessRate {
			return verdicts[i].SuccessRate < verdicts[j].SuccessRate
		}
		return verdicts[i].TestName < verdicts[j].TestName
	})
	return verdicts
}

// CategoryCount is one row of the per-category finding totals.
type CategoryCount struct {
	Category types.Category
	Count    int
}

// FindingCategoryCounts totals findings per category, most frequent first.
func (r *Report) FindingCategoryCounts() []CategoryCount {
	counts := make(map[types.Category]int)
	for _, f := range r.Findings {
		for _, m := range f.Matches {
			counts[m.Category]++
		}
	}

	rows := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		rows = append(rows, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// FindingsBySeverity groups all findings by severity, most severe first.
// Within a severity, file scan order is preserved.
func (r *Report) FindingsBySeverity() []SeverityGroup {
	grouped := make(map[types.Severity][]types.PatternMatch)
	for _, f := range r.Findings {
		for _, m := range f.Matches {
			grouped[m.Severity] = append(grouped[m.Severity], m)
		}
	}

	order := []types.Severity{types.SeverityCritical, types.SeverityHigh, types.SeverityMedium, types.SeverityLow}
	var groups []SeverityGroup
	for _, sev := range order {
		if matches := grouped[sev]; len(matches) > 0 {
			groups = append(groups, SeverityGroup{Severity: sev, Matches: matches})
		}
	}
	return groups
}

// SeverityGroup holds the findings of one severity level.
type SeverityGroup struct {
	Severity types.Severity
	Matches  []types.PatternMatch
}

// Sink consumes a completed report.
type Sink interface {
	Write(r *Report) error
}
