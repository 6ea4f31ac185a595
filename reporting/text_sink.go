package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/flakescan/flakescan/types"
)

// maxFindingsPerFile caps the per-file detail lines in the text report;
// remaining findings are summarized as a count.
const maxFindingsPerFile = 5

// TextFormatter renders the full analysis report as plain text.
type TextFormatter struct{}

// Format produces the report document: summary counts, per-flaky-test
// detail, failing tests, severity-grouped findings and recommendations.
func (f *TextFormatter) Format(r *Report) string {
	var b strings.Builder
	summary := r.Summary()

	fmt.Fprintf(&b, "FLAKY TEST ANALYSIS REPORT\n")
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 50))
	fmt.Fprintf(&b, "Target: %s\n", r.Target)
	fmt.Fprintf(&b, "Run ID: %s\n", r.RunID)
	fmt.Fprintf(&b, "Runs executed: %d\n", r.RunsExecuted)
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "SUMMARY:\n")
	fmt.Fprintf(&b, "- Total tests analyzed: %d\n", summary.TotalTests)
	fmt.Fprintf(&b, "- Flaky tests: %d\n", summary.Flaky)
	fmt.Fprintf(&b, "- Failing tests: %d\n", summary.Failing)
	fmt.Fprintf(&b, "- Stable tests: %d\n", summary.Stable)
	if summary.PerformanceVariable > 0 {
		fmt.Fprintf(&b, "- Performance-variable tests: %d\n", summary.PerformanceVariable)
	}
	b.WriteString("\n")

	f.writeFlakyDetail(&b, r)
	f.writeFailing(&b, r)
	f.writeFindings(&b, r)
	f.writeRecommendations(&b, r)

	return b.String()
}

func (f *TextFormatter) writeFlakyDetail(b *strings.Builder, r *Report) {
	flaky := r.TestsByTier(types.TierFlaky)
	if len(flaky) == 0 {
		return
	}

	fmt.Fprintf(b, "FLAKY TESTS DETECTED:\n%s\n", strings.Repeat("-", 30))
	for _, v := range flaky {
		fmt.Fprintf(b, "* %s\n", v.TestName)
		if module, rest := types.SplitTestName(v.TestName); rest != "" {
			fmt.Fprintf(b, "  Module: %s\n", module)
		}
		fmt.Fprintf(b, "  Success rate: %.1f%%\n", v.SuccessRate*100)
		fmt.Fprintf(b, "  Runs: %d/%d passed\n", v.SuccessfulRuns, v.TotalRuns)
		fmt.Fprintf(b, "  Avg duration: %.2fs\n", v.AvgDuration.Seconds())
		if v.DurationVariance > 0 {
			fmt.Fprintf(b, "  Duration variance: %.2f\n", v.DurationVariance)
		}
		if v.PerformanceVariable {
			fmt.Fprintf(b, "  Timing is unstable across runs\n")
		}
		b.WriteString("\n")
	}
}

func (f *TextFormatter) writeFailing(b *strings.Builder, r *Report) {
	failing := r.TestsByTier(types.TierFailing)
	if len(failing) == 0 {
		return
	}

	fmt.Fprintf(b, "FAILING TESTS:\n%s\n", strings.Repeat("-", 20))
	for _, v := range failing {
		fmt.Fprintf(b, "* %s (0/%d passed)\n", v.TestName, v.TotalRuns)
	}
	b.WriteString("\n")
}

func (f *TextFormatter) writeFindings(b *strings.Builder, r *Report) {
	if len(r.Findings) == 0 && len(r.SkippedFiles) == 0 {
		return
	}

	fmt.Fprintf(b, "FLAKY PATTERNS DETECTED:\n%s\n", strings.Repeat("-", 30))
	for _, row := range r.FindingCategoryCounts() {
		fmt.Fprintf(b, "* %s: %d occurrences\n", row.Category, row.Count)
	}
	b.WriteString("\n")

	for _, group := range r.FindingsBySeverity() {
		fmt.Fprintf(b, "[%s]\n", group.Severity)
		perFile := make(map[string]int)
		for _, m := range group.Matches {
			if perFile[m.SourceFile]++; perFile[m.SourceFile] > maxFindingsPerFile {
				continue
			}
			fmt.Fprintf(b, "  %s:%d: %s\n", filepath.Base(m.SourceFile), m.LineNumber, m.Description)
			fmt.Fprintf(b, "    %s\n", m.MatchedText)
		}
		for file, count := range perFile {
			if count > maxFindingsPerFile {
				fmt.Fprintf(b, "  ... and %d more in %s\n", count-maxFindingsPerFile, filepath.Base(file))
			}
		}
		b.WriteString("\n")
	}

	if len(r.SkippedFiles) > 0 {
		fmt.Fprintf(b, "Skipped %d unreadable file(s)\n\n", len(r.SkippedFiles))
	}
}

func (f *TextFormatter) writeRecommendations(b *strings.Builder, r *Report) {
	fmt.Fprintf(b, "RECOMMENDATIONS:\n%s\n", strings.Repeat("-", 20))

	flaky := r.TestsByTier(types.TierFlaky)
	if len(flaky) > 0 {
		fmt.Fprintf(b, "1. Fix flaky tests by addressing root causes:\n")
		for i, v := range flaky {
			if i == 3 {
				break
			}
			fmt.Fprintf(b, "   - %s\n", v.TestName)
		}
	}

	if counts := r.FindingCategoryCounts(); len(counts) > 0 {
		fmt.Fprintf(b, "2. Common flaky patterns to address:\n")
		hints := make(map[string]struct{})
		for _, fileFindings := range r.Findings {
			for _, m := range fileFindings.Matches {
				if _, ok := hints[m.RemediationHint]; ok {
					continue
				}
				hints[m.RemediationHint] = struct{}{}
				fmt.Fprintf(b, "   - %s\n", m.RemediationHint)
			}
		}
	}

	fmt.Fprintf(b, "3. Best practices:\n")
	fmt.Fprintf(b, "   - Use deterministic test data\n")
	fmt.Fprintf(b, "   - Mock external dependencies\n")
	fmt.Fprintf(b, "   - Clean up test state between runs\n")
	fmt.Fprintf(b, "   - Use proper assertions with timeouts\n")
	fmt.Fprintf(b, "   - Run tests in isolated environments\n")
}

// WriterSink renders the text report to any writer.
type WriterSink struct {
	W         io.Writer
	formatter TextFormatter
}

func (s *WriterSink) Write(r *Report) error {
	_, err := io.WriteString(s.W, s.formatter.Format(r))
	return err
}

// FileSink renders the text report to a file path.
type FileSink struct {
	Path      string
	formatter TextFormatter
}

func (s *FileSink) Write(r *Report) error {
	if err := os.WriteFile(s.Path, []byte(s.formatter.Format(r)), 0644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", s.Path, err)
	}
	return nil
}

// Save feeds the report to every sink and collects their failures; one bad
// sink does not stop the others.
func Save(r *Report, sinks ...Sink) error {
	var result *multierror.Error
	for _, sink := range sinks {
		if err := sink.Write(r); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
