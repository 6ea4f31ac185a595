// Package scanner inspects source text for lexical patterns correlated with
// non-deterministic test behavior.
//
// The scan is pure text matching. It does not understand comments, string
// literals or code structure, and will report patterns occurring inside
// either as false positives. That precision/recall trade-off is deliberate;
// findings are leads for a human, not judgments.
package scanner

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/flakescan/flakescan/metrics"
	"github.com/flakescan/flakescan/types"
)

// maxSnippetLen bounds the matched-line excerpt kept for display.
const maxSnippetLen = 80

// ScanText runs the rule table over one file's text. Matches are returned in
// rule-table order, then by position within the file. Scanning is stateless:
// identical input always yields identical output.
func ScanText(text, sourcePath string, rules []RuleSet) []types.PatternMatch {
	var matches []types.PatternMatch
	for _, rs := range rules {
		if rs.Gate != nil && !rs.Gate(text) {
			continue
		}
		for _, pattern := range rs.Patterns {
			for _, loc := range pattern.FindAllStringIndex(text, -1) {
				matches = append(matches, types.PatternMatch{
					Category:        rs.Category,
					Severity:        rs.Severity,
					SourceFile:      sourcePath,
					LineNumber:      lineNumberAt(text, loc[0]),
					MatchedText:     snippetAt(text, loc[0]),
					Description:     rs.Description,
					RemediationHint: rs.RemediationHint,
				})
			}
		}
	}
	return matches
}

// Scan applies the default flaky-pattern table to one file's text.
func Scan(text, sourcePath string) []types.PatternMatch {
	return ScanText(text, sourcePath, DefaultRules())
}

// ScanFile reads and scans a single file. Unreadable or non-UTF-8 files are
// skipped silently: the result is empty and skipped is true, never an error,
// so one bad file cannot abort a scan of the rest of the tree.
func ScanFile(path string, rules []RuleSet) (matches []types.PatternMatch, skipped bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{"file": path, "error": err}).Debug("skipping unreadable file")
		return nil, true
	}
	if !utf8.Valid(data) {
		logrus.WithField("file", path).Debug("skipping non-UTF-8 file")
		return nil, true
	}
	return ScanText(string(data), path, rules), false
}

// FileFindings pairs a scanned file with its ordered matches.
type FileFindings struct {
	Path    string
	Matches []types.PatternMatch
}

// ScanFiles scans each path in order and collects per-file findings. Files
// with no matches are omitted; skipped files are reported by path. Each
// file's scan is independent and pure, so results never interleave across
// files.
func ScanFiles(paths []string, rules []RuleSet) (findings []FileFindings, skippedFiles []string) {
	for _, path := range paths {
		matches, skipped := ScanFile(path, rules)
		if skipped {
			skippedFiles = append(skippedFiles, path)
			continue
		}
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			metrics.RecordPatternFinding(m)
		}
		findings = append(findings, FileFindings{Path: path, Matches: matches})
	}
	return findings, skippedFiles
}

// lineNumberAt computes the 1-based line number of a byte offset from the
// count of preceding newlines.
func lineNumberAt(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// snippetAt extracts the full line containing the offset, truncated for
// display.
func snippetAt(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += offset
	}

	line := strings.TrimSpace(text[start:end])
	if len(line) > maxSnippetLen {
		return line[:maxSnippetLen-3] + "..."
	}
	return line
}
