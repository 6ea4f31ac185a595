package runner

import (
	"regexp"
	"sort"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/flakescan/flakescan/types"
)

// moduleFilePattern rewrites pytest-style "module.py::" prefixes to the
// normalized "module::" identifier form before extraction.
var moduleFilePattern = regexp.MustCompile(`(\w+)\.py::`)

// testNamePatterns recover test identifiers from normalized runner output.
// Patterns are tried in priority order; a later pattern never matches inside
// a span already claimed by an earlier one, so "module::class::test" is not
// also reported as "module::class".
var testNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\w+)::(\w+)::(\w+)\b`),
	regexp.MustCompile(`\b(\w+)::(\w+)\b`),
}

// ExtractTestNames parses raw runner output into the set of test identifiers
// observed in that run, normalized to "module::test" or
// "module::class::test" form. The extraction is best-effort: malformed or
// truncated output never causes an error. When no identifiers are
// recoverable the single synthetic identifier types.FallbackTestName is
// returned so the aggregator always has a name to attach the run outcome to.
func ExtractTestNames(stdout, stderr string) []string {
	text := stripansi.Strip(stdout) + "\n" + stripansi.Strip(stderr)
	text = moduleFilePattern.ReplaceAllString(text, "$1::")

	seen := make(map[string]struct{})
	var claimed [][2]int

	for _, pattern := range testNamePatterns {
		for _, idx := range pattern.FindAllStringSubmatchIndex(text, -1) {
			if overlaps(claimed, idx[0], idx[1]) {
				continue
			}
			claimed = append(claimed, [2]int{idx[0], idx[1]})

			segments := make([]string, 0, (len(idx)-2)/2)
			for g := 2; g < len(idx); g += 2 {
				segments = append(segments, text[idx[g]:idx[g+1]])
			}
			seen[strings.Join(segments, "::")] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return []string{types.FallbackTestName}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func overlaps(claimed [][2]int, start, end int) bool {
	for _, span := range claimed {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}
