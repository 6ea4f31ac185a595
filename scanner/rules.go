package scanner

import (
	"regexp"

	"github.com/flakescan/flakescan/types"
)

// ContextGate decides whether a rule set may report findings for a file. A
// nil gate always reports. Gates implement the security-scan asymmetry: the
// general flaky-pattern rules always report, the security rules report only
// when the file shows a relevant context.
type ContextGate func(fileText string) bool

// RuleSet groups the patterns of one category with their shared severity,
// description and remediation hint.
type RuleSet struct {
	Category        types.Category
	Severity        types.Severity
	Patterns        []*regexp.Regexp
	Description     string
	RemediationHint string
	Gate            ContextGate
}

// DefaultRules is the fixed flaky-pattern table. Rule sets are evaluated in
// slice order; within a file, findings appear in table order then by
// position.
func DefaultRules() []RuleSet {
	return []RuleSet{
		{
			Category: types.CategoryTimeDependent,
			Severity: types.SeverityHigh,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`time\.sleep\(`),
				regexp.MustCompile(`asyncio\.sleep\(`),
				regexp.MustCompile(`threading\.Event\(\)\.wait\(`),
				regexp.MustCompile(`\.join\(timeout=`),
				regexp.MustCompile(`wait_for\(`),
			},
			Description:     "Test depends on timing which can be unreliable",
			RemediationHint: "Use proper timeouts and waits instead of sleep()",
		},
		{
			Category: types.CategoryRandomData,
			Severity: types.SeverityHigh,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`random\.`),
				regexp.MustCompile(`numpy\.random\.`),
				regexp.MustCompile(`uuid\.uuid4\(\)`),
				regexp.MustCompile(`\.shuffle\(`),
				regexp.MustCompile(`\.choice\(`),
			},
			Description:     "Test uses random data without fixed seed",
			RemediationHint: "Use fixed seeds or mock data for reproducible tests",
		},
		{
			Category: types.CategoryExternalDependency,
			Severity: types.SeverityHigh,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`requests\.`),
				regexp.MustCompile(`urllib\.`),
				regexp.MustCompile(`http\.`),
				regexp.MustCompile(`socket\.`),
				regexp.MustCompile(`subprocess\.`),
				regexp.MustCompile(`os\.system\(`),
				regexp.MustCompile(`os\.popen\(`),
			},
			Description:     "Test depends on external resources",
			RemediationHint: "Mock external dependencies and APIs",
		},
		{
			Category: types.CategoryFilesystem,
			Severity: types.SeverityMedium,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`open\(`),
				regexp.MustCompile(`\.write\(`),
				regexp.MustCompile(`\.read\(`),
				regexp.MustCompile(`os\.remove\(`),
				regexp.MustCompile(`os\.mkdir\(`),
				regexp.MustCompile(`shutil\.`),
			},
			Description:     "Test performs file system operations",
			RemediationHint: "Use temporary directories and clean up properly",
		},
		{
			Category: types.CategoryGlobalState,
			Severity: types.SeverityMedium,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`global\s+\w+`),
				regexp.MustCompile(`os\.environ\[`),
				regexp.MustCompile(`sys\.path\.`),
				regexp.MustCompile(`__import__\(`),
			},
			Description:     "Test modifies global state",
			RemediationHint: "Avoid modifying global state in tests",
		},
	}
}

// CompileRule builds a RuleSet from user-supplied configuration. Invalid
// expressions are rejected so a bad config entry cannot take down the
// default table.
func CompileRule(category types.Category, severity types.Severity, patterns []string, description, hint string) (RuleSet, error) {
	rs := RuleSet{
		Category:        category,
		Severity:        severity,
		Description:     description,
		RemediationHint: hint,
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return RuleSet{}, err
		}
		rs.Patterns = append(rs.Patterns, re)
	}
	return rs, nil
}
