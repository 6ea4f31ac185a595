package scanner

import (
	"regexp"
	"strings"

	"github.com/flakescan/flakescan/types"
)

// Security findings are context-gated: a weak pattern is only reported when
// the same file also shows a security-relevant keyword. This asymmetry with
// the general flaky-pattern scan (which always reports) keeps the
// security-flavored findings low-noise and is intentional.

var securityContextPattern = regexp.MustCompile(`(?i)token|password|key|secret|encrypt|decrypt|auth|login`)

var dbContextPattern = regexp.MustCompile(`(?i)database|db\.|query|execute|select|insert|update|delete`)

// testContextPattern marks files that look like fixtures or examples, where
// hardcoded credential-shaped strings are expected.
var testContextPattern = regexp.MustCompile(`(?i)test_|example|sample|demo|placeholder`)

func hasSecurityContext(text string) bool {
	return securityContextPattern.MatchString(text)
}

func hasDBContext(text string) bool {
	return dbContextPattern.MatchString(text)
}

func notTestContext(text string) bool {
	return !testContextPattern.MatchString(text)
}

// SecurityRules is the context-gated rule table for security-flavored
// findings. Severities here are starting points; AssessElementRisk applies
// the escalation precedence on top.
func SecurityRules() []RuleSet {
	return []RuleSet{
		{
			Category: types.CategoryHardcodedSecret,
			Severity: types.SeverityCritical,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)password\s*=\s*["'][^"']{3,}["']`),
				regexp.MustCompile(`(?i)secret\s*=\s*["'][^"']{3,}["']`),
				regexp.MustCompile(`(?i)api_key\s*=\s*["'][^"']{3,}["']`),
				regexp.MustCompile(`(?i)private_key\s*=\s*["'][^"']{3,}["']`),
				regexp.MustCompile(`(?i)token\s*=\s*["'][^"']{3,}["']`),
			},
			Description:     "Hardcoded secret in source",
			RemediationHint: "Load credentials from the environment or a secret store",
			Gate:            notTestContext,
		},
		{
			Category: types.CategoryWeakRandom,
			Severity: types.SeverityCritical,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`Math\.random\(\)`),
				regexp.MustCompile(`random\.random\(\)`),
				regexp.MustCompile(`new\s+Random\(\)`),
				regexp.MustCompile(`rand\(\)`),
			},
			Description:     "Weak random generation in a security context",
			RemediationHint: "Use a cryptographically secure random source for security material",
			Gate:            hasSecurityContext,
		},
		{
			Category: types.CategorySQLInjectionRisk,
			Severity: types.SeverityHigh,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)SELECT.*\+.*\$`),
				regexp.MustCompile(`(?i)INSERT.*\+.*\$`),
				regexp.MustCompile(`(?i)UPDATE.*\+.*\$`),
				regexp.MustCompile(`(?i)DELETE.*\+.*\$`),
				regexp.MustCompile(`(?i)query\s*=\s*["'][^"']*\+[^"']*["']`),
				regexp.MustCompile(`(?i)execute\s*\(\s*["'][^"']*\+[^"']*["']`),
			},
			Description:     "SQL built by string concatenation",
			RemediationHint: "Use parameterized queries",
			Gate:            hasDBContext,
		},
	}
}

// ScanSecurity applies the context-gated security table to one file's text.
func ScanSecurity(text, sourcePath string) []types.PatternMatch {
	return ScanText(text, sourcePath, SecurityRules())
}

// ElementRisk is the per-element risk assessment for a named code element
// (function, method, class).
type ElementRisk struct {
	ElementName string
	Issues      []string
	Level       types.Severity
}

// riskRule is one row of the severity precedence table. Rows are evaluated
// in order and every matching row contributes its issue; the level is the
// highest severity among matches. Earlier rows therefore dominate ties,
// making the precedence explicit rather than an artifact of sequential
// overwrites.
type riskRule struct {
	issue    string
	severity types.Severity
	applies  func(nameLower, text string, hasTests bool) bool
}

var financialKeywords = []string{"payment", "charge", "billing", "money", "price", "cost", "transaction", "refund", "invoice"}
var authKeywords = []string{"auth", "login", "password", "token", "session", "credential", "signin", "signup"}
var inputKeywords = []string{"input", "upload", "file", "form", "submit", "validate", "sanitize"}
var cryptoKeywords = []string{"encrypt", "decrypt", "hash", "sign", "verify", "crypto", "random", "key"}

// severityPrecedence is the declared escalation order: financial/auth code
// without tests dominates as CRITICAL, then concrete CRITICAL content
// findings, then the HIGH tiers.
var severityPrecedence = []riskRule{
	{
		issue:    "HANDLES MONEY + NO TESTS",
		severity: types.SeverityCritical,
		applies: func(name, _ string, hasTests bool) bool {
			return !hasTests && containsAny(name, financialKeywords)
		},
	},
	{
		issue:    "AUTH FUNCTION + NO TESTS",
		severity: types.SeverityCritical,
		applies: func(name, _ string, hasTests bool) bool {
			return !hasTests && containsAny(name, authKeywords)
		},
	},
	{
		issue:    "HARDCODED SECRETS",
		severity: types.SeverityCritical,
		applies: func(_, text string, _ bool) bool {
			return hasMatch(text, types.CategoryHardcodedSecret)
		},
	},
	{
		issue:    "WEAK RANDOM GENERATION",
		severity: types.SeverityCritical,
		applies: func(_, text string, _ bool) bool {
			return hasMatch(text, types.CategoryWeakRandom)
		},
	},
	{
		issue:    "HANDLES MONEY",
		severity: types.SeverityHigh,
		applies: func(name, _ string, hasTests bool) bool {
			return hasTests && containsAny(name, financialKeywords)
		},
	},
	{
		issue:    "AUTH FUNCTION",
		severity: types.SeverityHigh,
		applies: func(name, _ string, hasTests bool) bool {
			return hasTests && containsAny(name, authKeywords)
		},
	},
	{
		issue:    "INPUT HANDLING + NO TESTS",
		severity: types.SeverityHigh,
		applies: func(name, _ string, hasTests bool) bool {
			return !hasTests && containsAny(name, inputKeywords)
		},
	},
	{
		issue:    "CRYPTO FUNCTION + NO TESTS",
		severity: types.SeverityHigh,
		applies: func(name, _ string, hasTests bool) bool {
			return !hasTests && containsAny(name, cryptoKeywords)
		},
	},
	{
		issue:    "SQL INJECTION RISK",
		severity: types.SeverityHigh,
		applies: func(_, text string, _ bool) bool {
			return hasMatch(text, types.CategorySQLInjectionRisk)
		},
	},
}

// AssessElementRisk evaluates the severity precedence table for one code
// element. The returned level is LOW when no row applies.
func AssessElementRisk(elementName, fileText string, hasTests bool) ElementRisk {
	risk := ElementRisk{
		ElementName: elementName,
		Level:       types.SeverityLow,
	}

	nameLower := strings.ToLower(elementName)
	for _, rule := range severityPrecedence {
		if !rule.applies(nameLower, fileText, hasTests) {
			continue
		}
		risk.Issues = append(risk.Issues, rule.issue)
		if rule.severity.Rank() > risk.Level.Rank() {
			risk.Level = rule.severity
		}
	}
	return risk
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// hasMatch reports whether the security table finds the given category in
// the text, context gates included.
func hasMatch(text string, category types.Category) bool {
	for _, m := range ScanSecurity(text, "") {
		if m.Category == category {
			return true
		}
	}
	return false
}
