package flakescan

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/flakescan/flakescan/analyze"
	"github.com/flakescan/flakescan/flags"
	"github.com/flakescan/flakescan/scanner"
	"github.com/flakescan/flakescan/types"
)

// Config holds a validated analysis configuration. Precondition failures
// (bad run count, missing target) are caught here, before any run starts;
// everything past this point degrades gracefully instead of aborting.
type Config struct {
	Target           string
	Runs             int
	RunTimeout       time.Duration
	RunnerCommand    []string
	PatternAnalysis  bool
	SecurityAnalysis bool
	OutputPath       string
	OutDir           string

	VarianceThresholdRatio float64

	TestFilePatterns []string
	ExcludeDirs      []string
	ExtraRules       []scanner.RuleSet

	Log *logrus.Logger
}

// fileConfig is the YAML config file schema. File values fill in anything
// the command line did not set explicitly.
type fileConfig struct {
	Runner            string       `yaml:"runner"`
	Runs              int          `yaml:"runs"`
	RunTimeout        string       `yaml:"run_timeout"`
	VarianceThreshold float64      `yaml:"variance_threshold"`
	TestFilePatterns  []string     `yaml:"test_file_patterns"`
	ExcludeDirs       []string     `yaml:"exclude_dirs"`
	Rules             []ruleConfig `yaml:"rules"`
}

type ruleConfig struct {
	Category    string   `yaml:"category"`
	Severity    string   `yaml:"severity"`
	Patterns    []string `yaml:"patterns"`
	Description string   `yaml:"description"`
	Hint        string   `yaml:"hint"`
}

// NewConfig builds and validates the configuration from CLI flags and the
// optional YAML config file.
func NewConfig(ctx *cli.Context, log *logrus.Logger) (*Config, error) {
	cfg := &Config{
		Target:                 ctx.String(flags.Target.Name),
		Runs:                   ctx.Int(flags.Runs.Name),
		RunTimeout:             ctx.Duration(flags.RunTimeout.Name),
		RunnerCommand:          strings.Fields(ctx.String(flags.RunnerCommand.Name)),
		PatternAnalysis:        ctx.Bool(flags.PatternAnalysis.Name),
		SecurityAnalysis:       ctx.Bool(flags.SecurityAnalysis.Name),
		OutputPath:             ctx.String(flags.Output.Name),
		OutDir:                 ctx.String(flags.OutDir.Name),
		VarianceThresholdRatio: ctx.Float64(flags.VarianceThreshold.Name),
		Log:                    log,
	}

	if path := ctx.String(flags.ConfigFile.Name); path != "" {
		if err := cfg.applyFile(ctx, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(ctx *cli.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Runner != "" && !ctx.IsSet(flags.RunnerCommand.Name) {
		c.RunnerCommand = strings.Fields(fc.Runner)
	}
	if fc.Runs != 0 && !ctx.IsSet(flags.Runs.Name) {
		c.Runs = fc.Runs
	}
	if fc.RunTimeout != "" && !ctx.IsSet(flags.RunTimeout.Name) {
		d, err := time.ParseDuration(fc.RunTimeout)
		if err != nil {
			return fmt.Errorf("invalid run_timeout %q in %s: %w", fc.RunTimeout, path, err)
		}
		c.RunTimeout = d
	}
	if fc.VarianceThreshold != 0 && !ctx.IsSet(flags.VarianceThreshold.Name) {
		c.VarianceThresholdRatio = fc.VarianceThreshold
	}
	if len(fc.TestFilePatterns) > 0 {
		c.TestFilePatterns = fc.TestFilePatterns
	}
	if len(fc.ExcludeDirs) > 0 {
		c.ExcludeDirs = fc.ExcludeDirs
	}

	for _, rc := range fc.Rules {
		rs, err := scanner.CompileRule(
			types.Category(rc.Category),
			types.Severity(rc.Severity),
			rc.Patterns,
			rc.Description,
			rc.Hint,
		)
		if err != nil {
			return fmt.Errorf("invalid rule %q in %s: %w", rc.Category, path, err)
		}
		c.ExtraRules = append(c.ExtraRules, rs)
	}

	return nil
}

// validate checks the configuration preconditions. A nonexistent target is
// "nothing to analyze" and must be distinguished from a valid run that finds
// zero flaky tests.
func (c *Config) validate() error {
	if c.Runs < 1 {
		return fmt.Errorf("run count must be at least 1, got %d", c.Runs)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("per-run timeout must be positive, got %v", c.RunTimeout)
	}
	if len(c.RunnerCommand) == 0 {
		return fmt.Errorf("runner command cannot be empty")
	}
	if c.Target == "" {
		return fmt.Errorf("target cannot be empty")
	}
	if _, err := os.Stat(c.Target); err != nil {
		return fmt.Errorf("target %s is not accessible, nothing to analyze: %w", c.Target, err)
	}
	if c.VarianceThresholdRatio <= 0 {
		c.VarianceThresholdRatio = analyze.DefaultVarianceThresholdRatio
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	return nil
}
