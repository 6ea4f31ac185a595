package flags

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/flakescan/flakescan/analyze"
	"github.com/flakescan/flakescan/runner"
)

const EnvVarPrefix = "FLAKESCAN"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Target = &cli.StringFlag{
		Name:     "target",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("TARGET"),
		Usage:    "Test suite directory or single test file to analyze",
	}
	Runs = &cli.IntFlag{
		Name:    "runs",
		Value:   runner.DefaultRunCount,
		EnvVars: prefixEnvVars("RUNS"),
		Usage:   "Number of times to execute the test suite",
	}
	RunTimeout = &cli.DurationFlag{
		Name:    "run-timeout",
		Value:   runner.DefaultPerRunTimeout,
		EnvVars: prefixEnvVars("RUN_TIMEOUT"),
		Usage:   "Timeout for a single test run (e.g. '300s', '10m')",
	}
	RunnerCommand = &cli.StringFlag{
		Name:    "runner",
		Value:   strings.Join(runner.DefaultRunnerCommand, " "),
		EnvVars: prefixEnvVars("RUNNER"),
		Usage:   "External test runner command; any runner honoring the exit-code/text contract works",
	}
	PatternAnalysis = &cli.BoolFlag{
		Name:    "pattern-analysis",
		Value:   false,
		EnvVars: prefixEnvVars("PATTERN_ANALYSIS"),
		Usage:   "Statically scan test sources for flakiness-prone patterns",
	}
	SecurityAnalysis = &cli.BoolFlag{
		Name:    "security-analysis",
		Value:   false,
		EnvVars: prefixEnvVars("SECURITY_ANALYSIS"),
		Usage:   "Include context-gated security findings in the pattern scan",
	}
	Output = &cli.StringFlag{
		Name:    "output",
		Value:   "",
		EnvVars: prefixEnvVars("OUTPUT"),
		Usage:   "Write the text report to this file instead of stdout",
	}
	OutDir = &cli.StringFlag{
		Name:    "outdir",
		Value:   ".flakescan",
		EnvVars: prefixEnvVars("OUTDIR"),
		Usage:   "Directory for per-run artifacts and report copies",
	}
	VarianceThreshold = &cli.Float64Flag{
		Name:    "variance-threshold",
		Value:   analyze.DefaultVarianceThresholdRatio,
		EnvVars: prefixEnvVars("VARIANCE_THRESHOLD"),
		Usage:   "Ratio of duration variance to mean duration above which a test is flagged performance-variable",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: prefixEnvVars("CONFIG"),
		Usage:   "Optional YAML config file (runner command, thresholds, extra scan rules)",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level (debug, info, warn, error)",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz-addr",
		Value:   "",
		EnvVars: prefixEnvVars("HEALTHZ_ADDR"),
		Usage:   "Serve /healthz on this address during the analysis (empty = disabled)",
	}
	MetricsAddr = &cli.StringFlag{
		Name:    "metrics-addr",
		Value:   "",
		EnvVars: prefixEnvVars("METRICS_ADDR"),
		Usage:   "Serve Prometheus metrics on this address during the analysis (empty = disabled)",
	}
)

var requiredFlags = []cli.Flag{
	Target,
}

var optionalFlags = []cli.Flag{
	Runs,
	RunTimeout,
	RunnerCommand,
	PatternAnalysis,
	SecurityAnalysis,
	Output,
	OutDir,
	VarianceThreshold,
	ConfigFile,
	LogLevel,
	HealthzAddr,
	MetricsAddr,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
