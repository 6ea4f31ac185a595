package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/flakescan/flakescan/types"
)

const (
	MetricsNamespace = "flakescan"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "runs_total",
		Help:      "Count of test runner invocations",
	}, []string{
		"run_id",
		"result",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of the most recent runner invocation",
	}, []string{
		"run_id",
	})

	verdictTests = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "verdict_tests",
		Help:      "Number of tests per reliability tier for a session",
	}, []string{
		"run_id",
		"tier",
	})

	patternFindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "pattern_findings_total",
		Help:      "Count of static pattern findings",
	}, []string{
		"category",
		"severity",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	logrus.WithField("error", error).Debug("metric inc errors_total")
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordRun records the outcome of a single runner invocation.
func RecordRun(runID string, passed, timedOut bool, duration time.Duration) {
	result := "pass"
	switch {
	case timedOut:
		result = "timeout"
	case !passed:
		result = "fail"
	}
	runsTotal.WithLabelValues(runID, result).Inc()
	runDuration.WithLabelValues(runID).Set(duration.Seconds())
}

// RecordVerdicts publishes per-tier test counts for a completed session.
func RecordVerdicts(runID string, verdicts map[string]types.ReliabilityVerdict) {
	counts := make(map[types.Tier]int)
	for _, v := range verdicts {
		counts[v.Tier]++
	}
	for _, tier := range []types.Tier{types.TierStable, types.TierFlaky, types.TierFailing} {
		verdictTests.WithLabelValues(runID, string(tier)).Set(float64(counts[tier]))
	}
}

// RecordPatternFinding counts one static-scan finding.
func RecordPatternFinding(match types.PatternMatch) {
	patternFindingsTotal.WithLabelValues(string(match.Category), string(match.Severity)).Inc()
}
