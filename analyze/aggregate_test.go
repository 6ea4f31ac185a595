package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakescan/flakescan/types"
)

// rawRuns builds one RawRunResult per outcome, all attributed to a single
// test via a fixed-name extractor.
func rawRuns(outcomes []bool, durations []time.Duration) []types.RawRunResult {
	raws := make([]types.RawRunResult, len(outcomes))
	for i, passed := range outcomes {
		d := time.Second
		if durations != nil {
			d = durations[i]
		}
		raws[i] = types.RawRunResult{RunIndex: i + 1, Passed: passed, Duration: d}
	}
	return raws
}

func singleName(name string) NameExtractor {
	return func(stdout, stderr string) []string { return []string{name} }
}

func TestAggregate_AllPassesIsStable(t *testing.T) {
	raws := rawRuns([]bool{true, true, true, true, true}, nil)
	verdicts := Aggregate(raws, Config{ExtractNames: singleName("test_a")})

	require.Contains(t, verdicts, "test_a")
	v := verdicts["test_a"]
	assert.Equal(t, types.TierStable, v.Tier)
	assert.Equal(t, 1.0, v.SuccessRate)
	assert.Equal(t, 5, v.TotalRuns)
	assert.Equal(t, 5, v.SuccessfulRuns)
	assert.Equal(t, 0, v.FailedRuns)
	assert.Equal(t, 0.0, v.DurationVariance)
	assert.False(t, v.PerformanceVariable)
}

func TestAggregate_AllFailuresIsFailing(t *testing.T) {
	raws := rawRuns([]bool{false, false, false, false, false}, nil)
	verdicts := Aggregate(raws, Config{ExtractNames: singleName("test_b")})

	v := verdicts["test_b"]
	assert.Equal(t, types.TierFailing, v.Tier)
	assert.Equal(t, 0.0, v.SuccessRate)
	assert.Equal(t, 0, v.SuccessfulRuns)
	assert.Equal(t, 5, v.FailedRuns)
}

func TestAggregate_MixedOutcomesAreFlaky(t *testing.T) {
	raws := rawRuns([]bool{true, false, true, true, false}, nil)
	verdicts := Aggregate(raws, Config{ExtractNames: singleName("test_c")})

	v := verdicts["test_c"]
	assert.Equal(t, types.TierFlaky, v.Tier)
	assert.InDelta(t, 0.6, v.SuccessRate, 1e-9)
	assert.Equal(t, 3, v.SuccessfulRuns)
	assert.Equal(t, 2, v.FailedRuns)
}

func TestAggregate_SingleFailureAmongPassesIsFlaky(t *testing.T) {
	// 99% stable is still flaky; only a perfect rate is stable.
	raws := rawRuns([]bool{true, true, true, true, false}, nil)
	verdicts := Aggregate(raws, Config{ExtractNames: singleName("test_d")})
	assert.Equal(t, types.TierFlaky, verdicts["test_d"].Tier)
}

func TestAggregate_PerformanceVariable(t *testing.T) {
	durations := []time.Duration{
		1 * time.Second, 1 * time.Second, 1 * time.Second, 5 * time.Second, 1 * time.Second,
	}
	raws := rawRuns([]bool{true, true, true, true, true}, durations)
	verdicts := Aggregate(raws, Config{ExtractNames: singleName("test_slow")})

	v := verdicts["test_slow"]
	// mean 1.8s, population variance 2.56, threshold 1.8*0.5=0.9
	assert.Equal(t, types.TierStable, v.Tier)
	assert.InDelta(t, 2.56, v.DurationVariance, 1e-9)
	assert.InDelta(t, 1.8, v.AvgDuration.Seconds(), 1e-9)
	assert.True(t, v.PerformanceVariable)
}

func TestAggregate_StableTimingIsNotPerformanceVariable(t *testing.T) {
	durations := []time.Duration{time.Second, time.Second, time.Second}
	raws := rawRuns([]bool{true, true, true}, durations)
	verdicts := Aggregate(raws, Config{ExtractNames: singleName("test_fast")})
	assert.False(t, verdicts["test_fast"].PerformanceVariable)
}

func TestAggregate_ThresholdRatioIsConfigurable(t *testing.T) {
	durations := []time.Duration{
		1 * time.Second, 1 * time.Second, 1 * time.Second, 5 * time.Second, 1 * time.Second,
	}
	raws := rawRuns([]bool{true, true, true, true, true}, durations)

	// variance 2.56, mean 1.8: flagged at ratio 0.5, clear at ratio 2.0.
	strict := Aggregate(raws, Config{VarianceThresholdRatio: 0.5, ExtractNames: singleName("t")})
	lenient := Aggregate(raws, Config{VarianceThresholdRatio: 2.0, ExtractNames: singleName("t")})
	assert.True(t, strict["t"].PerformanceVariable)
	assert.False(t, lenient["t"].PerformanceVariable)
}

func TestAggregate_SingleRunHasZeroVariance(t *testing.T) {
	raws := rawRuns([]bool{true}, []time.Duration{3 * time.Second})
	verdicts := Aggregate(raws, Config{ExtractNames: singleName("test_once")})

	v := verdicts["test_once"]
	assert.Equal(t, types.TierStable, v.Tier)
	assert.Equal(t, 1, v.TotalRuns)
	assert.Equal(t, 0.0, v.DurationVariance)
	assert.False(t, v.PerformanceVariable)
}

func TestAggregate_EmptyInputYieldsEmptyMapping(t *testing.T) {
	verdicts := Aggregate(nil, Config{})
	assert.Empty(t, verdicts)
}

func TestAggregate_NilExtractorUsesFallbackName(t *testing.T) {
	raws := rawRuns([]bool{true, false}, nil)
	verdicts := Aggregate(raws, Config{})

	require.Contains(t, verdicts, types.FallbackTestName)
	assert.Equal(t, types.TierFlaky, verdicts[types.FallbackTestName].Tier)
}

func TestAggregate_PerTestAttribution(t *testing.T) {
	// Two tests observed in every run; the whole-run outcome is shared.
	extractor := func(stdout, stderr string) []string {
		return []string{"test_x", "test_y"}
	}
	raws := rawRuns([]bool{true, false, true}, nil)
	verdicts := Aggregate(raws, Config{ExtractNames: extractor})

	require.Len(t, verdicts, 2)
	for _, name := range []string{"test_x", "test_y"} {
		v := verdicts[name]
		assert.Equal(t, types.TierFlaky, v.Tier)
		assert.Equal(t, 3, v.TotalRuns)
	}
}

func TestSession_ObserveKeepsRunOrder(t *testing.T) {
	s := NewSession()
	for i := 1; i <= 3; i++ {
		s.Observe(types.RawRunResult{RunIndex: i, Passed: true}, []string{"test_a"})
	}

	records := s.Records("test_a")
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.RunIndex)
	}
}

func TestVerdictLabel_PerformanceModifierIsOrthogonal(t *testing.T) {
	durations := []time.Duration{
		1 * time.Second, 1 * time.Second, 1 * time.Second, 5 * time.Second, 1 * time.Second,
	}
	raws := rawRuns([]bool{true, false, true, true, true}, durations)
	verdicts := Aggregate(raws, Config{ExtractNames: singleName("t")})

	v := verdicts["t"]
	assert.Equal(t, types.TierFlaky, v.Tier)
	assert.True(t, v.PerformanceVariable)
	assert.Equal(t, "FLAKY_PERFORMANCE", v.Label())
}
