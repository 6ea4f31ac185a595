package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerdictLabel(t *testing.T) {
	tests := []struct {
		name    string
		verdict ReliabilityVerdict
		want    string
	}{
		{
			name:    "stable without modifier",
			verdict: ReliabilityVerdict{Tier: TierStable},
			want:    "STABLE",
		},
		{
			name:    "flaky with performance modifier",
			verdict: ReliabilityVerdict{Tier: TierFlaky, PerformanceVariable: true},
			want:    "FLAKY_PERFORMANCE",
		},
		{
			name:    "failing with performance modifier",
			verdict: ReliabilityVerdict{Tier: TierFailing, PerformanceVariable: true},
			want:    "FAILING_PERFORMANCE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.verdict.Label())
		})
	}
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
}

func TestSplitTestName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantModule string
		wantRest   string
	}{
		{"module and test", "test_auth::test_login", "test_auth", "test_login"},
		{"module class and test", "test_auth::TestLogin::test_ok", "test_auth", "TestLogin::test_ok"},
		{"bare identifier", "all_tests", "all_tests", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module, rest := SplitTestName(tt.input)
			assert.Equal(t, tt.wantModule, module)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}
