package alerts

import (
	"testing"

	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/testutil"
)

// sampleResult: revenue for location i is 120,000*(i+1) except Johnson City
// which has none; every earning location has GM% 0.7.
func sampleResult() *analysis.Result {
	return analysis.Run(testutil.SamplePL(), ledger.DefaultHeadcount(), testutil.AllMonths())
}

func TestCheckNilAnalysis(t *testing.T) {
	configs := []Config{{MetricType: "Revenue", ComparisonOp: OpGTE, Scope: ScopeAll, IsActive: true}}
	if got := Check(configs, nil); len(got) != 0 {
		t.Errorf("Check() with nil analysis returned %d alerts, expected 0", len(got))
	}
}

func TestCheck(t *testing.T) {
	result := sampleResult()

	tests := []struct {
		name      string
		config    Config
		locations []string
	}{
		{
			name:      "Inactive rule ignored",
			config:    Config{MetricType: "Revenue", ComparisonOp: OpGTE, Scope: ScopeAll},
			locations: nil,
		},
		{
			name:      "Revenue below threshold",
			config:    Config{MetricType: "Revenue", ComparisonOp: OpLT, ThresholdValue: 250000, Scope: ScopeAll, IsActive: true},
			locations: []string{"Bean Station", "Jefferson City", "Johnson City"},
		},
		{
			name:      "Percentage metric",
			config:    Config{MetricType: "GM%", ComparisonOp: OpLT, ThresholdValue: 0.5, Scope: ScopeAll, IsActive: true},
			locations: []string{"Johnson City"},
		},
		{
			name:      "Inclusive comparison",
			config:    Config{MetricType: "GM%", ComparisonOp: OpLTE, ThresholdValue: 0.7, Scope: ScopeAll, IsActive: true},
			locations: constants.Locations,
		},
		{
			name:      "Specific location",
			config:    Config{MetricType: "Revenue", ComparisonOp: OpGTE, Scope: ScopeSpecific, Location: "Newport", IsActive: true},
			locations: []string{"Newport"},
		},
		{
			name:      "Specific without location falls back to all",
			config:    Config{MetricType: "Revenue", ComparisonOp: OpGTE, Scope: ScopeSpecific, IsActive: true},
			locations: constants.Locations,
		},
		{
			name:      "Location missing from analysis",
			config:    Config{MetricType: "Revenue", ComparisonOp: OpGTE, Scope: ScopeSpecific, Location: "Atlantis", IsActive: true},
			locations: nil,
		},
		{
			name:      "Unknown metric skipped",
			config:    Config{MetricType: "EBITDA", ComparisonOp: OpGTE, Scope: ScopeAll, IsActive: true},
			locations: nil,
		},
		{
			name:      "Unknown operator never trips",
			config:    Config{MetricType: "Revenue", ComparisonOp: "eq", Scope: ScopeAll, IsActive: true},
			locations: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check([]Config{tt.config}, result)
			if len(got) != len(tt.locations) {
				t.Fatalf("Check() returned %d alerts, expected %d: %+v", len(got), len(tt.locations), got)
			}
			for i, alert := range got {
				if alert.Location != tt.locations[i] {
					t.Errorf("alert[%d].Location = %s, expected %s", i, alert.Location, tt.locations[i])
				}
			}
		})
	}
}

func TestCheckRulesTripIndependently(t *testing.T) {
	configs := []Config{
		{MetricType: "Revenue", ComparisonOp: OpGT, ThresholdValue: 900000, Scope: ScopeAll, IsActive: true},
		{MetricType: "Revenue", ComparisonOp: OpGT, ThresholdValue: 900000, Scope: ScopeAll, IsActive: true},
		{MetricType: "CM%", ComparisonOp: OpGTE, ThresholdValue: 0.7, Scope: ScopeSpecific, Location: "Rogersville", IsActive: true},
	}

	got := Check(configs, sampleResult())
	if len(got) != 3 {
		t.Fatalf("Check() returned %d alerts, expected 3 (no deduplication)", len(got))
	}
}

func TestMessages(t *testing.T) {
	result := sampleResult()

	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name:     "Currency metric",
			config:   Config{MetricType: "Revenue", ComparisonOp: OpGT, ThresholdValue: 900000, Scope: ScopeAll, IsActive: true},
			expected: "Rogersville: Revenue is $960,000 (threshold: > 900,000)",
		},
		{
			name:     "Percentage metric",
			config:   Config{MetricType: "GM%", ComparisonOp: OpLT, ThresholdValue: 0.5, Scope: ScopeAll, IsActive: true},
			expected: "Johnson City: GM% is 0.0% (threshold: < 50.0%)",
		},
		{
			name:     "Inclusive operator label",
			config:   Config{MetricType: "Revenue", ComparisonOp: OpLTE, ThresholdValue: 120000.5, Scope: ScopeSpecific, Location: "Bean Station", IsActive: true},
			expected: "Bean Station: Revenue is $120,000 (threshold: ≤ 120,000.5)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check([]Config{tt.config}, result)
			if len(got) != 1 {
				t.Fatalf("Check() returned %d alerts, expected 1", len(got))
			}
			if got[0].Message != tt.expected {
				t.Errorf("Message = %q, expected %q", got[0].Message, tt.expected)
			}
		})
	}
}

func TestOp(t *testing.T) {
	tests := []struct {
		op        Op
		value     float64
		threshold float64
		trips     bool
		label     string
	}{
		{OpLT, 1, 2, true, "<"},
		{OpLT, 2, 2, false, "<"},
		{OpLTE, 2, 2, true, "≤"},
		{OpGT, 3, 2, true, ">"},
		{OpGT, 2, 2, false, ">"},
		{OpGTE, 2, 2, true, "≥"},
	}

	for _, tt := range tests {
		if got := tt.op.Trips(tt.value, tt.threshold); got != tt.trips {
			t.Errorf("%s.Trips(%v, %v) = %v, expected %v", tt.op, tt.value, tt.threshold, got, tt.trips)
		}
		if got := tt.op.Label(); got != tt.label {
			t.Errorf("%s.Label() = %q, expected %q", tt.op, got, tt.label)
		}
	}
}

func TestMetricOptions(t *testing.T) {
	expected := []string{"GM%", "NI% (Direct)", "NI% (Allocated)", "Revenue", "CM%", "Rev/Clinician", "MoS% (Direct)", "MoS% (Allocated)"}
	got := MetricOptions()
	if len(got) != len(expected) {
		t.Fatalf("MetricOptions() = %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("MetricOptions()[%d] = %s, expected %s", i, got[i], expected[i])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"Valid", Config{MetricType: "GM%", ComparisonOp: OpLT, Scope: ScopeAll}, false},
		{"Valid specific", Config{MetricType: "CM%", ComparisonOp: OpGTE, Scope: ScopeSpecific, Location: "Newport"}, false},
		{"Unknown metric", Config{MetricType: "gmPct", ComparisonOp: OpLT, Scope: ScopeAll}, true},
		{"Unknown op", Config{MetricType: "GM%", ComparisonOp: "eq", Scope: ScopeAll}, true},
		{"Unknown scope", Config{MetricType: "GM%", ComparisonOp: OpLT, Scope: "region"}, true},
		{"Unknown location", Config{MetricType: "GM%", ComparisonOp: OpLT, Scope: ScopeSpecific, Location: "Atlantis"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
