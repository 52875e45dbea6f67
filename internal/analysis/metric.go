package analysis

import (
	"fmt"
	"strings"
)

// Metric names one derived per-location figure that can be ranked, compared,
// or alerted on.
type Metric int

const (
	MetricRevenue Metric = iota
	MetricGrossProfit
	MetricGMPct
	MetricNetIncomeDirect
	MetricNIPctDirect
	MetricNIPctAllocated
	MetricCMPct
	MetricRevPerClinician
	MetricNIPerClinicianDirect
	MetricMoSPctDirect
	MetricMoSPctAllocated

	metricCount
)

type metricInfo struct {
	key     string
	label   string
	percent bool
	value   func(LocationResult) float64
}

// metricTable is indexed by Metric; TestMetricTableComplete keeps it in step
// with the constant list.
var metricTable = [metricCount]metricInfo{
	MetricRevenue:              {"revenue", "Revenue", false, func(r LocationResult) float64 { return r.Revenue }},
	MetricGrossProfit:          {"gpD", "Gross Profit", false, func(r LocationResult) float64 { return r.GPD }},
	MetricGMPct:                {"gmPct", "GM%", true, func(r LocationResult) float64 { return r.GMPct }},
	MetricNetIncomeDirect:      {"niD", "Net Income", false, func(r LocationResult) float64 { return r.NID }},
	MetricNIPctDirect:          {"niPctD", "NI% (Direct)", true, func(r LocationResult) float64 { return r.NIPctD }},
	MetricNIPctAllocated:       {"niPctA", "NI% (Allocated)", true, func(r LocationResult) float64 { return r.NIPctA }},
	MetricCMPct:                {"cmPct", "CM%", true, func(r LocationResult) float64 { return r.CMPct }},
	MetricRevPerClinician:      {"revPerClin", "Rev/Clinician", false, func(r LocationResult) float64 { return r.RevPerClin }},
	MetricNIPerClinicianDirect: {"niPerClinD", "NI/Clinician", false, func(r LocationResult) float64 { return r.NIPerClinD }},
	MetricMoSPctDirect:         {"mosPctD", "MoS% (Direct)", true, func(r LocationResult) float64 { return r.MoSPctD }},
	MetricMoSPctAllocated:      {"mosPctA", "MoS% (Allocated)", true, func(r LocationResult) float64 { return r.MoSPctA }},
}

// RankingMetrics are the seven metrics behind the composite score.
var RankingMetrics = []Metric{
	MetricRevenue,
	MetricGMPct,
	MetricNIPctDirect,
	MetricCMPct,
	MetricRevPerClinician,
	MetricNIPerClinicianDirect,
	MetricMoSPctAllocated,
}

// AllMetrics returns every metric in declaration order.
func AllMetrics() []Metric {
	out := make([]Metric, metricCount)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m >= 0 && m < metricCount
}

// String returns the metric's stable key, e.g. "gmPct".
func (m Metric) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricTable[m].key
}

// Label returns the display label, e.g. "GM%".
func (m Metric) Label() string {
	if !m.Valid() {
		return m.String()
	}
	return metricTable[m].label
}

// IsPercent reports whether the metric is a fraction rendered as a percentage.
func (m Metric) IsPercent() bool {
	return m.Valid() && metricTable[m].percent
}

// Value extracts the metric from a location result.
func (m Metric) Value(r LocationResult) float64 {
	if !m.Valid() {
		return 0
	}
	return metricTable[m].value(r)
}

// MarshalText encodes the metric as its key so it can be used as a JSON map key.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown metric %d", int(m))
	}
	return []byte(metricTable[m].key), nil
}

// UnmarshalText accepts either a key or a display label.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, ok := ParseMetric(string(text))
	if !ok {
		return fmt.Errorf("unknown metric %q", string(text))
	}
	*m = parsed
	return nil
}

// ParseMetric resolves a key ("gmPct") or label ("GM%"), case-insensitively.
func ParseMetric(name string) (Metric, bool) {
	name = strings.TrimSpace(name)
	for i, info := range metricTable {
		if strings.EqualFold(info.key, name) || strings.EqualFold(info.label, name) {
			return Metric(i), true
		}
	}
	return 0, false
}
