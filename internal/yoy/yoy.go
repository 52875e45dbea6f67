// Package yoy compares two analysis snapshots, typically the current and the
// prior year, metric by metric.
package yoy

import (
	"math"

	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

// Row is one location/metric comparison.
type Row struct {
	Location  string  `json:"location"`
	Metric    string  `json:"metric"`
	Prior     float64 `json:"prior"`
	Current   float64 `json:"current"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"changePct"`
}

// Comparison pairs a display name with the metric it reads.
type Comparison struct {
	Name   string
	Metric analysis.Metric
}

// Comparisons are the metrics compared, in output order.
var Comparisons = []Comparison{
	{"Revenue", analysis.MetricRevenue},
	{"Gross Profit", analysis.MetricGrossProfit},
	{"GM%", analysis.MetricGMPct},
	{"Net Income", analysis.MetricNetIncomeDirect},
	{"NI%", analysis.MetricNIPctDirect},
	{"Rev/Clinician", analysis.MetricRevPerClinician},
}

// Compute diffs current against prior for every location present in both.
// Either snapshot being nil yields no rows.
func Compute(current, prior *analysis.Result) []Row {
	rows := []Row{}
	if current == nil || prior == nil {
		return rows
	}

	for _, loc := range constants.Locations {
		cur, ok := current.Location(loc)
		if !ok {
			continue
		}
		pri, ok := prior.Location(loc)
		if !ok {
			continue
		}
		for _, c := range Comparisons {
			rows = append(rows, newRow(loc, c.Name, c.Metric.Value(pri), c.Metric.Value(cur)))
		}
	}
	return rows
}

// newRow computes change against |prior| so a negative base does not flip
// the sign of the percentage. A zero base gives 0.
func newRow(location, metric string, prior, current float64) Row {
	change := current - prior
	pct := 0.0
	if prior != 0 {
		pct = change / math.Abs(prior)
	}
	return Row{
		Location:  location,
		Metric:    metric,
		Prior:     prior,
		Current:   current,
		Change:    change,
		ChangePct: pct,
	}
}
