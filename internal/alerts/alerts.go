// Package alerts evaluates threshold rules against an analysis snapshot.
package alerts

import (
	"fmt"

	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/format"
)

// Op is a threshold comparison.
type Op string

const (
	OpLT  Op = "lt"
	OpLTE Op = "lte"
	OpGT  Op = "gt"
	OpGTE Op = "gte"
)

// Label returns the operator symbol used in messages.
func (o Op) Label() string {
	switch o {
	case OpLT:
		return "<"
	case OpLTE:
		return "≤"
	case OpGT:
		return ">"
	case OpGTE:
		return "≥"
	}
	return string(o)
}

// Trips reports whether value crosses threshold. Unknown operators never trip.
func (o Op) Trips(value, threshold float64) bool {
	switch o {
	case OpLT:
		return value < threshold
	case OpLTE:
		return value <= threshold
	case OpGT:
		return value > threshold
	case OpGTE:
		return value >= threshold
	}
	return false
}

// Scope selects which locations a rule checks.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeSpecific Scope = "specific"
)

// Metrics are the metrics a rule may watch, in display order.
var Metrics = []analysis.Metric{
	analysis.MetricGMPct,
	analysis.MetricNIPctDirect,
	analysis.MetricNIPctAllocated,
	analysis.MetricRevenue,
	analysis.MetricCMPct,
	analysis.MetricRevPerClinician,
	analysis.MetricMoSPctDirect,
	analysis.MetricMoSPctAllocated,
}

// MetricOptions lists the metric labels accepted in Config.MetricType.
func MetricOptions() []string {
	out := make([]string, len(Metrics))
	for i, m := range Metrics {
		out[i] = m.Label()
	}
	return out
}

// lookupMetric resolves a rule's metric label to an alertable metric.
func lookupMetric(label string) (analysis.Metric, bool) {
	for _, m := range Metrics {
		if m.Label() == label {
			return m, true
		}
	}
	return 0, false
}

// Config is a saved threshold rule. MetricType holds a label from
// MetricOptions.
type Config struct {
	ID             string  `json:"id,omitempty" yaml:"id,omitempty"`
	UserID         string  `json:"user_id,omitempty" yaml:"userId,omitempty"`
	AlertName      string  `json:"alert_name" yaml:"alertName"`
	MetricType     string  `json:"metric_type" yaml:"metricType"`
	ThresholdValue float64 `json:"threshold_value" yaml:"thresholdValue"`
	ComparisonOp   Op      `json:"comparison_op" yaml:"comparisonOp"`
	Scope          Scope   `json:"scope" yaml:"scope"`
	Location       string  `json:"location,omitempty" yaml:"location,omitempty"`
	IsActive       bool    `json:"is_active" yaml:"isActive"`
}

// Validate checks a rule before it is saved.
func (c Config) Validate() error {
	if _, ok := lookupMetric(c.MetricType); !ok {
		return fmt.Errorf("unknown metric %q", c.MetricType)
	}
	switch c.ComparisonOp {
	case OpLT, OpLTE, OpGT, OpGTE:
	default:
		return fmt.Errorf("unknown comparison %q", c.ComparisonOp)
	}
	switch c.Scope {
	case ScopeAll:
	case ScopeSpecific:
		if c.Location != "" && !constants.IsLocation(c.Location) {
			return fmt.Errorf("unknown location %q", c.Location)
		}
	default:
		return fmt.Errorf("unknown scope %q", c.Scope)
	}
	return nil
}

// Triggered is a rule that tripped at one location.
type Triggered struct {
	Config      Config  `json:"config"`
	Location    string  `json:"location"`
	ActualValue float64 `json:"actualValue"`
	Message     string  `json:"message"`
}

// Check evaluates every active rule. Rules naming an unknown metric are
// skipped, as are locations absent from the analysis. Each rule and
// location trips independently.
func Check(configs []Config, result *analysis.Result) []Triggered {
	triggered := []Triggered{}
	if result == nil {
		return triggered
	}

	for _, cfg := range configs {
		if !cfg.IsActive {
			continue
		}
		metric, ok := lookupMetric(cfg.MetricType)
		if !ok {
			continue
		}
		for _, loc := range cfg.locations() {
			lr, ok := result.Location(loc)
			if !ok {
				continue
			}
			val := metric.Value(lr)
			if !cfg.ComparisonOp.Trips(val, cfg.ThresholdValue) {
				continue
			}
			triggered = append(triggered, Triggered{
				Config:      cfg,
				Location:    loc,
				ActualValue: val,
				Message:     message(loc, cfg, metric, val),
			})
		}
	}
	return triggered
}

// locations resolves the rule scope. A specific scope without a location
// checks every location.
func (c Config) locations() []string {
	if c.Scope == ScopeSpecific && c.Location != "" {
		return []string{c.Location}
	}
	return constants.Locations
}

func message(loc string, cfg Config, metric analysis.Metric, val float64) string {
	var actual, threshold string
	if metric.IsPercent() {
		actual = format.Percent(val)
		threshold = format.Percent(cfg.ThresholdValue)
	} else {
		actual = format.SignedCurrency(val)
		threshold = format.Number(cfg.ThresholdValue)
	}
	return fmt.Sprintf("%s: %s is %s (threshold: %s %s)", loc, cfg.MetricType, actual, cfg.ComparisonOp.Label(), threshold)
}
