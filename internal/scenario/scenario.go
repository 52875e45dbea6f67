// Package scenario projects what-if adjustments onto a copy of the P&L data
// and reruns the analysis over the result.
package scenario

import (
	"fmt"
	"time"

	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/mathutil"
)

// AllLocations targets every location.
const AllLocations = "all"

// Target is the P&L line an adjustment changes.
type Target string

const (
	TargetRevenue  Target = "revenue"
	TargetCOGS     Target = "cogs"
	TargetExpenses Target = "expenses"
)

// AdjustType says how an adjustment value is applied.
type AdjustType string

const (
	// AdjustPercent scales the current value by (1 + value/100).
	AdjustPercent AdjustType = "pct"
	// AdjustFlat adds value; for categorized lines it is split evenly
	// across the categories present in the month.
	AdjustFlat AdjustType = "flat"
)

// Adjustment is one what-if change.
type Adjustment struct {
	Location   string     `json:"location" yaml:"location"`
	Metric     Target     `json:"metric" yaml:"metric"`
	AdjustType AdjustType `json:"adjust_type" yaml:"adjust_type"`
	Value      float64    `json:"value" yaml:"value"`
}

// Validate checks the adjustment against the catalogs.
func (a Adjustment) Validate() error {
	if a.Location != AllLocations && !constants.IsLocation(a.Location) {
		return fmt.Errorf("unknown location %q", a.Location)
	}
	switch a.Metric {
	case TargetRevenue, TargetCOGS, TargetExpenses:
	default:
		return fmt.Errorf("unknown metric %q", a.Metric)
	}
	switch a.AdjustType {
	case AdjustPercent, AdjustFlat:
	default:
		return fmt.Errorf("unknown adjust_type %q", a.AdjustType)
	}
	return nil
}

// Scenario is a named, ordered list of adjustments saved for a year.
type Scenario struct {
	ID          string       `json:"id,omitempty" yaml:"id,omitempty"`
	UserID      string       `json:"user_id,omitempty" yaml:"userId,omitempty"`
	Name        string       `json:"name" yaml:"name"`
	Year        int          `json:"year,omitempty" yaml:"year,omitempty"`
	Adjustments []Adjustment `json:"adjustments" yaml:"adjustments"`
	CreatedAt   time.Time    `json:"created_at,omitempty" yaml:"createdAt,omitempty"`
}

// Apply clones base, applies the adjustments in order and analyzes the
// result. base is never modified.
func Apply(base ledger.PLData, hc ledger.HeadcountData, adjustments []Adjustment, months []string) *analysis.Result {
	return analysis.Run(Project(base, adjustments), hc, months)
}

// Project returns a deep copy of base with the adjustments applied to every
// month of the year. Each adjustment sees the output of the ones before it.
func Project(base ledger.PLData, adjustments []Adjustment) ledger.PLData {
	pl := base.Clone()
	if pl == nil {
		pl = ledger.PLData{}
	}
	for _, adj := range adjustments {
		for _, loc := range targets(adj.Location) {
			e := pl[loc]
			if e == nil {
				continue
			}
			for _, m := range constants.Months {
				applyMonth(e, m, adj)
			}
		}
	}
	return pl
}

// targets resolves the locations an adjustment touches. Corporate is
// never a target.
func targets(location string) []string {
	if location == AllLocations {
		return constants.Locations
	}
	if location == constants.Corporate {
		return nil
	}
	return []string{location}
}

func applyMonth(e *ledger.EntityPL, month string, adj Adjustment) {
	switch adj.Metric {
	case TargetRevenue:
		if e.Revenue == nil {
			e.Revenue = make(ledger.MonthAmounts, len(constants.Months))
		}
		cur := e.Revenue[month]
		if adj.AdjustType == AdjustPercent {
			e.Revenue[month] = mathutil.ApplyPercentage(cur, adj.Value)
		} else {
			e.Revenue[month] = cur + adj.Value
		}
	case TargetCOGS:
		adjustCategories(e.COGS[month], adj)
	case TargetExpenses:
		adjustCategories(e.Expenses[month], adj)
	}
}

// adjustCategories mutates one month's category map. A flat value is
// divided across the categories already present, so a month with no
// categories is left unchanged.
func adjustCategories(cats map[string]float64, adj Adjustment) {
	if len(cats) == 0 {
		return
	}
	share := adj.Value / float64(len(cats))
	for cat, cur := range cats {
		if adj.AdjustType == AdjustPercent {
			cats[cat] = mathutil.ApplyPercentage(cur, adj.Value)
		} else {
			cats[cat] = cur + share
		}
	}
}
