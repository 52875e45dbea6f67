// Package budget compares actual P&L figures against an annual budget.
//
// Actual COGS and expenses are summed across every category present in a
// month, while budget COGS and expenses are single aggregate figures. The
// comparison is therefore aggregate-to-aggregate and says nothing about
// individual categories.
package budget

import (
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/mathutil"
)

// Variance row metric names.
const (
	MetricRevenue  = "Revenue"
	MetricCOGS     = "COGS"
	MetricExpenses = "Expenses"
)

// VarianceRow compares one location's actual figure to its budget.
type VarianceRow struct {
	Location    string  `json:"location"`
	Metric      string  `json:"metric"`
	Budget      float64 `json:"budget"`
	Actual      float64 `json:"actual"`
	Variance    float64 `json:"variance"`
	VariancePct float64 `json:"variancePct"`
}

// IsRevenue reports whether the row compares revenue, where a positive
// variance is good news.
func (r VarianceRow) IsRevenue() bool {
	return r.Metric == MetricRevenue
}

// ComputeVariance returns three rows per location, in location catalog
// order: Revenue, COGS, Expenses.
func ComputeVariance(pl ledger.PLData, budget ledger.BudgetData, months []string) []VarianceRow {
	rows := make([]VarianceRow, 0, len(constants.Locations)*3)
	for _, loc := range constants.Locations {
		rows = append(rows,
			newRow(loc, MetricRevenue, pl.SumRevenue(loc, months), budget.Sum(ledger.BudgetRevenue, loc, months)),
			newRow(loc, MetricCOGS, pl.SumPresent(ledger.KindCOGS, loc, months), budget.Sum(ledger.BudgetCOGS, loc, months)),
			newRow(loc, MetricExpenses, pl.SumPresent(ledger.KindExpenses, loc, months), budget.Sum(ledger.BudgetExpenses, loc, months)),
		)
	}
	return rows
}

func newRow(location, metric string, actual, budgeted float64) VarianceRow {
	variance := actual - budgeted
	return VarianceRow{
		Location:    location,
		Metric:      metric,
		Budget:      budgeted,
		Actual:      actual,
		Variance:    variance,
		VariancePct: mathutil.Ratio(variance, budgeted),
	}
}
