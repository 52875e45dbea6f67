// Package testutil provides shared fixtures and comparison helpers for tests.
package testutil

import (
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/mathutil"
)

// Tolerance is the float tolerance used by Close.
const Tolerance = 1e-6

// Close reports whether two floats are equal within Tolerance.
func Close(a, b float64) bool {
	return mathutil.WithinTolerance(a, b, Tolerance)
}

// ZeroRevenueLocation has costs but no revenue in SamplePL.
const ZeroRevenueLocation = "Johnson City"

// SamplePL builds a dataset where location i (in catalog order) earns
// 10,000*(i+1) per month with proportional COGS, flat operating expenses,
// and Corporate overhead to allocate. ZeroRevenueLocation earns nothing.
func SamplePL() ledger.PLData {
	pl := ledger.NewPLData()
	for i, loc := range constants.Locations {
		scale := float64(i + 1)
		e := pl[loc]
		for _, m := range constants.Months {
			if loc != ZeroRevenueLocation {
				e.Revenue[m] = 10000 * scale
			}
			e.COGS[m]["Clinical Supplies"] = 1000 * scale
			e.COGS[m]["PT Wages & Taxes"] = 2000 * scale
			e.Expenses[m]["Rent & Lease"] = 3000
			e.Expenses[m]["Utilities"] = 500
			e.OtherIncome[m] = 100
			e.OtherExpense[m] = 50
		}
	}
	corp := pl[constants.Corporate]
	for _, m := range constants.Months {
		corp.COGS[m]["Medical Director"] = 2000
		corp.Expenses[m]["Labor - Admin"] = 5000
		corp.OtherIncome[m] = 300
		corp.OtherExpense[m] = 120
	}
	return pl
}

// SingleLocationPL builds a dataset with one location's January figures set
// and everything else zero.
func SingleLocationPL(location string, revenue, cogs, expenses float64) ledger.PLData {
	pl := ledger.NewPLData()
	e := pl[location]
	e.Revenue["Jan"] = revenue
	e.COGS["Jan"]["Clinical Supplies"] = cogs
	e.Expenses["Jan"]["Rent & Lease"] = expenses
	return pl
}

// AllMonths returns a fresh copy of the month catalog.
func AllMonths() []string {
	return append([]string(nil), constants.Months...)
}
