// Package adapters converts the nested ledger records to and from the flat
// monthly rows used by persistence.
package adapters

import (
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

// Entity types stored alongside each row.
const (
	EntityTypeLocation  = "location"
	EntityTypeCorporate = "corporate"
)

// PLRow is one entity's P&L for one month.
type PLRow struct {
	Entity       string
	EntityType   string
	Month        string
	Revenue      float64
	COGS         map[string]float64
	Expenses     map[string]float64
	OtherIncome  float64
	OtherExpense float64
}

// BudgetRow is one entity's budget for one month.
type BudgetRow struct {
	Entity   string
	Month    string
	Revenue  float64
	COGS     float64
	Expenses float64
}

// HeadcountRow is one location's roster.
type HeadcountRow struct {
	Location string
	Counts   map[string]int
}

// EntityType classifies an entity name.
func EntityType(entity string) string {
	if entity == constants.Corporate {
		return EntityTypeCorporate
	}
	return EntityTypeLocation
}

func entities() []string {
	return append(append([]string{}, constants.Locations...), constants.Corporate)
}

// PLToRows flattens pl into one row per entity and month, locations first in
// catalog order, then Corporate. Corporate rows always carry zero revenue and
// missing category maps become empty maps.
func PLToRows(pl ledger.PLData) []PLRow {
	rows := make([]PLRow, 0, len(entities())*len(constants.Months))
	for _, entity := range entities() {
		for _, month := range constants.Months {
			row := PLRow{
				Entity:     entity,
				EntityType: EntityType(entity),
				Month:      month,
				COGS:       map[string]float64{},
				Expenses:   map[string]float64{},
			}
			if e := pl[entity]; e != nil {
				if row.EntityType == EntityTypeLocation {
					row.Revenue = pl.Revenue(entity, month)
				}
				copyInto(row.COGS, e.COGS[month])
				copyInto(row.Expenses, e.Expenses[month])
				row.OtherIncome = pl.OtherIncome(entity, month)
				row.OtherExpense = pl.OtherExpense(entity, month)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// PLFromRows rebuilds a dataset from rows, starting from an empty one. A
// row's category maps replace the month's catalog zeros. Rows for unknown
// entities or months are ignored.
func PLFromRows(rows []PLRow) ledger.PLData {
	pl := ledger.NewPLData()
	for _, row := range rows {
		e := pl[row.Entity]
		if e == nil || !constants.IsMonth(row.Month) {
			continue
		}
		if row.EntityType == EntityTypeLocation && e.Revenue != nil {
			e.Revenue[row.Month] = row.Revenue
		}
		e.COGS[row.Month] = copyInto(map[string]float64{}, row.COGS)
		e.Expenses[row.Month] = copyInto(map[string]float64{}, row.Expenses)
		e.OtherIncome[row.Month] = row.OtherIncome
		e.OtherExpense[row.Month] = row.OtherExpense
	}
	return pl
}

// BudgetToRows flattens a budget in the same order as PLToRows.
func BudgetToRows(b ledger.BudgetData) []BudgetRow {
	rows := make([]BudgetRow, 0, len(entities())*len(constants.Months))
	for _, entity := range entities() {
		for _, month := range constants.Months {
			rows = append(rows, BudgetRow{
				Entity:   entity,
				Month:    month,
				Revenue:  b.Amount(ledger.BudgetRevenue, entity, month),
				COGS:     b.Amount(ledger.BudgetCOGS, entity, month),
				Expenses: b.Amount(ledger.BudgetExpenses, entity, month),
			})
		}
	}
	return rows
}

// BudgetFromRows rebuilds a budget from rows on top of an all-zero one.
func BudgetFromRows(rows []BudgetRow) ledger.BudgetData {
	b := ledger.NewBudget()
	for _, row := range rows {
		be := b[row.Entity]
		if be == nil || !constants.IsMonth(row.Month) {
			continue
		}
		be.Revenue[row.Month] = row.Revenue
		be.COGS[row.Month] = row.COGS
		be.Expenses[row.Month] = row.Expenses
	}
	return b
}

// HeadcountToRows lists every location of hc in catalog order. Roles missing
// from a location are written as zero.
func HeadcountToRows(hc ledger.HeadcountData) []HeadcountRow {
	rows := []HeadcountRow{}
	for _, loc := range constants.Locations {
		if _, ok := hc[loc]; !ok {
			continue
		}
		counts := make(map[string]int, len(constants.StaffRoles))
		for _, role := range constants.StaffRoles {
			counts[role] = hc.Count(loc, role)
		}
		rows = append(rows, HeadcountRow{Location: loc, Counts: counts})
	}
	return rows
}

// HeadcountFromRows rebuilds headcount from rows.
func HeadcountFromRows(rows []HeadcountRow) ledger.HeadcountData {
	hc := make(ledger.HeadcountData, len(rows))
	for _, row := range rows {
		counts := make(map[string]int, len(constants.StaffRoles))
		for _, role := range constants.StaffRoles {
			counts[role] = row.Counts[role]
		}
		hc[row.Location] = counts
	}
	return hc
}

func copyInto(dst, src map[string]float64) map[string]float64 {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
