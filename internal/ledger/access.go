package ledger

import "github.com/iwvelando/pnl-analysis/pkg/constants"

// Every accessor below is total: an absent entity, month, or category reads
// as zero. This is the single place that defines the zero-default contract.

// Revenue returns an entity's revenue for a month.
func (pl PLData) Revenue(entity, month string) float64 {
	if e := pl[entity]; e != nil {
		return e.Revenue[month]
	}
	return 0
}

// AmountOf returns one category amount for a month.
func (pl PLData) AmountOf(kind Kind, entity, month, category string) float64 {
	e := pl[entity]
	if e == nil {
		return 0
	}
	return e.section(kind)[month][category]
}

// OtherIncome returns an entity's other income for a month.
func (pl PLData) OtherIncome(entity, month string) float64 {
	if e := pl[entity]; e != nil {
		return e.OtherIncome[month]
	}
	return 0
}

// OtherExpense returns an entity's other expense for a month.
func (pl PLData) OtherExpense(entity, month string) float64 {
	if e := pl[entity]; e != nil {
		return e.OtherExpense[month]
	}
	return 0
}

// SumRevenue totals revenue over the months.
func (pl PLData) SumRevenue(entity string, months []string) float64 {
	total := 0.0
	for _, m := range months {
		total += pl.Revenue(entity, m)
	}
	return total
}

// SumCatalog totals a cost kind across its catalog categories over the
// months. Categories outside the catalog are not counted.
func (pl PLData) SumCatalog(kind Kind, entity string, months []string) float64 {
	total := 0.0
	for _, cat := range kind.Categories() {
		for _, m := range months {
			total += pl.AmountOf(kind, entity, m, cat)
		}
	}
	return total
}

// MonthTotal sums every category present for a month, catalog or not.
func (pl PLData) MonthTotal(kind Kind, entity, month string) float64 {
	e := pl[entity]
	if e == nil {
		return 0
	}
	total := 0.0
	for _, v := range e.section(kind)[month] {
		total += v
	}
	return total
}

// SumPresent totals MonthTotal over the months.
func (pl PLData) SumPresent(kind Kind, entity string, months []string) float64 {
	total := 0.0
	for _, m := range months {
		total += pl.MonthTotal(kind, entity, m)
	}
	return total
}

// SumOtherIncome totals other income over the months.
func (pl PLData) SumOtherIncome(entity string, months []string) float64 {
	total := 0.0
	for _, m := range months {
		total += pl.OtherIncome(entity, m)
	}
	return total
}

// SumOtherExpense totals other expense over the months.
func (pl PLData) SumOtherExpense(entity string, months []string) float64 {
	total := 0.0
	for _, m := range months {
		total += pl.OtherExpense(entity, m)
	}
	return total
}

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategoryBreakdown returns per-category totals over the months in catalog
// order, omitting categories that total zero.
func (pl PLData) CategoryBreakdown(kind Kind, entity string, months []string) []CategoryTotal {
	var out []CategoryTotal
	for _, cat := range kind.Categories() {
		total := 0.0
		for _, m := range months {
			total += pl.AmountOf(kind, entity, m, cat)
		}
		if total != 0 {
			out = append(out, CategoryTotal{Category: cat, Total: total})
		}
	}
	return out
}

// Clone returns a deep copy that shares no maps with pl.
func (pl PLData) Clone() PLData {
	if pl == nil {
		return nil
	}
	out := make(PLData, len(pl))
	for entity, e := range pl {
		out[entity] = e.Clone()
	}
	return out
}

// Clone returns a deep copy of the entity.
func (e *EntityPL) Clone() *EntityPL {
	if e == nil {
		return nil
	}
	return &EntityPL{
		Revenue:      e.Revenue.clone(),
		COGS:         e.COGS.clone(),
		Expenses:     e.Expenses.clone(),
		OtherIncome:  e.OtherIncome.clone(),
		OtherExpense: e.OtherExpense.clone(),
	}
}

// Section returns the categorized map for a kind.
func (e *EntityPL) Section(kind Kind) CategoryAmounts {
	return e.section(kind)
}

func (e *EntityPL) section(kind Kind) CategoryAmounts {
	if kind == KindCOGS {
		return e.COGS
	}
	return e.Expenses
}

func (m MonthAmounts) clone() MonthAmounts {
	if m == nil {
		return nil
	}
	out := make(MonthAmounts, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c CategoryAmounts) clone() CategoryAmounts {
	if c == nil {
		return nil
	}
	out := make(CategoryAmounts, len(c))
	for month, cats := range c {
		if cats == nil {
			out[month] = nil
			continue
		}
		inner := make(map[string]float64, len(cats))
		for k, v := range cats {
			inner[k] = v
		}
		out[month] = inner
	}
	return out
}

// Count returns the number of staff in a role at a location.
func (hc HeadcountData) Count(location, role string) int {
	return hc[location][role]
}

// Clinical returns the clinical headcount at a location.
func (hc HeadcountData) Clinical(location string) int {
	n := 0
	for _, role := range constants.ClinicalRoles {
		n += hc.Count(location, role)
	}
	return n
}

// Total returns clinical headcount plus front desk.
func (hc HeadcountData) Total(location string) int {
	return hc.Clinical(location) + hc.Count(location, constants.RoleFrontDesk)
}

// BudgetLine selects one of the three budgeted figures.
type BudgetLine string

const (
	BudgetRevenue  BudgetLine = "revenue"
	BudgetCOGS     BudgetLine = "cogs"
	BudgetExpenses BudgetLine = "expenses"
)

// Amount returns one budget figure.
func (b BudgetData) Amount(line BudgetLine, entity, month string) float64 {
	be := b[entity]
	if be == nil {
		return 0
	}
	switch line {
	case BudgetRevenue:
		return be.Revenue[month]
	case BudgetCOGS:
		return be.COGS[month]
	case BudgetExpenses:
		return be.Expenses[month]
	}
	return 0
}

// Sum totals a budget figure over the months.
func (b BudgetData) Sum(line BudgetLine, entity string, months []string) float64 {
	total := 0.0
	for _, m := range months {
		total += b.Amount(line, entity, m)
	}
	return total
}
