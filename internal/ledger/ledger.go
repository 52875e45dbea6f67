// Package ledger defines the raw monthly profit-and-loss records consumed by
// the analysis engine, together with builders that pre-populate every cell
// and accessors that read missing cells as zero.
package ledger

import (
	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

// Kind selects one of the categorized cost sections of an entity.
type Kind string

const (
	KindCOGS     Kind = "cogs"
	KindExpenses Kind = "expenses"
)

// Categories returns the catalog for a cost kind.
func (k Kind) Categories() []string {
	if k == KindCOGS {
		return constants.COGSCategories
	}
	return constants.ExpenseCategories
}

// MonthAmounts maps month -> amount.
type MonthAmounts map[string]float64

// CategoryAmounts maps month -> category -> amount.
type CategoryAmounts map[string]map[string]float64

// EntityPL is one entity's monthly P&L. Corporate carries no revenue.
type EntityPL struct {
	Revenue      MonthAmounts    `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	COGS         CategoryAmounts `json:"cogs" yaml:"cogs"`
	Expenses     CategoryAmounts `json:"expenses" yaml:"expenses"`
	OtherIncome  MonthAmounts    `json:"otherIncome" yaml:"otherIncome"`
	OtherExpense MonthAmounts    `json:"otherExpense" yaml:"otherExpense"`
}

// PLData maps entity name (a location or Corporate) to its P&L.
type PLData map[string]*EntityPL

// HeadcountData maps location -> role -> count.
type HeadcountData map[string]map[string]int

// BudgetEntity holds single aggregate budget figures per month. Unlike
// actuals, budgets are not broken down by category.
type BudgetEntity struct {
	Revenue  MonthAmounts `json:"revenue" yaml:"revenue"`
	COGS     MonthAmounts `json:"cogs" yaml:"cogs"`
	Expenses MonthAmounts `json:"expenses" yaml:"expenses"`
}

// BudgetData maps entity -> budget.
type BudgetData map[string]*BudgetEntity

// NewEntityPL returns an entity with every month and catalog category set to
// zero. Revenue is only populated when withRevenue is true.
func NewEntityPL(withRevenue bool) *EntityPL {
	e := &EntityPL{
		COGS:         make(CategoryAmounts, len(constants.Months)),
		Expenses:     make(CategoryAmounts, len(constants.Months)),
		OtherIncome:  make(MonthAmounts, len(constants.Months)),
		OtherExpense: make(MonthAmounts, len(constants.Months)),
	}
	if withRevenue {
		e.Revenue = make(MonthAmounts, len(constants.Months))
	}
	for _, m := range constants.Months {
		if withRevenue {
			e.Revenue[m] = 0
		}
		e.COGS[m] = zeroCategories(constants.COGSCategories)
		e.Expenses[m] = zeroCategories(constants.ExpenseCategories)
		e.OtherIncome[m] = 0
		e.OtherExpense[m] = 0
	}
	return e
}

// NewPLData builds an empty dataset: every location and Corporate, every
// month, every catalog category, all zero.
func NewPLData() PLData {
	pl := make(PLData, len(constants.Locations)+1)
	for _, loc := range constants.Locations {
		pl[loc] = NewEntityPL(true)
	}
	pl[constants.Corporate] = NewEntityPL(false)
	return pl
}

// NewBudget builds an all-zero budget for every location and Corporate.
func NewBudget() BudgetData {
	b := make(BudgetData, len(constants.Locations)+1)
	for _, entity := range append(append([]string{}, constants.Locations...), constants.Corporate) {
		be := &BudgetEntity{
			Revenue:  make(MonthAmounts, len(constants.Months)),
			COGS:     make(MonthAmounts, len(constants.Months)),
			Expenses: make(MonthAmounts, len(constants.Months)),
		}
		for _, m := range constants.Months {
			be.Revenue[m] = 0
			be.COGS[m] = 0
			be.Expenses[m] = 0
		}
		b[entity] = be
	}
	return b
}

// DefaultHeadcount returns a copy of the default roster.
func DefaultHeadcount() HeadcountData {
	hc := make(HeadcountData, len(constants.DefaultHeadcount))
	for loc, roles := range constants.DefaultHeadcount {
		hc[loc] = make(map[string]int, len(roles))
		for role, n := range roles {
			hc[loc][role] = n
		}
	}
	return hc
}

func zeroCategories(categories []string) map[string]float64 {
	cats := make(map[string]float64, len(categories))
	for _, c := range categories {
		cats[c] = 0
	}
	return cats
}
