package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

// DatasetWarnings reports the parts of a dataset the analysis will ignore or
// treat specially: unknown entities and months, categories outside the
// catalogs, Corporate revenue, negative amounts, and earning locations
// without clinicians.
func DatasetWarnings(pl ledger.PLData, hc ledger.HeadcountData) []string {
	var warnings []string

	entities := make([]string, 0, len(pl))
	for entity := range pl {
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	for _, entity := range entities {
		if entity != constants.Corporate && !constants.IsLocation(entity) {
			warnings = append(warnings, fmt.Sprintf("Entity '%s' is not a known location and will be ignored", entity))
			continue
		}
		e := pl[entity]
		if e == nil {
			continue
		}
		if entity == constants.Corporate && e.Revenue != nil {
			for _, m := range constants.Months {
				if e.Revenue[m] != 0 {
					warnings = append(warnings, "Corporate revenue is ignored by the analysis")
					break
				}
			}
		}
		warnings = append(warnings, monthWarnings(entity, e)...)
		warnings = append(warnings, categoryWarnings(entity, ledger.KindCOGS, e.COGS)...)
		warnings = append(warnings, categoryWarnings(entity, ledger.KindExpenses, e.Expenses)...)
	}

	for _, loc := range constants.Locations {
		if pl.SumRevenue(loc, constants.Months) > 0 && hc.Clinical(loc) == 0 {
			warnings = append(warnings, fmt.Sprintf("Location '%s' has revenue but no clinical headcount; per-clinician metrics will be zero", loc))
		}
	}

	return warnings
}

func monthWarnings(entity string, e *ledger.EntityPL) []string {
	var warnings []string
	seen := map[string]bool{}
	check := func(month string) {
		if !constants.IsMonth(month) && !seen[month] {
			seen[month] = true
			warnings = append(warnings, fmt.Sprintf("Entity '%s' has data for unknown month '%s'", entity, month))
		}
	}
	for m := range e.Revenue {
		check(m)
	}
	for m := range e.COGS {
		check(m)
	}
	for m := range e.Expenses {
		check(m)
	}
	sort.Strings(warnings)
	return warnings
}

// categoryWarnings lists non-catalog categories carrying amounts, and
// negative catalog amounts.
func categoryWarnings(entity string, kind ledger.Kind, section ledger.CategoryAmounts) []string {
	catalog := make(map[string]bool, len(kind.Categories()))
	for _, c := range kind.Categories() {
		catalog[c] = true
	}

	unknown := map[string]bool{}
	negative := map[string]bool{}
	for _, cats := range section {
		for cat, v := range cats {
			if !catalog[cat] && v != 0 {
				unknown[cat] = true
			}
			if v < 0 {
				negative[cat] = true
			}
		}
	}

	var warnings []string
	for _, cat := range sortedKeys(unknown) {
		warnings = append(warnings, fmt.Sprintf("Entity '%s' %s category '%s' is not in the catalog and is excluded from the scorecard",
			entity, kind, cat))
	}
	for _, cat := range sortedKeys(negative) {
		warnings = append(warnings, fmt.Sprintf("Entity '%s' %s category '%s' has negative amounts", entity, kind, cat))
	}
	return warnings
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
