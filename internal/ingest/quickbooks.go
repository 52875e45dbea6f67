// Package ingest maps a QuickBooks profit-and-loss CSV export onto the P&L
// record shape for a single location.
//
// Matching is heuristic: month columns are found by name, sections by
// keyword, and category rows by fuzzy label comparison against the catalogs.
// Rows that cannot be placed are reported back rather than guessed.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/datetime"
	"github.com/iwvelando/pnl-analysis/pkg/mathutil"
	"github.com/shopspring/decimal"
)

const (
	minRows         = 3
	headerScanRows  = 10
	minMonthColumns = 3
)

// Error messages returned in Result.Error.
const (
	ErrTooShort      = "CSV appears to be empty or too short."
	ErrNoMonths      = "Could not find month columns in the CSV header. Make sure the file is a QuickBooks P&L export."
	ErrNoMatchedRows = "No matching data rows found. Check that the CSV is a standard QuickBooks P&L export."
)

// Result reports the outcome of an import. Data is only set on success.
type Result struct {
	Success       bool          `json:"success"`
	Data          ledger.PLData `json:"data,omitempty"`
	Warnings      []string      `json:"warnings"`
	Error         string        `json:"error,omitempty"`
	MatchedRows   int           `json:"matchedRows"`
	UnmatchedRows []string      `json:"unmatchedRows"`
}

func failure(msg string, warnings []string, matched int, unmatched []string) Result {
	return Result{Success: false, Error: msg, Warnings: warnings, MatchedRows: matched, UnmatchedRows: unmatched}
}

type section int

const (
	sectionUnknown section = iota
	sectionIncome
	sectionCOGS
	sectionExpense
	sectionOther
)

// ParseQuickBooks reads an export for location into an otherwise empty
// dataset. Income rows add to revenue, COGS and expense rows add their
// absolute value to the matched category, and other income/expense rows
// split by sign.
func ParseQuickBooks(r io.Reader, location string) Result {
	warnings := []string{}
	unmatched := []string{}

	if !constants.IsLocation(location) && location != constants.Corporate {
		return failure(fmt.Sprintf("Unknown location %q.", location), warnings, 0, unmatched)
	}

	rows, err := readRows(r)
	if err != nil {
		return failure(fmt.Sprintf("Parse error: %v", err), warnings, 0, unmatched)
	}
	if len(rows) < minRows {
		return failure(ErrTooShort, warnings, 0, unmatched)
	}

	headerIdx, columns := findHeader(rows)
	if headerIdx < 0 {
		return failure(ErrNoMonths, warnings, 0, unmatched)
	}
	warnings = append(warnings, fmt.Sprintf("Found %d month columns starting at row %d", len(columns), headerIdx+1))

	data := ledger.NewPLData()
	entity := data[location]
	current := sectionUnknown
	matched := 0

	for _, row := range rows[headerIdx+1:] {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		label := row[0]
		lower := strings.ToLower(label)

		// Subtotal rows never start a section.
		if strings.HasPrefix(lower, "total") || strings.HasPrefix(lower, "net") || strings.HasPrefix(lower, "gross") {
			continue
		}
		if next, isHeader, skip := classify(lower); isHeader {
			if !skip {
				current = next
			}
			continue
		}

		values, ok := monthValues(row, columns)
		if !ok {
			continue
		}

		switch current {
		case sectionIncome:
			if entity.Revenue == nil {
				unmatched = append(unmatched, "[Income] "+label)
				continue
			}
			for month, v := range values {
				entity.Revenue[month] = add(entity.Revenue[month], v)
			}
			matched++
		case sectionCOGS:
			if addCategory(entity.COGS, ledger.KindCOGS, label, values) {
				matched++
			} else {
				unmatched = append(unmatched, "[COGS] "+label)
			}
		case sectionExpense:
			if addCategory(entity.Expenses, ledger.KindExpenses, label, values) {
				matched++
			} else {
				unmatched = append(unmatched, "[Expense] "+label)
			}
		case sectionOther:
			for month, v := range values {
				if v.IsNegative() {
					entity.OtherExpense[month] = add(entity.OtherExpense[month], v.Abs())
				} else {
					entity.OtherIncome[month] = add(entity.OtherIncome[month], v)
				}
			}
			matched++
		}
	}

	if matched == 0 {
		return failure(ErrNoMatchedRows, warnings, matched, unmatched)
	}
	if len(unmatched) > 0 {
		warnings = append(warnings, fmt.Sprintf("%d categories were not auto-matched and may need manual entry", len(unmatched)))
	}

	return Result{
		Success:       true,
		Data:          data,
		Warnings:      warnings,
		MatchedRows:   matched,
		UnmatchedRows: unmatched,
	}
}

func readRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if blank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}

// findHeader returns the first row among the leading rows with enough
// month-named columns, and its column -> month map.
func findHeader(rows [][]string) (int, map[int]string) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		columns := make(map[int]string)
		for col, cell := range rows[i] {
			if month := datetime.DetectMonth(cell); month != "" {
				columns[col] = month
			}
		}
		if len(columns) >= minMonthColumns {
			return i, columns
		}
	}
	return -1, nil
}

// classify recognizes section header rows. skip is set for income totals,
// which look like headers but must not change the section.
func classify(lower string) (next section, isHeader, skip bool) {
	switch {
	case strings.Contains(lower, "income") || strings.Contains(lower, "revenue") || strings.Contains(lower, "sales"):
		if strings.Contains(lower, "other income") {
			return sectionOther, true, false
		}
		if strings.Contains(lower, "total") {
			return sectionUnknown, true, true
		}
		return sectionIncome, true, false
	case strings.Contains(lower, "cost of") || strings.Contains(lower, "cogs"):
		return sectionCOGS, true, false
	case strings.Contains(lower, "other expense"):
		return sectionOther, true, false
	case strings.Contains(lower, "expense") || strings.Contains(lower, "operating"):
		return sectionExpense, true, false
	}
	return sectionUnknown, false, false
}

// monthValues parses the month cells of a row. ok is false when every value
// is zero.
func monthValues(row []string, columns map[int]string) (map[string]decimal.Decimal, bool) {
	cols := make([]int, 0, len(columns))
	for c := range columns {
		cols = append(cols, c)
	}
	sort.Ints(cols)

	values := make(map[string]decimal.Decimal, len(columns))
	nonZero := false
	for _, c := range cols {
		cell := ""
		if c < len(row) {
			cell = row[c]
		}
		v := mathutil.ParseMoney(cell)
		if !v.IsZero() {
			nonZero = true
		}
		values[columns[c]] = v
	}
	return values, nonZero
}

func addCategory(dst ledger.CategoryAmounts, kind ledger.Kind, label string, values map[string]decimal.Decimal) bool {
	cat, ok := MatchCategory(label, kind)
	if !ok {
		return false
	}
	for month, v := range values {
		if dst[month] == nil {
			dst[month] = make(map[string]float64)
		}
		dst[month][cat] = add(dst[month][cat], v.Abs())
	}
	return true
}

func add(cur float64, v decimal.Decimal) float64 {
	return decimal.NewFromFloat(cur).Add(v).InexactFloat64()
}
