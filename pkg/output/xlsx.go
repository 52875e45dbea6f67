package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/internal/report"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names, in tab order.
const (
	SheetSummary   = "Summary"
	SheetScorecard = "Scorecard"
	SheetVariance  = "Variance"
	SheetPayroll   = "Payroll"
)

// XLSXFormat writes the report as a workbook with Summary, Scorecard,
// Variance and Payroll sheets. Amounts are numeric cells and percentages
// stay fractions.
func XLSXFormat(w io.Writer, rep *report.Report) error {
	f, err := BuildWorkbook(rep)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook assembles the report workbook in memory.
func BuildWorkbook(rep *report.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetScorecard, SheetVariance, SheetPayroll} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	sheets := map[string][][]interface{}{
		SheetSummary:   summaryRows(rep),
		SheetScorecard: scorecardRows(rep),
		SheetVariance:  varianceRows(rep),
		SheetPayroll:   payrollSheetRows(rep),
	}
	for name, rows := range sheets {
		if err := writeRows(f, name, rows); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(rep *report.Report) [][]interface{} {
	rows := [][]interface{}{
		{"Year", rep.Year},
		{"Months", monthLabel(rep.Months)},
		{"Revenue", rep.Summary.Revenue},
		{"Net Income (Direct)", rep.Summary.NIDirect},
		{"Net Income (Allocated)", rep.Summary.NIAllocated},
		{"Clinical Headcount", rep.Summary.ClinicalHC},
		{"Payroll Labor Cost", rep.PayrollTotal.TotalLaborCost},
	}
	for _, a := range rep.Alerts {
		rows = append(rows, []interface{}{"Alert", a.Message})
	}
	for _, s := range rep.Scenarios {
		rows = append(rows, []interface{}{"Scenario " + s.Scenario.Name, s.Summary.NIDirect})
	}
	for _, warning := range rep.Warnings {
		rows = append(rows, []interface{}{"Warning", warning})
	}
	return rows
}

func scorecardRows(rep *report.Report) [][]interface{} {
	metrics := analysis.AllMetrics()
	header := []interface{}{"Rank", "Location"}
	for _, m := range metrics {
		header = append(header, m.Label())
	}
	header = append(header, "Composite", "Grade")

	rows := [][]interface{}{header}
	if rep.Analysis == nil {
		return rows
	}
	n := len(rep.Analysis.SortedLocs)
	for i, loc := range rep.Analysis.SortedLocs {
		lr := rep.Analysis.Results[loc]
		composite := rep.Analysis.Composite[loc]
		row := []interface{}{i + 1, loc}
		for _, m := range metrics {
			row = append(row, m.Value(lr))
		}
		row = append(row, composite, analysis.Grade(composite, n))
		rows = append(rows, row)
	}
	return rows
}

func varianceRows(rep *report.Report) [][]interface{} {
	rows := [][]interface{}{{"Location", "Metric", "Budget", "Actual", "Variance", "Variance %", "Favorable"}}
	for _, r := range rep.Variance {
		rows = append(rows, []interface{}{r.Location, r.Metric, r.Budget, r.Actual, r.Variance, r.VariancePct, Favorable(r)})
	}
	return rows
}

func payrollSheetRows(rep *report.Report) [][]interface{} {
	rows := [][]interface{}{{"Location", "Employees", "Regular Pay", "Overtime Pay", "Gross Pay", "Estimated Taxes", "Labor Cost"}}
	for _, r := range payrollRows(rep) {
		rows = append(rows, []interface{}{r.Location, r.TotalEmployees, r.TotalRegularPay, r.TotalOvertimePay,
			r.TotalGrossPay, r.EstimatedTaxes, r.TotalLaborCost})
	}
	return rows
}
