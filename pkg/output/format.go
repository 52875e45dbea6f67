// Package output renders a computed report for people and for other tools.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/internal/budget"
	"github.com/iwvelando/pnl-analysis/internal/payroll"
	"github.com/iwvelando/pnl-analysis/internal/report"
	"github.com/iwvelando/pnl-analysis/internal/yoy"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Favorable reports whether a variance is good news: revenue above budget,
// or costs at or below it.
func Favorable(row budget.VarianceRow) bool {
	if row.IsRevenue() {
		return row.Variance >= 0
	}
	return row.Variance <= 0
}

// Write renders rep in the named format. XLSX is written as a workbook to w.
func Write(w io.Writer, outputFormat string, rep *report.Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, rep)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, rep)
	case constants.OutputFormatJSON:
		return JSONFormat(w, rep)
	case constants.OutputFormatXLSX:
		return XLSXFormat(w, rep)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

func monthLabel(months []string) string {
	switch {
	case len(months) == 0:
		return "no months"
	case len(months) == len(constants.Months):
		return "full year"
	default:
		return strings.Join(months, ",")
	}
}

// payrollRows returns the location rows followed by the total row.
func payrollRows(rep *report.Report) []payroll.SummaryRow {
	rows := make([]payroll.SummaryRow, 0, len(rep.Payroll)+1)
	rows = append(rows, rep.Payroll...)
	return append(rows, rep.PayrollTotal)
}

func yoyMetric(name string) analysis.Metric {
	for _, c := range yoy.Comparisons {
		if c.Name == name {
			return c.Metric
		}
	}
	return analysis.MetricRevenue
}

func metricText(m analysis.Metric, v float64) string {
	if m.IsPercent() {
		return format.Percent(v)
	}
	return format.Currency(v)
}

// PrettyFormat outputs human-readable tables.
func PrettyFormat(w io.Writer, rep *report.Report) {
	p := message.NewPrinter(language.English)

	_, _ = fmt.Fprintf(w, "--- P&L analysis for %d (%s) ---\n", rep.Year, monthLabel(rep.Months))
	_, _ = fmt.Fprintf(w, "Revenue %s | Net Income (Direct) %s | Net Income (Allocated) %s | Clinicians %d\n\n",
		format.Currency(rep.Summary.Revenue), format.Currency(rep.Summary.NIDirect),
		format.Currency(rep.Summary.NIAllocated), rep.Summary.ClinicalHC)

	_, _ = fmt.Fprintf(w, "--- Location scorecard ---\n")
	_, _ = fmt.Fprintf(w, "Rank | Location       | Revenue      | GM%%   | NI%% (Direct) | NI%% (Alloc) | Rev/Clinician | Score | Grade\n")
	_, _ = fmt.Fprintf(w, "____ | ______________ | ____________ | _____ | ____________ | ___________ | _____________ | _____ | _____\n")
	if rep.Analysis != nil {
		n := len(rep.Analysis.SortedLocs)
		for i, loc := range rep.Analysis.SortedLocs {
			lr := rep.Analysis.Results[loc]
			composite := rep.Analysis.Composite[loc]
			_, _ = p.Fprintf(w, "%4d | %-14s | %12s | %5s | %12s | %11s | %13s | %5.2f | %s\n",
				i+1, loc, format.Currency(lr.Revenue), format.Percent(lr.GMPct), format.Percent(lr.NIPctD),
				format.Percent(lr.NIPctA), format.Currency(lr.RevPerClin), composite, analysis.Grade(composite, n))
		}
	}

	_, _ = fmt.Fprintf(w, "\n--- Budget variance ---\n")
	_, _ = fmt.Fprintf(w, "Location       | Metric   | Budget       | Actual       | Variance     | Var%%    | Status\n")
	_, _ = fmt.Fprintf(w, "______________ | ________ | ____________ | ____________ | ____________ | _______ | ______\n")
	for _, row := range rep.Variance {
		flag := "unfavorable"
		if Favorable(row) {
			flag = "favorable"
		}
		_, _ = fmt.Fprintf(w, "%-14s | %-8s | %12s | %12s | %12s | %7s | %s\n",
			row.Location, row.Metric, format.Currency(row.Budget), format.Currency(row.Actual),
			format.SignedCurrency(row.Variance), format.Percent(row.VariancePct), flag)
	}

	_, _ = fmt.Fprintf(w, "\n--- Payroll ---\n")
	_, _ = fmt.Fprintf(w, "Location       | Employees | Gross Pay    | Taxes        | Labor Cost\n")
	_, _ = fmt.Fprintf(w, "______________ | _________ | ____________ | ____________ | __________\n")
	for _, row := range payrollRows(rep) {
		_, _ = fmt.Fprintf(w, "%-14s | %9d | %12s | %12s | %s\n", row.Location, row.TotalEmployees,
			format.Currency(row.TotalGrossPay), format.Currency(row.EstimatedTaxes), format.Currency(row.TotalLaborCost))
	}

	if len(rep.YoY) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Year over year ---\n")
		_, _ = fmt.Fprintf(w, "Location       | Metric        | Prior        | Current      | Change\n")
		_, _ = fmt.Fprintf(w, "______________ | _____________ | ____________ | ____________ | ______\n")
		for _, row := range rep.YoY {
			m := yoyMetric(row.Metric)
			_, _ = fmt.Fprintf(w, "%-14s | %-13s | %12s | %12s | %s\n", row.Location, row.Metric,
				metricText(m, row.Prior), metricText(m, row.Current), format.Percent(row.ChangePct))
		}
	}

	if len(rep.Alerts) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Alerts ---\n")
		for _, a := range rep.Alerts {
			_, _ = fmt.Fprintf(w, "%s\n", a.Message)
		}
	}

	if len(rep.Scenarios) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Scenarios ---\n")
		for _, s := range rep.Scenarios {
			_, _ = fmt.Fprintf(w, "%s: revenue %s, net income %s (%s vs. actual)\n", s.Scenario.Name,
				format.Currency(s.Summary.Revenue), format.Currency(s.Summary.NIDirect),
				format.SignedCurrency(s.Summary.NIDirect-rep.Summary.NIDirect))
		}
	}

	if len(rep.Warnings) > 0 {
		_, _ = fmt.Fprintf(w, "\n--- Warnings ---\n")
		for _, warning := range rep.Warnings {
			_, _ = fmt.Fprintf(w, "%s\n", warning)
		}
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// CsvFormat outputs one long-format table with the columns section,
// location, metric and value. Amounts carry two decimals and percentages
// stay fractions.
func CsvFormat(w io.Writer, rep *report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "location", "metric", "value"}); err != nil {
		return err
	}

	if rep.Analysis != nil {
		for _, loc := range rep.Analysis.SortedLocs {
			lr := rep.Analysis.Results[loc]
			for _, m := range analysis.AllMetrics() {
				_ = cw.Write([]string{"scorecard", loc, m.String(), strconv.FormatFloat(m.Value(lr), 'f', -1, 64)})
			}
			_ = cw.Write([]string{"scorecard", loc, "composite", strconv.FormatFloat(rep.Analysis.Composite[loc], 'f', -1, 64)})
		}
	}
	for _, row := range rep.Variance {
		_ = cw.Write([]string{"variance", row.Location, row.Metric + " budget", num(row.Budget)})
		_ = cw.Write([]string{"variance", row.Location, row.Metric + " actual", num(row.Actual)})
		_ = cw.Write([]string{"variance", row.Location, row.Metric + " variance", num(row.Variance)})
	}
	for _, row := range payrollRows(rep) {
		_ = cw.Write([]string{"payroll", row.Location, "employees", strconv.Itoa(row.TotalEmployees)})
		_ = cw.Write([]string{"payroll", row.Location, "gross pay", num(row.TotalGrossPay)})
		_ = cw.Write([]string{"payroll", row.Location, "labor cost", num(row.TotalLaborCost)})
	}
	for _, row := range rep.YoY {
		_ = cw.Write([]string{"yoy", row.Location, row.Metric + " change", strconv.FormatFloat(row.Change, 'f', -1, 64)})
	}
	for _, a := range rep.Alerts {
		_ = cw.Write([]string{"alert", a.Location, a.Config.MetricType, strconv.FormatFloat(a.ActualValue, 'f', -1, 64)})
	}
	for _, s := range rep.Scenarios {
		_ = cw.Write([]string{"scenario", s.Scenario.Name, "net income", num(s.Summary.NIDirect)})
	}

	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the whole report as indented JSON.
func JSONFormat(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
