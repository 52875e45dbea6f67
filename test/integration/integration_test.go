package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/pnl-analysis/internal/budget"
	"github.com/iwvelando/pnl-analysis/internal/config"
	"github.com/iwvelando/pnl-analysis/internal/report"
	"github.com/iwvelando/pnl-analysis/internal/store"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/output"
	"github.com/iwvelando/pnl-analysis/pkg/testutil"
	"go.uber.org/zap"
)

// buildReport loads the sample configuration and dataset exactly as main()
// does and computes the report.
func buildReport(t testing.TB) (*config.Configuration, *report.Report) {
	t.Helper()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	months, err := conf.ReportMonths()
	if err != nil {
		t.Fatalf("ReportMonths() error = %v", err)
	}

	src, err := store.OpenFile(conf.Dataset.Path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	ds, err := report.Load(context.Background(), src, conf.Report.UserID, conf.Report.Year, conf.Report.PriorYear)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rep, err := report.NewRunner(nil, zap.NewNop()).Run(context.Background(), ds, months)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return conf, rep
}

// TestMainIntegrationBaseline checks the sample dataset against hand-computed
// figures for January through June.
func TestMainIntegrationBaseline(t *testing.T) {
	_, rep := buildReport(t)

	if rep.Year != 2024 {
		t.Errorf("Year = %d, expected 2024", rep.Year)
	}
	if len(rep.Months) != 6 || rep.Months[0] != "Jan" || rep.Months[5] != "Jun" {
		t.Errorf("Months = %v, expected Jan through Jun", rep.Months)
	}

	baselineChecks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"total revenue", rep.Summary.Revenue, 250000},
		{"total NI direct", rep.Summary.NIDirect, 141000},
		{"total NI allocated", rep.Summary.NIAllocated, 116000},
		{"Newport NI direct", rep.Analysis.Results["Newport"].NID, 121000},
		{"Newport NI allocated", rep.Analysis.Results["Newport"].NIA, 101000},
		{"Newport revenue share", rep.Analysis.Results["Newport"].RevShare, 0.8},
		{"Rogersville NI direct", rep.Analysis.Results["Rogersville"].NID, 20000},
		{"Rogersville NI allocated", rep.Analysis.Results["Rogersville"].NIA, 15000},
		{"Rogersville NI% direct", rep.Analysis.Results["Rogersville"].NIPctD, 0.4},
		{"corporate expenses", rep.Analysis.CorpExp, 25000},
	}
	for _, check := range baselineChecks {
		if !testutil.Close(check.got, check.expected) {
			t.Errorf("%s = %.2f, expected %.2f", check.name, check.got, check.expected)
		}
	}

	clinical := 0
	for _, loc := range constants.Locations {
		clinical += rep.Analysis.Results[loc].ClinHC
	}
	if rep.Summary.ClinicalHC != clinical || clinical == 0 {
		t.Errorf("ClinicalHC = %d, expected %d from the default roster", rep.Summary.ClinicalHC, clinical)
	}

	if rep.Analysis.SortedLocs[0] != "Newport" {
		t.Errorf("Top location = %s, expected Newport", rep.Analysis.SortedLocs[0])
	}
}

// TestIntegrationViews checks every derived view of the sample report.
func TestIntegrationViews(t *testing.T) {
	_, rep := buildReport(t)

	t.Run("Variance", func(t *testing.T) {
		if len(rep.Variance) != len(constants.Locations)*3 {
			t.Fatalf("len(Variance) = %d, expected %d", len(rep.Variance), len(constants.Locations)*3)
		}
		found := 0
		for _, row := range rep.Variance {
			if row.Location != "Newport" {
				continue
			}
			switch row.Metric {
			case budget.MetricRevenue:
				found++
				if !testutil.Close(row.Variance, 20000) || !output.Favorable(row) {
					t.Errorf("Newport revenue variance = %.2f favorable=%v, expected 20000 favorable", row.Variance, output.Favorable(row))
				}
			case budget.MetricCOGS:
				found++
				if !testutil.Close(row.Variance, 10000) || output.Favorable(row) {
					t.Errorf("Newport COGS variance = %.2f favorable=%v, expected 10000 unfavorable", row.Variance, output.Favorable(row))
				}
			}
		}
		if found != 2 {
			t.Errorf("found %d Newport variance rows, expected 2", found)
		}
	})

	t.Run("Payroll", func(t *testing.T) {
		// e1: 160h at $20 plus 10h overtime in Jan; Aug hours fall outside
		// the selection. e2: six months of a $96,000 salary. e3 is inactive.
		if rep.PayrollTotal.TotalEmployees != 2 {
			t.Errorf("TotalEmployees = %d, expected 2", rep.PayrollTotal.TotalEmployees)
		}
		if !testutil.Close(rep.PayrollTotal.TotalGrossPay, 51500) {
			t.Errorf("TotalGrossPay = %.2f, expected 51500", rep.PayrollTotal.TotalGrossPay)
		}
		if !testutil.Close(rep.PayrollTotal.TotalLaborCost, 62830) {
			t.Errorf("TotalLaborCost = %.2f, expected 62830", rep.PayrollTotal.TotalLaborCost)
		}
	})

	t.Run("YearOverYear", func(t *testing.T) {
		if len(rep.YoY) == 0 {
			t.Fatalf("expected year-over-year rows")
		}
		for _, row := range rep.YoY {
			if row.Location == "Newport" && row.Metric == "Revenue" {
				if !testutil.Close(row.Change, 40000) || !testutil.Close(row.ChangePct, 0.25) {
					t.Errorf("Newport revenue change = %.2f (%.4f), expected 40000 (0.25)", row.Change, row.ChangePct)
				}
				return
			}
		}
		t.Errorf("no Newport revenue comparison found")
	})

	t.Run("Alerts", func(t *testing.T) {
		if len(rep.Alerts) != 1 {
			t.Fatalf("len(Alerts) = %d, expected 1", len(rep.Alerts))
		}
		if rep.Alerts[0].Location != "Rogersville" {
			t.Errorf("alert location = %s, expected Rogersville", rep.Alerts[0].Location)
		}
	})

	t.Run("Scenarios", func(t *testing.T) {
		if len(rep.Scenarios) != 1 {
			t.Fatalf("len(Scenarios) = %d, expected 1", len(rep.Scenarios))
		}
		s := rep.Scenarios[0]
		if s.Scenario.Name != "Newport growth" {
			t.Errorf("scenario name = %s, expected Newport growth", s.Scenario.Name)
		}
		if !testutil.Close(s.Summary.Revenue, 270000) {
			t.Errorf("scenario revenue = %.2f, expected 270000", s.Summary.Revenue)
		}
		if !testutil.Close(rep.Summary.Revenue, 250000) {
			t.Errorf("baseline revenue changed to %.2f after projection", rep.Summary.Revenue)
		}
	})
}

// TestCSVOutputFormat checks the configured csv output end to end.
func TestCSVOutputFormat(t *testing.T) {
	conf, rep := buildReport(t)

	var buf bytes.Buffer
	if err := output.Write(&buf, conf.Output.Format, rep); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(records) < 2 {
		t.Fatalf("expected header and data rows, got %d records", len(records))
	}
	if strings.Join(records[0], ",") != "section,location,metric,value" {
		t.Errorf("header = %v", records[0])
	}

	sections := make(map[string]int)
	var newportRevenue string
	for _, rec := range records[1:] {
		sections[rec[0]]++
		if rec[0] == "scorecard" && rec[1] == "Newport" && rec[2] == "revenue" {
			newportRevenue = rec[3]
		}
	}
	if newportRevenue != "200000" {
		t.Errorf("Newport scorecard revenue = %q, expected 200000", newportRevenue)
	}
	for _, section := range []string{"scorecard", "variance", "payroll", "yoy", "alert", "scenario"} {
		if sections[section] == 0 {
			t.Errorf("missing %s section", section)
		}
	}
}

// TestPrettyOutputFormat checks the pretty output renders every section.
func TestPrettyOutputFormat(t *testing.T) {
	_, rep := buildReport(t)

	var buf bytes.Buffer
	if err := output.Write(&buf, constants.OutputFormatPretty, rep); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"--- P&L analysis for 2024 (Jan,Feb,Mar,Apr,May,Jun) ---",
		"--- Location scorecard ---",
		"--- Budget variance ---",
		"--- Payroll ---",
		"--- Year over year ---",
		"--- Alerts ---",
		"--- Scenarios ---",
		"Newport growth",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pretty output missing %q", want)
		}
	}
}

// TestJSONOutputFormat checks the json output decodes back into a report.
func TestJSONOutputFormat(t *testing.T) {
	_, rep := buildReport(t)

	var buf bytes.Buffer
	if err := output.Write(&buf, constants.OutputFormatJSON, rep); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded report.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode json: %v", err)
	}
	if !testutil.Close(decoded.Summary.NIAllocated, rep.Summary.NIAllocated) {
		t.Errorf("decoded NIAllocated = %.2f, expected %.2f", decoded.Summary.NIAllocated, rep.Summary.NIAllocated)
	}
	if len(decoded.Scenarios) != 1 {
		t.Errorf("decoded %d scenarios, expected 1", len(decoded.Scenarios))
	}
}

// TestConfigurationValidation checks the sample configuration is clean and
// that common mistakes surface as warnings.
func TestConfigurationValidation(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	tests := []struct {
		name   string
		mutate func(c *config.Configuration)
	}{
		{"Missing dataset path", func(c *config.Configuration) { c.Dataset.Path = "" }},
		{"Postgres without DSN", func(c *config.Configuration) { c.Dataset.Source = constants.DatasetSourcePostgres }},
		{"Prior year not earlier", func(c *config.Configuration) { c.Report.PriorYear = c.Report.Year }},
		{"Bad months", func(c *config.Configuration) { c.Report.Months = []string{"Smarch"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *conf
			tt.mutate(&c)
			if len(c.ValidateConfiguration()) == 0 {
				t.Errorf("expected a warning")
			}
		})
	}
}

// TestDataConsistency checks that repeated runs give identical results.
func TestDataConsistency(t *testing.T) {
	_, first := buildReport(t)
	for i := 0; i < 3; i++ {
		_, again := buildReport(t)
		if !testutil.Close(again.Summary.NIAllocated, first.Summary.NIAllocated) {
			t.Errorf("run %d NIAllocated = %.2f, expected %.2f", i, again.Summary.NIAllocated, first.Summary.NIAllocated)
		}
		for loc, c := range first.Analysis.Composite {
			if again.Analysis.Composite[loc] != c {
				t.Errorf("run %d composite for %s = %v, expected %v", i, loc, again.Analysis.Composite[loc], c)
			}
		}
	}
}
