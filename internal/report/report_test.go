package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/pnl-analysis/internal/alerts"
	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/internal/payroll"
	"github.com/iwvelando/pnl-analysis/internal/scenario"
	"github.com/iwvelando/pnl-analysis/internal/store"
	"github.com/iwvelando/pnl-analysis/internal/yoy"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/testutil"
	"go.uber.org/zap"
)

type countingAnalyzer struct {
	calls int
}

func (c *countingAnalyzer) Analyze(_ context.Context, pl ledger.PLData, hc ledger.HeadcountData, months []string) *analysis.Result {
	c.calls++
	return analysis.Run(pl, hc, months)
}

func sampleDataset() Dataset {
	prior := testutil.SamplePL()
	for _, loc := range constants.Locations {
		for _, m := range constants.Months {
			prior[loc].Revenue[m] /= 2
		}
	}
	return Dataset{
		Year:      2024,
		PL:        testutil.SamplePL(),
		PriorPL:   prior,
		Headcount: ledger.DefaultHeadcount(),
		Employees: []payroll.Employee{
			{ID: "e1", Name: "Dana", Location: "Newport", HourlyRate: 20, IsHourly: true, Status: payroll.StatusActive},
		},
		Hours: []payroll.Hours{
			{EmployeeID: "e1", Month: "Jan", HoursWorked: 160, OvertimeHours: 10},
		},
		Alerts: []alerts.Config{
			{MetricType: "Revenue", ComparisonOp: alerts.OpGT, ThresholdValue: 900000, Scope: alerts.ScopeAll, IsActive: true},
		},
		Scenarios: []scenario.Scenario{
			{Name: "Grow", Adjustments: []scenario.Adjustment{
				{Location: scenario.AllLocations, Metric: scenario.TargetRevenue, AdjustType: scenario.AdjustPercent, Value: 10},
			}},
		},
	}
}

func TestRun(t *testing.T) {
	counter := &countingAnalyzer{}
	runner := NewRunner(counter, zap.NewNop())

	rep, err := runner.Run(context.Background(), sampleDataset(), testutil.AllMonths())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if counter.calls != 3 {
		t.Errorf("analyzer called %d times, expected 3 (current, prior, one scenario)", counter.calls)
	}
	if len(rep.Variance) != 3*len(constants.Locations) {
		t.Errorf("len(Variance) = %d, expected %d", len(rep.Variance), 3*len(constants.Locations))
	}
	if len(rep.YoY) != len(yoy.Comparisons)*len(constants.Locations) {
		t.Errorf("len(YoY) = %d, expected %d", len(rep.YoY), len(yoy.Comparisons)*len(constants.Locations))
	}
	if len(rep.Alerts) != 1 || rep.Alerts[0].Location != "Rogersville" {
		t.Errorf("Alerts = %+v, expected only Rogersville", rep.Alerts)
	}
	if !testutil.Close(rep.PayrollTotal.TotalLaborCost, 4270) {
		t.Errorf("PayrollTotal.TotalLaborCost = %v, expected 4270", rep.PayrollTotal.TotalLaborCost)
	}
	if len(rep.Scenarios) != 1 {
		t.Fatalf("len(Scenarios) = %d, expected 1", len(rep.Scenarios))
	}
	if !testutil.Close(rep.Scenarios[0].Summary.Revenue, rep.Summary.Revenue*1.1) {
		t.Errorf("scenario revenue = %v, expected %v", rep.Scenarios[0].Summary.Revenue, rep.Summary.Revenue*1.1)
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("Warnings = %v, expected none", rep.Warnings)
	}
}

func TestRunDefaults(t *testing.T) {
	ds := Dataset{Year: 2024, PL: testutil.SamplePL()}

	rep, err := NewRunner(nil, nil).Run(context.Background(), ds, []string{"Jan"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.YoY) != 0 {
		t.Errorf("YoY = %v, expected none without a prior year", rep.YoY)
	}
	hc := ledger.DefaultHeadcount()
	clinical := 0
	for _, loc := range constants.Locations {
		clinical += hc.Clinical(loc)
	}
	if rep.Summary.ClinicalHC != clinical {
		t.Errorf("Summary.ClinicalHC = %d, expected the default roster", rep.Summary.ClinicalHC)
	}
	if rep.Variance[0].Budget != 0 {
		t.Errorf("Variance without a budget should compare against zero, got %v", rep.Variance[0].Budget)
	}
	if len(rep.Payroll) != len(constants.Locations) || rep.PayrollTotal.TotalEmployees != 0 {
		t.Errorf("Payroll = %+v, expected empty rows", rep.Payroll)
	}
}

func TestRunNoData(t *testing.T) {
	_, err := NewRunner(nil, nil).Run(context.Background(), Dataset{}, testutil.AllMonths())
	if !errors.Is(err, ErrNoPLData) {
		t.Errorf("Run() error = %v, expected ErrNoPLData", err)
	}
}

func TestRunSkipsInvalidAdjustments(t *testing.T) {
	ds := Dataset{
		PL: testutil.SamplePL(),
		Scenarios: []scenario.Scenario{{Name: "Bad", Adjustments: []scenario.Adjustment{
			{Location: constants.Corporate, Metric: scenario.TargetExpenses, AdjustType: scenario.AdjustFlat, Value: -100},
		}}},
	}

	rep, err := NewRunner(nil, nil).Run(context.Background(), ds, testutil.AllMonths())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.Warnings) != 1 || !strings.HasPrefix(rep.Warnings[0], "Scenario 'Bad'") {
		t.Errorf("Warnings = %v, expected one scenario warning", rep.Warnings)
	}
	if !testutil.Close(rep.Scenarios[0].Summary.NIDirect, rep.Summary.NIDirect) {
		t.Errorf("skipped adjustment changed the projection")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil).Run(ctx, sampleDataset(), testutil.AllMonths())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, expected context.Canceled", err)
	}
}

const fileDataset = `
years:
  2024:
    pl:
      Newport:
        revenue: {Jan: 40000}
        cogs: {}
        expenses: {}
        otherIncome: {}
        otherExpense: {}
  2023:
    pl:
      Newport:
        revenue: {Jan: 30000}
        cogs: {}
        expenses: {}
        otherIncome: {}
        otherExpense: {}
`

func TestLoad(t *testing.T) {
	src, err := store.ReadFile(strings.NewReader(fileDataset))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	ds, err := Load(context.Background(), src, "", 2024, 2023)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.PriorPL == nil || ds.PriorPL.Revenue("Newport", "Jan") != 30000 {
		t.Errorf("PriorPL not loaded")
	}
	if ds.Headcount.Clinical("Morristown") != ledger.DefaultHeadcount().Clinical("Morristown") {
		t.Errorf("Headcount did not fall back to the default roster")
	}
	if ds.Budget == nil {
		t.Errorf("Budget did not fall back to zeros")
	}

	ds, err = Load(context.Background(), src, "", 2024, 2022)
	if err != nil {
		t.Fatalf("Load() with missing prior year error = %v", err)
	}
	if ds.PriorPL != nil {
		t.Errorf("PriorPL = %v, expected nil for a missing year", ds.PriorPL)
	}

	ds, err = Load(context.Background(), src, "", 2023, 2024)
	if err != nil {
		t.Fatalf("Load() with a later prior year error = %v", err)
	}
	if ds.PriorPL != nil {
		t.Errorf("PriorPL = %v, expected nil when the prior year is not before the report year", ds.PriorPL)
	}

	if _, err := Load(context.Background(), src, "", 2021, 2020); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Load() missing year error = %v, expected ErrNotFound", err)
	}
}
