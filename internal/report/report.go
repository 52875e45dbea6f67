// Package report runs every view of the analysis engine over one dataset:
// the location scorecard, budget variance, payroll, year-over-year change,
// triggered alerts and saved scenarios.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/pnl-analysis/internal/alerts"
	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/internal/budget"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/internal/payroll"
	"github.com/iwvelando/pnl-analysis/internal/scenario"
	"github.com/iwvelando/pnl-analysis/internal/store"
	"github.com/iwvelando/pnl-analysis/internal/yoy"
	"github.com/iwvelando/pnl-analysis/pkg/validation"
	"go.uber.org/zap"
)

// ErrNoPLData is returned when a dataset carries no P&L records.
var ErrNoPLData = errors.New("dataset has no P&L data")

// Dataset bundles the inputs of one report. PriorPL is optional; when it is
// nil the year-over-year view is empty.
type Dataset struct {
	Year      int                  `json:"year"`
	PL        ledger.PLData        `json:"plData"`
	PriorPL   ledger.PLData        `json:"priorPlData,omitempty"`
	Headcount ledger.HeadcountData `json:"headcount"`
	Budget    ledger.BudgetData    `json:"budget,omitempty"`
	Employees []payroll.Employee   `json:"employees,omitempty"`
	Hours     []payroll.Hours      `json:"hours,omitempty"`
	Alerts    []alerts.Config      `json:"alerts,omitempty"`
	Scenarios []scenario.Scenario  `json:"scenarios,omitempty"`
}

// ScenarioResult pairs a saved scenario with its projected analysis.
type ScenarioResult struct {
	Scenario scenario.Scenario `json:"scenario"`
	Result   *analysis.Result  `json:"result"`
	Summary  analysis.Summary  `json:"summary"`
}

// Report is every view computed for a dataset.
type Report struct {
	Year         int                  `json:"year"`
	Months       []string             `json:"months"`
	Analysis     *analysis.Result     `json:"analysis"`
	Summary      analysis.Summary     `json:"summary"`
	Variance     []budget.VarianceRow `json:"variance"`
	Payroll      []payroll.SummaryRow `json:"payroll"`
	PayrollTotal payroll.SummaryRow   `json:"payrollTotal"`
	YoY          []yoy.Row            `json:"yoy"`
	Alerts       []alerts.Triggered   `json:"alerts"`
	Scenarios    []ScenarioResult     `json:"scenarios"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// Analyzer produces an analysis snapshot. The Redis cache satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, pl ledger.PLData, hc ledger.HeadcountData, months []string) *analysis.Result
}

type direct struct{}

func (direct) Analyze(_ context.Context, pl ledger.PLData, hc ledger.HeadcountData, months []string) *analysis.Result {
	return analysis.Run(pl, hc, months)
}

// Runner computes reports.
type Runner struct {
	analyzer Analyzer
	logger   *zap.Logger
}

// NewRunner returns a Runner. A nil analyzer computes every snapshot
// directly.
func NewRunner(analyzer Analyzer, logger *zap.Logger) *Runner {
	if analyzer == nil {
		analyzer = direct{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{analyzer: analyzer, logger: logger}
}

// Run computes every view of ds over months. Missing headcount reads as the
// default roster and a missing budget as all zero. The prior year is
// analyzed with the current headcount.
func (r *Runner) Run(ctx context.Context, ds Dataset, months []string) (*Report, error) {
	if ds.PL == nil {
		return nil, ErrNoPLData
	}
	start := time.Now()

	hc := ds.Headcount
	if hc == nil {
		hc = ledger.DefaultHeadcount()
	}
	b := ds.Budget
	if b == nil {
		b = ledger.NewBudget()
	}

	current := r.analyzer.Analyze(ctx, ds.PL, hc, months)
	payrollRows := payroll.ComputeSummary(ds.Employees, ds.Hours, months)

	rep := &Report{
		Year:         ds.Year,
		Months:       append([]string{}, months...),
		Analysis:     current,
		Summary:      current.Totals(),
		Variance:     budget.ComputeVariance(ds.PL, b, months),
		Payroll:      payrollRows,
		PayrollTotal: payroll.Totals(payrollRows),
		YoY:          []yoy.Row{},
		Alerts:       alerts.Check(ds.Alerts, current),
		Scenarios:    []ScenarioResult{},
		Warnings:     validation.DatasetWarnings(ds.PL, hc),
	}

	if ds.PriorPL != nil {
		prior := r.analyzer.Analyze(ctx, ds.PriorPL, hc, months)
		rep.YoY = yoy.Compute(current, prior)
	}

	for _, s := range ds.Scenarios {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run scenarios: %w", err)
		}
		valid := make([]scenario.Adjustment, 0, len(s.Adjustments))
		for _, adj := range s.Adjustments {
			if err := adj.Validate(); err != nil {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("Scenario '%s': skipping adjustment: %v", s.Name, err))
				continue
			}
			valid = append(valid, adj)
		}
		projected := r.analyzer.Analyze(ctx, scenario.Project(ds.PL, valid), hc, months)
		rep.Scenarios = append(rep.Scenarios, ScenarioResult{
			Scenario: s,
			Result:   projected,
			Summary:  projected.Totals(),
		})
	}

	r.logger.Info("report computed",
		zap.String("op", "report.Run"),
		zap.Int("year", ds.Year),
		zap.Int("months", len(months)),
		zap.Int("alerts", len(rep.Alerts)),
		zap.Int("scenarios", len(rep.Scenarios)),
		zap.Int("warnings", len(rep.Warnings)),
		zap.Duration("duration", time.Since(start)),
	)
	return rep, nil
}

// Load reads the inputs of one report from src. P&L data for year is
// required. Missing headcount falls back to the default roster and a missing
// budget to zeros. A prior year that is missing, or not before year, disables
// the year-over-year view.
func Load(ctx context.Context, src store.Reader, userID string, year, priorYear int) (Dataset, error) {
	ds := Dataset{Year: year}

	pl, err := src.LoadPL(ctx, userID, year)
	if err != nil {
		return ds, fmt.Errorf("load %d P&L: %w", year, err)
	}
	ds.PL = pl

	if priorYear != 0 && priorYear < year {
		prior, err := src.LoadPL(ctx, userID, priorYear)
		switch {
		case err == nil:
			ds.PriorPL = prior
		case !errors.Is(err, store.ErrNotFound):
			return ds, fmt.Errorf("load %d P&L: %w", priorYear, err)
		}
	}

	if ds.Headcount, err = src.LoadHeadcount(ctx, userID, year); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return ds, fmt.Errorf("load headcount: %w", err)
		}
		ds.Headcount = ledger.DefaultHeadcount()
	}
	if ds.Budget, err = src.LoadBudget(ctx, userID, year); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return ds, fmt.Errorf("load budget: %w", err)
		}
		ds.Budget = ledger.NewBudget()
	}
	if ds.Employees, err = src.ListEmployees(ctx, userID); err != nil {
		return ds, fmt.Errorf("load employees: %w", err)
	}
	if ds.Hours, err = src.LoadHours(ctx, userID, year); err != nil {
		return ds, fmt.Errorf("load hours: %w", err)
	}
	if ds.Alerts, err = src.ListAlerts(ctx, userID); err != nil {
		return ds, fmt.Errorf("load alerts: %w", err)
	}
	if ds.Scenarios, err = src.ListScenarios(ctx, userID, year); err != nil {
		return ds, fmt.Errorf("load scenarios: %w", err)
	}
	return ds, nil
}
