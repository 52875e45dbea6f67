// Package store persists the datasets the analysis engine reads: P&L records,
// headcount, budgets, scenarios, alert rules, the employee roster, payroll
// hours and the audit trail.
package store

import (
	"context"
	"errors"

	"github.com/iwvelando/pnl-analysis/internal/alerts"
	"github.com/iwvelando/pnl-analysis/internal/audit"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/internal/payroll"
	"github.com/iwvelando/pnl-analysis/internal/scenario"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Reader loads the inputs of one report. Loads of per-year records return
// ErrNotFound when nothing is stored for that year.
type Reader interface {
	LoadPL(ctx context.Context, userID string, year int) (ledger.PLData, error)
	LoadHeadcount(ctx context.Context, userID string, year int) (ledger.HeadcountData, error)
	LoadBudget(ctx context.Context, userID string, year int) (ledger.BudgetData, error)
	ListScenarios(ctx context.Context, userID string, year int) ([]scenario.Scenario, error)
	ListAlerts(ctx context.Context, userID string) ([]alerts.Config, error)
	ListEmployees(ctx context.Context, userID string) ([]payroll.Employee, error)
	LoadHours(ctx context.Context, userID string, year int) ([]payroll.Hours, error)
}

// Store is the full read/write persistence port.
type Store interface {
	Reader
	audit.Sink

	SavePL(ctx context.Context, userID string, year int, pl ledger.PLData) error
	SaveHeadcount(ctx context.Context, userID string, year int, hc ledger.HeadcountData) error
	SaveBudget(ctx context.Context, userID string, year int, b ledger.BudgetData) error

	SaveScenario(ctx context.Context, s *scenario.Scenario) error
	DeleteScenario(ctx context.Context, userID, id string) error

	SaveAlert(ctx context.Context, c *alerts.Config) error
	DeleteAlert(ctx context.Context, userID, id string) error

	SaveEmployee(ctx context.Context, e *payroll.Employee) error
	DeleteEmployee(ctx context.Context, userID, id string) error
	SaveHours(ctx context.Context, userID string, year int, hours []payroll.Hours) error

	ListAudit(ctx context.Context, f audit.Filter) ([]audit.Entry, error)
}
