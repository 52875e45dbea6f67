package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/pnl-analysis/internal/alerts"
	"github.com/iwvelando/pnl-analysis/internal/audit"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/internal/payroll"
	"github.com/iwvelando/pnl-analysis/internal/scenario"
	"github.com/iwvelando/pnl-analysis/pkg/adapters"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// Schema creates the tables Postgres reads and writes.
const Schema = `
CREATE TABLE IF NOT EXISTS pl_data (
	user_id       TEXT NOT NULL,
	year          INT NOT NULL,
	month         TEXT NOT NULL,
	location      TEXT NOT NULL,
	entity_type   TEXT NOT NULL,
	revenue       DOUBLE PRECISION NOT NULL DEFAULT 0,
	cogs          JSONB NOT NULL DEFAULT '{}',
	expenses      JSONB NOT NULL DEFAULT '{}',
	other_income  DOUBLE PRECISION NOT NULL DEFAULT 0,
	other_expense DOUBLE PRECISION NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, year, month, location)
);
CREATE TABLE IF NOT EXISTS headcount (
	user_id  TEXT NOT NULL,
	year     INT NOT NULL,
	location TEXT NOT NULL,
	pt       INT NOT NULL DEFAULT 0,
	pta      INT NOT NULL DEFAULT 0,
	ot       INT NOT NULL DEFAULT 0,
	cota     INT NOT NULL DEFAULT 0,
	tech     INT NOT NULL DEFAULT 0,
	fd       INT NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, year, location)
);
CREATE TABLE IF NOT EXISTS budgets (
	user_id  TEXT NOT NULL,
	year     INT NOT NULL,
	month    TEXT NOT NULL,
	location TEXT NOT NULL,
	revenue  DOUBLE PRECISION NOT NULL DEFAULT 0,
	cogs     DOUBLE PRECISION NOT NULL DEFAULT 0,
	expenses DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, year, month, location)
);
CREATE TABLE IF NOT EXISTS scenarios (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	year        INT NOT NULL,
	adjustments JSONB NOT NULL DEFAULT '[]',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS alert_configs (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	alert_name      TEXT NOT NULL,
	metric_type     TEXT NOT NULL,
	threshold_value DOUBLE PRECISION NOT NULL,
	comparison_op   TEXT NOT NULL,
	scope           TEXT NOT NULL,
	location        TEXT,
	is_active       BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE TABLE IF NOT EXISTS employees (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	name          TEXT NOT NULL,
	location      TEXT NOT NULL,
	department    TEXT NOT NULL,
	job_role      TEXT NOT NULL,
	hourly_rate   DOUBLE PRECISION NOT NULL DEFAULT 0,
	salary_annual DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_hourly     BOOLEAN NOT NULL,
	status        TEXT NOT NULL,
	hire_date     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS payroll_hours (
	user_id        TEXT NOT NULL,
	year           INT NOT NULL,
	employee_id    TEXT NOT NULL,
	month          TEXT NOT NULL,
	hours_worked   DOUBLE PRECISION NOT NULL DEFAULT 0,
	overtime_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, year, employee_id, month)
);
CREATE TABLE IF NOT EXISTS audit_log (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	action_type    TEXT NOT NULL,
	resource_type  TEXT NOT NULL,
	year           INT,
	location       TEXT,
	change_summary TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Postgres implements Store against PostgreSQL.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(db *sql.DB, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{db: db, logger: logger}
}

// Migrate creates any missing tables.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// LoadPL returns a user's P&L for year, or ErrNotFound when no rows exist.
func (p *Postgres) LoadPL(ctx context.Context, userID string, year int) (ledger.PLData, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT location, entity_type, month, revenue, cogs, expenses, other_income, other_expense
		FROM pl_data
		WHERE user_id = $1 AND year = $2
	`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("load pl data: %w", err)
	}
	defer rows.Close()

	var out []adapters.PLRow
	for rows.Next() {
		var r adapters.PLRow
		var cogs, expenses []byte
		if err := rows.Scan(&r.Entity, &r.EntityType, &r.Month, &r.Revenue, &cogs, &expenses, &r.OtherIncome, &r.OtherExpense); err != nil {
			return nil, fmt.Errorf("scan pl data: %w", err)
		}
		if err := decodeJSON(cogs, &r.COGS); err != nil {
			return nil, fmt.Errorf("decode cogs for %s %s: %w", r.Entity, r.Month, err)
		}
		if err := decodeJSON(expenses, &r.Expenses); err != nil {
			return nil, fmt.Errorf("decode expenses for %s %s: %w", r.Entity, r.Month, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load pl data: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return adapters.PLFromRows(out), nil
}

// SavePL upserts one row per entity and month in a single transaction.
func (p *Postgres) SavePL(ctx context.Context, userID string, year int, pl ledger.PLData) error {
	rows := adapters.PLToRows(pl)
	err := p.inTx(ctx, `
		INSERT INTO pl_data
			(user_id, year, month, location, entity_type, revenue, cogs, expenses,
			 other_income, other_expense, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id, year, month, location) DO UPDATE SET
			entity_type = EXCLUDED.entity_type,
			revenue = EXCLUDED.revenue,
			cogs = EXCLUDED.cogs,
			expenses = EXCLUDED.expenses,
			other_income = EXCLUDED.other_income,
			other_expense = EXCLUDED.other_expense,
			updated_at = NOW()
	`, func(stmt *sql.Stmt) error {
		for _, r := range rows {
			cogs, err := json.Marshal(r.COGS)
			if err != nil {
				return fmt.Errorf("encode cogs: %w", err)
			}
			expenses, err := json.Marshal(r.Expenses)
			if err != nil {
				return fmt.Errorf("encode expenses: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, userID, year, r.Month, r.Entity, r.EntityType, r.Revenue,
				cogs, expenses, r.OtherIncome, r.OtherExpense); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save pl data: %w", err)
	}
	p.logger.Debug("saved pl data",
		zap.String("op", "store.SavePL"),
		zap.Int("year", year),
		zap.Int("rows", len(rows)),
	)
	return nil
}

// LoadHeadcount returns the stored roster for year, or ErrNotFound.
func (p *Postgres) LoadHeadcount(ctx context.Context, userID string, year int) (ledger.HeadcountData, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT location, pt, pta, ot, cota, tech, fd
		FROM headcount
		WHERE user_id = $1 AND year = $2
	`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("load headcount: %w", err)
	}
	defer rows.Close()

	var out []adapters.HeadcountRow
	for rows.Next() {
		var loc string
		var pt, pta, ot, cota, tech, fd int
		if err := rows.Scan(&loc, &pt, &pta, &ot, &cota, &tech, &fd); err != nil {
			return nil, fmt.Errorf("scan headcount: %w", err)
		}
		out = append(out, adapters.HeadcountRow{Location: loc, Counts: map[string]int{
			constants.RolePT: pt, constants.RolePTA: pta, constants.RoleOT: ot,
			constants.RoleCOTA: cota, constants.RoleTech: tech, constants.RoleFrontDesk: fd,
		}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load headcount: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return adapters.HeadcountFromRows(out), nil
}

// SaveHeadcount upserts one row per location.
func (p *Postgres) SaveHeadcount(ctx context.Context, userID string, year int, hc ledger.HeadcountData) error {
	rows := adapters.HeadcountToRows(hc)
	err := p.inTx(ctx, `
		INSERT INTO headcount (user_id, year, location, pt, pta, ot, cota, tech, fd)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, year, location) DO UPDATE SET
			pt = EXCLUDED.pt, pta = EXCLUDED.pta, ot = EXCLUDED.ot,
			cota = EXCLUDED.cota, tech = EXCLUDED.tech, fd = EXCLUDED.fd
	`, func(stmt *sql.Stmt) error {
		for _, r := range rows {
			c := r.Counts
			if _, err := stmt.ExecContext(ctx, userID, year, r.Location,
				c[constants.RolePT], c[constants.RolePTA], c[constants.RoleOT],
				c[constants.RoleCOTA], c[constants.RoleTech], c[constants.RoleFrontDesk]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save headcount: %w", err)
	}
	return nil
}

// LoadBudget returns the budget targets for year, or ErrNotFound.
func (p *Postgres) LoadBudget(ctx context.Context, userID string, year int) (ledger.BudgetData, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT location, month, revenue, cogs, expenses
		FROM budgets
		WHERE user_id = $1 AND year = $2
	`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	defer rows.Close()

	var out []adapters.BudgetRow
	for rows.Next() {
		var r adapters.BudgetRow
		if err := rows.Scan(&r.Entity, &r.Month, &r.Revenue, &r.COGS, &r.Expenses); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return adapters.BudgetFromRows(out), nil
}

// SaveBudget upserts one row per location and month.
func (p *Postgres) SaveBudget(ctx context.Context, userID string, year int, b ledger.BudgetData) error {
	rows := adapters.BudgetToRows(b)
	err := p.inTx(ctx, `
		INSERT INTO budgets (user_id, year, month, location, revenue, cogs, expenses)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, year, month, location) DO UPDATE SET
			revenue = EXCLUDED.revenue, cogs = EXCLUDED.cogs, expenses = EXCLUDED.expenses
	`, func(stmt *sql.Stmt) error {
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, userID, year, r.Month, r.Entity, r.Revenue, r.COGS, r.Expenses); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// ListScenarios returns a user's scenarios for year in creation order.
func (p *Postgres) ListScenarios(ctx context.Context, userID string, year int) ([]scenario.Scenario, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, year, adjustments, created_at
		FROM scenarios
		WHERE user_id = $1 AND year = $2
		ORDER BY created_at
	`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	out := []scenario.Scenario{}
	for rows.Next() {
		s := scenario.Scenario{UserID: userID}
		var adjustments []byte
		if err := rows.Scan(&s.ID, &s.Name, &s.Year, &adjustments, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		if err := decodeJSON(adjustments, &s.Adjustments); err != nil {
			return nil, fmt.Errorf("decode scenario %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return out, nil
}

// SaveScenario inserts s, assigning an id when it has none, or replaces the
// stored scenario with the same id.
func (p *Postgres) SaveScenario(ctx context.Context, s *scenario.Scenario) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	adjustments, err := json.Marshal(s.Adjustments)
	if err != nil {
		return fmt.Errorf("encode adjustments: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, user_id, name, year, adjustments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, year = EXCLUDED.year, adjustments = EXCLUDED.adjustments
	`, s.ID, s.UserID, s.Name, s.Year, adjustments, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	return nil
}

// DeleteScenario removes a scenario, or returns ErrNotFound.
func (p *Postgres) DeleteScenario(ctx context.Context, userID, id string) error {
	return p.deleteByID(ctx, "scenarios", userID, id)
}

// ListAlerts returns a user's alert rules ordered by name.
func (p *Postgres) ListAlerts(ctx context.Context, userID string) ([]alerts.Config, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, alert_name, metric_type, threshold_value, comparison_op, scope,
		       COALESCE(location, ''), is_active
		FROM alert_configs
		WHERE user_id = $1
		ORDER BY alert_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	out := []alerts.Config{}
	for rows.Next() {
		c := alerts.Config{UserID: userID}
		if err := rows.Scan(&c.ID, &c.AlertName, &c.MetricType, &c.ThresholdValue,
			&c.ComparisonOp, &c.Scope, &c.Location, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return out, nil
}

// SaveAlert validates c, then inserts or replaces it.
func (p *Postgres) SaveAlert(ctx context.Context, c *alerts.Config) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	var location sql.NullString
	if c.Location != "" {
		location = sql.NullString{String: c.Location, Valid: true}
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO alert_configs
			(id, user_id, alert_name, metric_type, threshold_value, comparison_op, scope, location, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			alert_name = EXCLUDED.alert_name, metric_type = EXCLUDED.metric_type,
			threshold_value = EXCLUDED.threshold_value, comparison_op = EXCLUDED.comparison_op,
			scope = EXCLUDED.scope, location = EXCLUDED.location, is_active = EXCLUDED.is_active
	`, c.ID, c.UserID, c.AlertName, c.MetricType, c.ThresholdValue, string(c.ComparisonOp),
		string(c.Scope), location, c.IsActive)
	if err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

// DeleteAlert removes an alert rule, or returns ErrNotFound.
func (p *Postgres) DeleteAlert(ctx context.Context, userID, id string) error {
	return p.deleteByID(ctx, "alert_configs", userID, id)
}

// ListEmployees returns a user's roster ordered by location and name.
func (p *Postgres) ListEmployees(ctx context.Context, userID string) ([]payroll.Employee, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, location, department, job_role, hourly_rate, salary_annual,
		       is_hourly, status, hire_date
		FROM employees
		WHERE user_id = $1
		ORDER BY location, name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := []payroll.Employee{}
	for rows.Next() {
		e := payroll.Employee{UserID: userID}
		if err := rows.Scan(&e.ID, &e.Name, &e.Location, &e.Department, &e.JobRole,
			&e.HourlyRate, &e.SalaryAnnual, &e.IsHourly, &e.Status, &e.HireDate); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return out, nil
}

// SaveEmployee inserts e, assigning an id when it has none, or replaces it.
func (p *Postgres) SaveEmployee(ctx context.Context, e *payroll.Employee) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO employees
			(id, user_id, name, location, department, job_role, hourly_rate, salary_annual,
			 is_hourly, status, hire_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, location = EXCLUDED.location, department = EXCLUDED.department,
			job_role = EXCLUDED.job_role, hourly_rate = EXCLUDED.hourly_rate,
			salary_annual = EXCLUDED.salary_annual, is_hourly = EXCLUDED.is_hourly,
			status = EXCLUDED.status, hire_date = EXCLUDED.hire_date
	`, e.ID, e.UserID, e.Name, e.Location, e.Department, e.JobRole, e.HourlyRate,
		e.SalaryAnnual, e.IsHourly, string(e.Status), e.HireDate)
	if err != nil {
		return fmt.Errorf("save employee: %w", err)
	}
	return nil
}

// DeleteEmployee removes an employee, or returns ErrNotFound.
func (p *Postgres) DeleteEmployee(ctx context.Context, userID, id string) error {
	return p.deleteByID(ctx, "employees", userID, id)
}

// LoadHours returns the monthly hours recorded for year.
func (p *Postgres) LoadHours(ctx context.Context, userID string, year int) ([]payroll.Hours, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT employee_id, month, hours_worked, overtime_hours
		FROM payroll_hours
		WHERE user_id = $1 AND year = $2
	`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("load hours: %w", err)
	}
	defer rows.Close()

	out := []payroll.Hours{}
	for rows.Next() {
		var h payroll.Hours
		if err := rows.Scan(&h.EmployeeID, &h.Month, &h.HoursWorked, &h.OvertimeHours); err != nil {
			return nil, fmt.Errorf("scan hours: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load hours: %w", err)
	}
	return out, nil
}

// SaveHours upserts each (employee, month) record.
func (p *Postgres) SaveHours(ctx context.Context, userID string, year int, hours []payroll.Hours) error {
	err := p.inTx(ctx, `
		INSERT INTO payroll_hours (user_id, year, employee_id, month, hours_worked, overtime_hours)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, year, employee_id, month) DO UPDATE SET
			hours_worked = EXCLUDED.hours_worked, overtime_hours = EXCLUDED.overtime_hours
	`, func(stmt *sql.Stmt) error {
		for _, h := range hours {
			if _, err := stmt.ExecContext(ctx, userID, year, h.EmployeeID, h.Month, h.HoursWorked, h.OvertimeHours); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save hours: %w", err)
	}
	return nil
}

// AppendAudit stores e with the current time.
func (p *Postgres) AppendAudit(ctx context.Context, e audit.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, user_id, action_type, resource_type, year, location, change_summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, e.ID, e.UserID, e.ActionType, e.ResourceType, e.Year, e.Location, e.Summary)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// ListAudit returns a user's entries, newest first.
func (p *Postgres) ListAudit(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = audit.DefaultListLimit
	}

	q := `
		SELECT id, action_type, resource_type, year, location, change_summary, created_at
		FROM audit_log
		WHERE user_id = $1`
	args := []interface{}{f.UserID}
	idx := 2
	if f.ActionType != "" && f.ActionType != "all" {
		q += fmt.Sprintf(" AND action_type = $%d", idx)
		args = append(args, f.ActionType)
		idx++
	}
	if !f.Start.IsZero() {
		q += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, f.Start)
		idx++
	}
	if !f.End.IsZero() {
		q += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, f.End)
		idx++
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	out := []audit.Entry{}
	for rows.Next() {
		e := audit.Entry{UserID: f.UserID}
		var year sql.NullInt64
		var location sql.NullString
		if err := rows.Scan(&e.ID, &e.ActionType, &e.ResourceType, &year, &location, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if year.Valid {
			y := int(year.Int64)
			e.Year = &y
		}
		if location.Valid {
			loc := location.String
			e.Location = &loc
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return out, nil
}

func (p *Postgres) deleteByID(ctx context.Context, table, userID, id string) error {
	res, err := p.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, table), id, userID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// inTx prepares query inside a transaction and hands the statement to fn.
// The transaction commits only if fn succeeds.
func (p *Postgres) inTx(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := fn(stmt); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func decodeJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
