package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/pnl-analysis/internal/alerts"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/internal/scenario"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `
years:
  2024:
    pl:
      Newport:
        revenue: {Jan: 40000, Feb: 42000}
        cogs:
          Jan: {Clinical Supplies: 1500}
        expenses:
          Jan: {Rent & Lease: 3000}
        otherIncome: {Jan: 25}
        otherExpense: {}
      Corporate:
        cogs: {}
        expenses:
          Jan: {Labor - Admin: 9000}
        otherIncome: {}
        otherExpense: {}
    headcount:
      Newport: {PT: 2, FD: 1}
    budget:
      Newport:
        revenue: {Jan: 38000}
        cogs: {Jan: 2000}
        expenses: {Jan: 4000}
    hours:
      - {employeeId: e1, month: Jan, hoursWorked: 160, overtimeHours: 5}
    scenarios:
      - name: Raise prices
        adjustments:
          - {location: Newport, metric: revenue, adjust_type: pct, value: 5}
  2023:
    pl:
      Newport:
        revenue: {Jan: 35000}
        cogs: {}
        expenses: {}
        otherIncome: {}
        otherExpense: {}
employees:
  - {id: e1, name: Dana, location: Newport, department: Clinical, jobRole: PT, hourlyRate: 45, isHourly: true, status: active}
alerts:
  - {alertName: Low GM, metricType: "GM%", thresholdValue: 0.5, comparisonOp: lt, scope: all, isActive: true}
`

func TestReadFile(t *testing.T) {
	f, err := ReadFile(strings.NewReader(sampleDataset))
	require.NoError(t, err)
	ctx := context.Background()

	pl, err := f.LoadPL(ctx, "", 2024)
	require.NoError(t, err)
	assert.Equal(t, 42000.0, pl.Revenue("Newport", "Feb"))
	assert.Equal(t, 1500.0, pl.AmountOf(ledger.KindCOGS, "Newport", "Jan", "Clinical Supplies"))
	assert.Equal(t, 9000.0, pl.AmountOf(ledger.KindExpenses, constants.Corporate, "Jan", "Labor - Admin"))
	assert.Nil(t, pl[constants.Corporate].Revenue)

	hc, err := f.LoadHeadcount(ctx, "", 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, hc.Clinical("Newport"))

	b, err := f.LoadBudget(ctx, "", 2024)
	require.NoError(t, err)
	assert.Equal(t, 38000.0, b.Amount(ledger.BudgetRevenue, "Newport", "Jan"))

	hours, err := f.LoadHours(ctx, "", 2024)
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, 5.0, hours[0].OvertimeHours)

	scenarios, err := f.ListScenarios(ctx, "", 2024)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, scenario.AdjustPercent, scenarios[0].Adjustments[0].AdjustType)

	employees, err := f.ListEmployees(ctx, "")
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.True(t, employees[0].IsHourly)

	rules, err := f.ListAlerts(ctx, "")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, alerts.OpLT, rules[0].ComparisonOp)
	assert.NoError(t, rules[0].Validate())
}

func TestReadFileMissingYear(t *testing.T) {
	f, err := ReadFile(strings.NewReader(sampleDataset))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.LoadPL(ctx, "", 2022)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.LoadHeadcount(ctx, "", 2023)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.LoadBudget(ctx, "", 2023)
	assert.ErrorIs(t, err, ErrNotFound)

	hours, err := f.LoadHours(ctx, "", 2022)
	require.NoError(t, err)
	assert.Empty(t, hours)
}

func TestLoadPLReturnsCopy(t *testing.T) {
	f, err := ReadFile(strings.NewReader(sampleDataset))
	require.NoError(t, err)

	pl, err := f.LoadPL(context.Background(), "", 2024)
	require.NoError(t, err)
	pl["Newport"].Revenue["Jan"] = 0

	again, err := f.LoadPL(context.Background(), "", 2024)
	require.NoError(t, err)
	assert.Equal(t, 40000.0, again.Revenue("Newport", "Jan"))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDataset), 0600))

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Dataset().Years, 2)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("years: [1, 2"), 0600))
	_, err = OpenFile(bad)
	assert.Error(t, err)
}

func TestReadFileEmpty(t *testing.T) {
	f, err := ReadFile(strings.NewReader(""))
	require.NoError(t, err)

	_, err = f.LoadPL(context.Background(), "", 2024)
	assert.ErrorIs(t, err, ErrNotFound)
}
