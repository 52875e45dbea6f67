package store

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/pnl-analysis/internal/alerts"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/internal/payroll"
	"github.com/iwvelando/pnl-analysis/internal/scenario"
	"gopkg.in/yaml.v3"
)

// YearData holds the per-year records of a dataset file.
type YearData struct {
	PL        ledger.PLData        `yaml:"pl"`
	Headcount ledger.HeadcountData `yaml:"headcount,omitempty"`
	Budget    ledger.BudgetData    `yaml:"budget,omitempty"`
	Hours     []payroll.Hours      `yaml:"hours,omitempty"`
	Scenarios []scenario.Scenario  `yaml:"scenarios,omitempty"`
}

// Dataset is the YAML document read by File. Years are keyed by calendar
// year; the roster and alert rules apply to every year.
type Dataset struct {
	Years     map[int]*YearData  `yaml:"years"`
	Employees []payroll.Employee `yaml:"employees,omitempty"`
	Alerts    []alerts.Config    `yaml:"alerts,omitempty"`
}

// File is a read-only Reader over a YAML dataset. The user id is ignored.
type File struct {
	data Dataset
}

// OpenFile reads and parses the dataset at path.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadFile(f)
}

// ReadFile parses a dataset from r.
func ReadFile(r io.Reader) (*File, error) {
	var data Dataset
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return &File{data: data}, nil
}

// Dataset returns the parsed document.
func (f *File) Dataset() Dataset {
	return f.data
}

func (f *File) year(year int) (*YearData, error) {
	y, ok := f.data.Years[year]
	if !ok || y == nil {
		return nil, ErrNotFound
	}
	return y, nil
}

func (f *File) LoadPL(_ context.Context, _ string, year int) (ledger.PLData, error) {
	y, err := f.year(year)
	if err != nil || y.PL == nil {
		return nil, ErrNotFound
	}
	return y.PL.Clone(), nil
}

func (f *File) LoadHeadcount(_ context.Context, _ string, year int) (ledger.HeadcountData, error) {
	y, err := f.year(year)
	if err != nil || y.Headcount == nil {
		return nil, ErrNotFound
	}
	return y.Headcount, nil
}

func (f *File) LoadBudget(_ context.Context, _ string, year int) (ledger.BudgetData, error) {
	y, err := f.year(year)
	if err != nil || y.Budget == nil {
		return nil, ErrNotFound
	}
	return y.Budget, nil
}

func (f *File) ListScenarios(_ context.Context, _ string, year int) ([]scenario.Scenario, error) {
	y, err := f.year(year)
	if err != nil {
		return []scenario.Scenario{}, nil
	}
	return append([]scenario.Scenario{}, y.Scenarios...), nil
}

func (f *File) ListAlerts(context.Context, string) ([]alerts.Config, error) {
	return append([]alerts.Config{}, f.data.Alerts...), nil
}

func (f *File) ListEmployees(context.Context, string) ([]payroll.Employee, error) {
	return append([]payroll.Employee{}, f.data.Employees...), nil
}

func (f *File) LoadHours(_ context.Context, _ string, year int) ([]payroll.Hours, error) {
	y, err := f.year(year)
	if err != nil {
		return []payroll.Hours{}, nil
	}
	return append([]payroll.Hours{}, y.Hours...), nil
}
