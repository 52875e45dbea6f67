package payroll

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/mathutil"
)

// Defaults applied to imported employees when a column is absent or blank.
const (
	DefaultDepartment = "Clinical"
	DefaultJobRole    = "Staff"
	DefaultName       = "Unknown"
)

// now is replaced in tests.
var now = time.Now

type employeeColumns struct {
	name, location, department, role, rate, salary, kind int
}

// findColumn returns the first header containing any of the needles, or -1.
func findColumn(headers []string, needles ...string) int {
	for i, h := range headers {
		for _, n := range needles {
			if strings.Contains(h, n) {
				return i
			}
		}
	}
	return -1
}

func detectColumns(header []string) employeeColumns {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return employeeColumns{
		name:       findColumn(headers, "name"),
		location:   findColumn(headers, "location"),
		department: findColumn(headers, "department", "dept"),
		role:       findColumn(headers, "role", "title", "position"),
		rate:       findColumn(headers, "rate", "hourly"),
		salary:     findColumn(headers, "salary", "annual"),
		kind:       findColumn(headers, "type"),
	}
}

// ParseEmployeeCSV reads a roster export. Columns are matched by header
// keywords; missing values fall back to defaults. Every employee gets a new
// id, active status and today's hire date. Employment type comes from a
// "type" column containing "hourly", or otherwise from a positive rate.
func ParseEmployeeCSV(r io.Reader, userID string) ([]Employee, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read employee CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	cols := detectColumns(records[0])
	hireDate := now().Format("2006-01-02")

	var employees []Employee
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		rate := mathutil.ParseMoney(field(rec, cols.rate)).InexactFloat64()
		emp := Employee{
			ID:           uuid.New().String(),
			UserID:       userID,
			Name:         fieldOr(rec, cols.name, DefaultName),
			Location:     fieldOr(rec, cols.location, constants.Locations[0]),
			Department:   fieldOr(rec, cols.department, DefaultDepartment),
			JobRole:      fieldOr(rec, cols.role, DefaultJobRole),
			HourlyRate:   rate,
			SalaryAnnual: mathutil.ParseMoney(field(rec, cols.salary)).InexactFloat64(),
			Status:       StatusActive,
			HireDate:     hireDate,
		}
		if cols.kind >= 0 {
			emp.IsHourly = strings.Contains(strings.ToLower(field(rec, cols.kind)), "hourly")
		} else {
			emp.IsHourly = rate > 0
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func fieldOr(rec []string, idx int, fallback string) string {
	if v := field(rec, idx); v != "" {
		return v
	}
	return fallback
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
