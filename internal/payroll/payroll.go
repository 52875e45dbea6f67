// Package payroll aggregates an employee roster and monthly hours into
// location-level labor cost.
package payroll

import (
	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

// Status is an employee's employment status.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Employee is one roster entry. Hourly employees are paid from recorded
// hours; salaried employees accrue salary/12 per selected month.
type Employee struct {
	ID           string  `json:"id,omitempty" yaml:"id,omitempty"`
	UserID       string  `json:"user_id,omitempty" yaml:"userId,omitempty"`
	Name         string  `json:"name" yaml:"name"`
	Location     string  `json:"location" yaml:"location"`
	Department   string  `json:"department" yaml:"department"`
	JobRole      string  `json:"job_role" yaml:"jobRole"`
	HourlyRate   float64 `json:"hourly_rate" yaml:"hourlyRate"`
	SalaryAnnual float64 `json:"salary_annual" yaml:"salaryAnnual"`
	IsHourly     bool    `json:"is_hourly" yaml:"isHourly"`
	Status       Status  `json:"status" yaml:"status"`
	HireDate     string  `json:"hire_date" yaml:"hireDate"`
}

// Active reports whether the employee counts toward payroll.
func (e Employee) Active() bool {
	return e.Status == StatusActive
}

// Hours is one employee's recorded hours for a month.
type Hours struct {
	EmployeeID    string  `json:"employee_id" yaml:"employeeId"`
	Month         string  `json:"month" yaml:"month"`
	HoursWorked   float64 `json:"hours_worked" yaml:"hoursWorked"`
	OvertimeHours float64 `json:"overtime_hours" yaml:"overtimeHours"`
}

// SummaryRow is the labor cost of one location.
type SummaryRow struct {
	Location         string  `json:"location"`
	TotalEmployees   int     `json:"totalEmployees"`
	TotalRegularPay  float64 `json:"totalRegularPay"`
	TotalOvertimePay float64 `json:"totalOvertimePay"`
	TotalGrossPay    float64 `json:"totalGrossPay"`
	EstimatedTaxes   float64 `json:"estimatedTaxes"`
	TotalLaborCost   float64 `json:"totalLaborCost"`
}

// ComputeSummary returns one row per location in catalog order. Inactive
// employees are excluded; hourly employees without hours in the selected
// months contribute nothing.
func ComputeSummary(employees []Employee, hours []Hours, months []string) []SummaryRow {
	selected := make(map[string]bool, len(months))
	for _, m := range months {
		selected[m] = true
	}

	byEmployee := make(map[string][]Hours)
	for _, h := range hours {
		if selected[h.Month] {
			byEmployee[h.EmployeeID] = append(byEmployee[h.EmployeeID], h)
		}
	}

	rows := make([]SummaryRow, 0, len(constants.Locations))
	for _, loc := range constants.Locations {
		row := SummaryRow{Location: loc}
		for _, emp := range employees {
			if emp.Location != loc || !emp.Active() {
				continue
			}
			row.TotalEmployees++

			if !emp.IsHourly {
				row.TotalRegularPay += emp.SalaryAnnual / constants.MonthsPerYear * float64(len(months))
				continue
			}
			var reg, ot float64
			for _, h := range byEmployee[emp.ID] {
				reg += h.HoursWorked
				ot += h.OvertimeHours
			}
			row.TotalRegularPay += reg * emp.HourlyRate
			row.TotalOvertimePay += ot * emp.HourlyRate * constants.OvertimeMultiplier
		}
		row.TotalGrossPay = row.TotalRegularPay + row.TotalOvertimePay
		row.EstimatedTaxes = row.TotalGrossPay * constants.PayrollTaxRate
		row.TotalLaborCost = row.TotalGrossPay + row.EstimatedTaxes
		rows = append(rows, row)
	}
	return rows
}

// Totals sums the summary rows into a single company row.
func Totals(rows []SummaryRow) SummaryRow {
	total := SummaryRow{Location: "Total"}
	for _, r := range rows {
		total.TotalEmployees += r.TotalEmployees
		total.TotalRegularPay += r.TotalRegularPay
		total.TotalOvertimePay += r.TotalOvertimePay
		total.TotalGrossPay += r.TotalGrossPay
		total.EstimatedTaxes += r.EstimatedTaxes
		total.TotalLaborCost += r.TotalLaborCost
	}
	return total
}
