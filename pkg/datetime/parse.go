// Package datetime provides fiscal month utility functions.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

// MonthIndex returns the zero-based position of a fiscal month name, or -1.
func MonthIndex(month string) int {
	for i, m := range constants.Months {
		if m == month {
			return i
		}
	}
	return -1
}

// ParseMonth normalizes a month token into its fiscal name. It accepts the
// short name in any case, the full English name, a number 1-12, or a
// "2006-01" style date.
func ParseMonth(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("month cannot be empty")
	}

	if t, err := time.Parse("2006-01", trimmed); err == nil {
		return constants.Months[int(t.Month())-1], nil
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 1 || n > constants.MonthsPerYear {
			return "", fmt.Errorf("month number out of range: %d", n)
		}
		return constants.Months[n-1], nil
	}

	lower := strings.ToLower(trimmed)
	if len(lower) >= 3 {
		for _, m := range constants.Months {
			if strings.HasPrefix(lower, strings.ToLower(m)) {
				return m, nil
			}
		}
	}
	return "", fmt.Errorf("unrecognized month: %s", value)
}

// DetectMonth looks for a month abbreviation anywhere inside a column
// header such as "Jan 2025" or "Total January". It returns "" when none is
// found.
func DetectMonth(header string) string {
	lower := strings.ToLower(strings.TrimSpace(header))
	for _, m := range constants.Months {
		if strings.Contains(lower, strings.ToLower(m)) {
			return m
		}
	}
	return ""
}

// ParseMonthSelection expands tokens like "Jan", "Mar-May" or "all" into an
// ordered, de-duplicated list of fiscal months.
func ParseMonthSelection(tokens []string) ([]string, error) {
	selected := make([]bool, constants.MonthsPerYear)
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if strings.EqualFold(token, "all") {
			for i := range selected {
				selected[i] = true
			}
			continue
		}
		if parts := strings.SplitN(token, "-", 2); len(parts) == 2 && !isDateToken(token) {
			start, err := ParseMonth(parts[0])
			if err != nil {
				return nil, err
			}
			end, err := ParseMonth(parts[1])
			if err != nil {
				return nil, err
			}
			from, to := MonthIndex(start), MonthIndex(end)
			if from > to {
				return nil, fmt.Errorf("month range %s runs backwards", token)
			}
			for i := from; i <= to; i++ {
				selected[i] = true
			}
			continue
		}
		month, err := ParseMonth(token)
		if err != nil {
			return nil, err
		}
		selected[MonthIndex(month)] = true
	}

	var months []string
	for i, ok := range selected {
		if ok {
			months = append(months, constants.Months[i])
		}
	}
	return months, nil
}

// ContainsMonth reports whether month is in the selection.
func ContainsMonth(months []string, month string) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}

func isDateToken(token string) bool {
	_, err := time.Parse("2006-01", token)
	return err == nil
}
