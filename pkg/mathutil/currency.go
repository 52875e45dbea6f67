// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/pnl-analysis/pkg/constants"
)

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Ratio divides numerator by denominator and returns 0 when the denominator
// is zero, so callers never see NaN or Inf.
func Ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// PositiveRatio is Ratio but only divides when denominator > 0.
func PositiveRatio(numerator, denominator float64) float64 {
	if denominator > 0 {
		return numerator / denominator
	}
	return 0
}

// ApplyPercentage scales value by (1 + percentage/100).
func ApplyPercentage(value, percentage float64) float64 {
	return value * (1 + percentage/constants.PercentageMultiplier)
}
