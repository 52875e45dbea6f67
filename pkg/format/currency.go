// Package format renders amounts and ratios for display. Amounts round to
// whole currency units and ratios are stored as fractions, so formatting is
// the only place a value is multiplied by 100.
package format

import (
	"math"
	"strings"

	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns an accounting-style whole-unit amount: "$1,234" or
// "($1,234)" for negatives. Non-finite values render as "-".
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	formatted := "$" + printer.Sprintf("%.0f", math.Abs(amount))
	if amount < 0 && formatted != "$0" {
		return "(" + formatted + ")"
	}
	return formatted
}

// SignedCurrency returns a whole-unit amount with a leading minus for
// negatives, e.g. "-$1,234".
func SignedCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	formatted := "$" + printer.Sprintf("%.0f", math.Abs(amount))
	if amount < 0 && formatted != "$0" {
		return "-" + formatted
	}
	return formatted
}

// Percent renders a fraction as a percentage with one decimal: 0.153 -> "15.3%".
func Percent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return "-"
	}
	return printer.Sprintf("%.1f%%", ratio*constants.PercentageMultiplier)
}

// Number renders a plain number with thousands separators and up to three
// decimals, trimming trailing zeros: 1234.5 -> "1,234.5".
func Number(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "-"
	}
	formatted := printer.Sprintf("%.3f", value)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimSuffix(formatted, ".")
	if formatted == "-0" {
		return "0"
	}
	return formatted
}
