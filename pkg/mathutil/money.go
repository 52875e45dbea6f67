package mathutil

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	moneyStrip    = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "", "\"", "")
	parenthesized = regexp.MustCompile(`^\((.+)\)$`)
)

// ParseMoney reads "$1,234.50", "(250.00)" or "-12". Unparseable input is 0.
func ParseMoney(s string) decimal.Decimal {
	cleaned := moneyStrip.Replace(s)
	if cleaned == "" {
		return decimal.Zero
	}
	if m := parenthesized.FindStringSubmatch(cleaned); m != nil {
		cleaned = "-" + m[1]
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
