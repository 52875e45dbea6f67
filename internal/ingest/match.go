package ingest

import (
	"regexp"
	"strings"

	"github.com/iwvelando/pnl-analysis/internal/ledger"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalize lowercases and collapses anything non-alphanumeric to single
// spaces.
func normalize(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
}

type keyword struct {
	needle   string
	category string
}

// Fallback keywords for common QuickBooks account names, checked in order
// after direct matching fails. Every target is a catalog category.
var (
	cogsKeywords = []keyword{
		{"supplies", "Clinical Supplies"},
		{"merchant", "Merchant Service Fees"},
		{"shipping", "Equipment Tax & Shipping"},
		{"equipment", "Equipment Tax & Shipping"},
		{"director", "Medical Director"},
	}
	expenseKeywords = []keyword{
		{"payroll tax", "Labor - Payroll Taxes"},
		{"payroll", "Payroll Fees"},
		{"rent", "Rent & Lease"},
		{"lease", "Rent & Lease"},
		{"utilities", "Utilities"},
		{"telephone", "Utilities"},
		{"insurance", "Insurance"},
		{"office", "Office Expenses"},
		{"repairs", "Repairs & Maintenance"},
		{"advertising", "Marketing"},
		{"marketing", "Marketing"},
		{"professional fees", "Professional Fees"},
		{"legal", "Professional Fees"},
		{"accounting", "Professional Fees"},
		{"travel", "Travel"},
		{"meals", "Meals & Entertainment"},
		{"dues", "Dues & Memberships"},
		{"subscriptions", "Technology & Software"},
		{"bank", "Bank Charges"},
		{"software", "Technology & Software"},
		{"continuing ed", "Professional Development"},
		{"contract labor", "Subcontractor Services"},
		{"billing", "Labor - Billing"},
		{"benefits", "Employee Benefits"},
		{"auto", "Automobile"},
		{"donation", "Charitable Contributions"},
		{"misc", "Miscellaneous"},
	}
)

// MatchCategory maps an account label onto a catalog category of kind.
// An exact or containing match on the normalized names wins; otherwise the
// first fallback keyword found in the label decides.
func MatchCategory(label string, kind ledger.Kind) (string, bool) {
	n := normalize(label)
	if n == "" {
		return "", false
	}
	for _, cat := range kind.Categories() {
		nc := normalize(cat)
		if n == nc || strings.Contains(n, nc) || strings.Contains(nc, n) {
			return cat, true
		}
	}

	keywords := expenseKeywords
	if kind == ledger.KindCOGS {
		keywords = cogsKeywords
	}
	for _, k := range keywords {
		if strings.Contains(n, k.needle) {
			return k.category, true
		}
	}
	return "", false
}
