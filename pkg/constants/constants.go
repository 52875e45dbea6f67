// Package constants provides shared constants for the pnl-analysis application.
package constants

// Corporate is the pseudo-location that holds shared overhead. It has no
// revenue and its costs are allocated to the locations by revenue share.
const Corporate = "Corporate"

// Locations is the fixed, ordered set of reporting locations. Iteration order
// here is the tie-break order used by the scorecard rankings.
var Locations = []string{
	"Bean Station", "Jefferson City", "Johnson City", "Maryville",
	"Morristown", "New Tazewell", "Newport", "Rogersville",
}

// Months is the fiscal month catalog.
var Months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Staff roles.
const (
	RolePT        = "PT"
	RolePTA       = "PTA"
	RoleOT        = "OT"
	RoleCOTA      = "COTA"
	RoleTech      = "TECH"
	RoleFrontDesk = "FD"
)

// StaffRoles lists every headcount role.
var StaffRoles = []string{RolePT, RolePTA, RoleOT, RoleCOTA, RoleTech, RoleFrontDesk}

// ClinicalRoles lists the roles counted as clinicians (everything but front desk).
var ClinicalRoles = []string{RolePT, RolePTA, RoleOT, RoleCOTA, RoleTech}

// COGSCategories is the fixed cost-of-goods-sold category catalog.
var COGSCategories = []string{
	"Clinical Supplies", "COTA Wages & Taxes", "Equipment Tax & Shipping",
	"Medical Director", "Merchant Service Fees", "OT Wages & Taxes",
	"PTA Wages & Taxes", "PT Wages & Taxes", "TECH Wages & Taxes",
}

// ExpenseCategories is the fixed operating expense category catalog.
var ExpenseCategories = []string{
	"Subcontractor Services", "Labor - Admin", "Labor - Billing", "Labor - Front Desk",
	"Labor - Marketing", "Labor - Owner", "Labor - Payroll Taxes", "Labor - Referral Dept",
	"Employee Benefits", "Additional Employee Expenses", "Automobile", "Bank Charges",
	"Dues & Memberships", "Insurance", "Marketing", "Office Expenses",
	"Professional Development", "Professional Fees", "Rent & Lease", "Utilities",
	"Technology & Software", "Charitable Contributions", "Meals & Entertainment",
	"Travel", "IT Services", "Payroll Fees", "Repairs & Maintenance", "Miscellaneous",
}

// Payroll constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PayrollTaxRate is the flat estimate applied to gross pay. It is an
	// approximation, not a withholding calculation.
	PayrollTaxRate = 0.22

	// OvertimeMultiplier is applied to the hourly rate for overtime hours
	OvertimeMultiplier = 1.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatXLSX is the Excel workbook output format
	OutputFormatXLSX = "xlsx"
)

// Dataset source constants
const (
	// DatasetSourceFile reads a YAML dataset from disk
	DatasetSourceFile = "file"

	// DatasetSourcePostgres reads the dataset from PostgreSQL
	DatasetSourcePostgres = "postgres"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultXLSXFile is the default workbook path for xlsx output
	DefaultXLSXFile = "pnl-report.xlsx"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for CSV imports (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long a cached analysis snapshot lives
	DefaultCacheTTLSeconds = 300
)

// Percentage constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// DefaultHeadcount is the starting roster per location.
var DefaultHeadcount = map[string]map[string]int{
	"Bean Station":   {RolePT: 1, RolePTA: 2, RoleOT: 1, RoleCOTA: 1, RoleTech: 1, RoleFrontDesk: 2},
	"Jefferson City": {RolePT: 2, RolePTA: 1, RoleOT: 2, RoleCOTA: 0, RoleTech: 1, RoleFrontDesk: 1},
	"Johnson City":   {RolePT: 0, RolePTA: 0, RoleOT: 0, RoleCOTA: 0, RoleTech: 0, RoleFrontDesk: 0},
	"Maryville":      {RolePT: 2, RolePTA: 1, RoleOT: 1, RoleCOTA: 0, RoleTech: 1, RoleFrontDesk: 1},
	"Morristown":     {RolePT: 4, RolePTA: 2, RoleOT: 3, RoleCOTA: 1, RoleTech: 2, RoleFrontDesk: 2},
	"New Tazewell":   {RolePT: 2, RolePTA: 1, RoleOT: 1, RoleCOTA: 0, RoleTech: 1, RoleFrontDesk: 1},
	"Newport":        {RolePT: 2, RolePTA: 2, RoleOT: 2, RoleCOTA: 1, RoleTech: 1, RoleFrontDesk: 1},
	"Rogersville":    {RolePT: 1, RolePTA: 1, RoleOT: 2, RoleCOTA: 0, RoleTech: 1, RoleFrontDesk: 2},
}

// IsLocation reports whether name is one of the fixed locations.
func IsLocation(name string) bool {
	for _, loc := range Locations {
		if loc == name {
			return true
		}
	}
	return false
}

// IsMonth reports whether name is one of the fiscal months.
func IsMonth(name string) bool {
	for _, m := range Months {
		if m == name {
			return true
		}
	}
	return false
}
