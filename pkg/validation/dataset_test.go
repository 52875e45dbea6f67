package validation

import (
	"testing"

	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/testutil"
)

func TestDatasetWarningsClean(t *testing.T) {
	warnings := DatasetWarnings(testutil.SamplePL(), ledger.DefaultHeadcount())
	if len(warnings) != 0 {
		t.Errorf("DatasetWarnings() = %v, expected none", warnings)
	}
}

func TestDatasetWarnings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(pl ledger.PLData, hc ledger.HeadcountData)
		expected []string
	}{
		{
			name: "Unknown entity",
			mutate: func(pl ledger.PLData, _ ledger.HeadcountData) {
				pl["Atlantis"] = ledger.NewEntityPL(true)
			},
			expected: []string{"Entity 'Atlantis' is not a known location and will be ignored"},
		},
		{
			name: "Corporate revenue",
			mutate: func(pl ledger.PLData, _ ledger.HeadcountData) {
				pl[constants.Corporate].Revenue = ledger.MonthAmounts{"Jan": 5}
			},
			expected: []string{"Corporate revenue is ignored by the analysis"},
		},
		{
			name: "Unknown month",
			mutate: func(pl ledger.PLData, _ ledger.HeadcountData) {
				pl["Newport"].Revenue["January"] = 5
			},
			expected: []string{"Entity 'Newport' has data for unknown month 'January'"},
		},
		{
			name: "Non-catalog category",
			mutate: func(pl ledger.PLData, _ ledger.HeadcountData) {
				pl["Newport"].Expenses["Mar"]["Freight"] = 40
			},
			expected: []string{"Entity 'Newport' expenses category 'Freight' is not in the catalog and is excluded from the scorecard"},
		},
		{
			name: "Negative amount",
			mutate: func(pl ledger.PLData, _ ledger.HeadcountData) {
				pl["Newport"].COGS["Mar"]["Clinical Supplies"] = -40
			},
			expected: []string{"Entity 'Newport' cogs category 'Clinical Supplies' has negative amounts"},
		},
		{
			name: "Revenue without clinicians",
			mutate: func(pl ledger.PLData, hc ledger.HeadcountData) {
				hc["Newport"] = map[string]int{constants.RoleFrontDesk: 2}
			},
			expected: []string{"Location 'Newport' has revenue but no clinical headcount; per-clinician metrics will be zero"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := testutil.SamplePL()
			hc := ledger.DefaultHeadcount()
			tt.mutate(pl, hc)

			got := DatasetWarnings(pl, hc)
			if len(got) != len(tt.expected) {
				t.Fatalf("DatasetWarnings() = %v, expected %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("DatasetWarnings()[%d] = %q, expected %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}
