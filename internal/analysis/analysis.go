// Package analysis turns raw monthly P&L records and headcount into
// per-location financials, cross-location rankings and a composite score.
//
// Every function here is pure: inputs are read, never retained or modified,
// and each call returns a freshly built result.
package analysis

import (
	"sort"

	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/mathutil"
)

// LocationResult holds the derived financials of one location over the
// selected months. Suffix D is direct, A is allocated. Percentages are
// fractions.
type LocationResult struct {
	Revenue    float64 `json:"revenue"`
	RevShare   float64 `json:"revShare"`
	COGSD      float64 `json:"cogsD"`
	COGSAlloc  float64 `json:"cogsAlloc"`
	COGSA      float64 `json:"cogsA"`
	GPD        float64 `json:"gpD"`
	GPA        float64 `json:"gpA"`
	ExpD       float64 `json:"expD"`
	ExpAlloc   float64 `json:"expAlloc"`
	ExpA       float64 `json:"expA"`
	NOID       float64 `json:"noiD"`
	NOIA       float64 `json:"noiA"`
	OID        float64 `json:"oiD"`
	OED        float64 `json:"oeD"`
	OIAlloc    float64 `json:"oiAlloc"`
	OEAlloc    float64 `json:"oeAlloc"`
	NID        float64 `json:"niD"`
	NIA        float64 `json:"niA"`
	GMPct      float64 `json:"gmPct"`
	NIPctD     float64 `json:"niPctD"`
	NIPctA     float64 `json:"niPctA"`
	CM         float64 `json:"cm"`
	CMPct      float64 `json:"cmPct"`
	BED        float64 `json:"beD"`
	BEA        float64 `json:"beA"`
	MoSD       float64 `json:"mosD"`
	MoSA       float64 `json:"mosA"`
	MoSPctD    float64 `json:"mosPctD"`
	MoSPctA    float64 `json:"mosPctA"`
	ClinHC     int     `json:"clinHC"`
	AllHC      int     `json:"allHC"`
	RevPerClin float64 `json:"revPerClin"`
	NIPerClinD float64 `json:"niPerClinD"`
	NIPerClinA float64 `json:"niPerClinA"`
}

// Result is a complete analysis snapshot.
type Result struct {
	Results    map[string]LocationResult `json:"results"`
	Rankings   map[string]map[Metric]int `json:"rankings"`
	Composite  map[string]float64        `json:"composite"`
	SortedLocs []string                  `json:"sortedLocs"`
	TotalRev   float64                   `json:"totalRev"`
	CorpCOGS   float64                   `json:"corpCogs"`
	CorpExp    float64                   `json:"corpExp"`
}

// Run computes the analysis for the selected months. An empty month
// selection yields all-zero sums.
func Run(pl ledger.PLData, hc ledger.HeadcountData, months []string) *Result {
	locations := constants.Locations

	totalRev := 0.0
	revenue := make(map[string]float64, len(locations))
	for _, loc := range locations {
		revenue[loc] = pl.SumRevenue(loc, months)
		totalRev += revenue[loc]
	}

	corp := constants.Corporate
	corpCOGS := pl.SumCatalog(ledger.KindCOGS, corp, months)
	corpExp := pl.SumCatalog(ledger.KindExpenses, corp, months)
	corpOI := pl.SumOtherIncome(corp, months)
	corpOE := pl.SumOtherExpense(corp, months)

	results := make(map[string]LocationResult, len(locations))
	for _, loc := range locations {
		rev := revenue[loc]
		r := LocationResult{
			Revenue:  rev,
			RevShare: mathutil.PositiveRatio(rev, totalRev),
			COGSD:    pl.SumCatalog(ledger.KindCOGS, loc, months),
			ExpD:     pl.SumCatalog(ledger.KindExpenses, loc, months),
			OID:      pl.SumOtherIncome(loc, months),
			OED:      pl.SumOtherExpense(loc, months),
		}

		r.COGSAlloc = corpCOGS * r.RevShare
		r.ExpAlloc = corpExp * r.RevShare
		r.OIAlloc = corpOI * r.RevShare
		r.OEAlloc = corpOE * r.RevShare
		r.COGSA = r.COGSD + r.COGSAlloc
		r.ExpA = r.ExpD + r.ExpAlloc

		r.GPD = rev - r.COGSD
		r.GPA = rev - r.COGSD - r.COGSAlloc
		r.NOID = r.GPD - r.ExpD
		r.NOIA = r.GPA - r.ExpD - r.ExpAlloc
		r.NID = r.NOID + r.OID - r.OED
		r.NIA = r.NOIA + r.OID - r.OED + r.OIAlloc - r.OEAlloc

		r.GMPct = mathutil.PositiveRatio(r.GPD, rev)
		r.NIPctD = mathutil.PositiveRatio(r.NID, rev)
		r.NIPctA = mathutil.PositiveRatio(r.NIA, rev)

		r.CM = rev - r.COGSD
		r.CMPct = mathutil.PositiveRatio(r.CM, rev)
		if r.CMPct > 0 {
			r.BED = r.ExpD / r.CMPct
			r.BEA = (r.ExpD + r.ExpAlloc) / r.CMPct
		}
		r.MoSD = rev - r.BED
		r.MoSA = rev - r.BEA
		r.MoSPctD = mathutil.PositiveRatio(r.MoSD, rev)
		r.MoSPctA = mathutil.PositiveRatio(r.MoSA, rev)

		r.ClinHC = hc.Clinical(loc)
		r.AllHC = hc.Total(loc)
		clin := float64(r.ClinHC)
		r.RevPerClin = mathutil.PositiveRatio(rev, clin)
		r.NIPerClinD = mathutil.PositiveRatio(r.NID, clin)
		r.NIPerClinA = mathutil.PositiveRatio(r.NIA, clin)

		results[loc] = r
	}

	rankings := make(map[string]map[Metric]int, len(locations))
	for _, loc := range locations {
		rankings[loc] = make(map[Metric]int, len(RankingMetrics))
	}
	for _, m := range RankingMetrics {
		for i, loc := range rankBy(locations, results, m) {
			rankings[loc][m] = i + 1
		}
	}

	composite := make(map[string]float64, len(locations))
	for _, loc := range locations {
		sum := 0
		for _, m := range RankingMetrics {
			sum += rankings[loc][m]
		}
		composite[loc] = float64(sum) / float64(len(RankingMetrics))
	}

	sorted := append([]string(nil), locations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return composite[sorted[i]] < composite[sorted[j]]
	})

	return &Result{
		Results:    results,
		Rankings:   rankings,
		Composite:  composite,
		SortedLocs: sorted,
		TotalRev:   totalRev,
		CorpCOGS:   corpCOGS,
		CorpExp:    corpExp,
	}
}

// rankBy orders locations best-first by metric. Exact ties keep the
// location catalog order.
func rankBy(locations []string, results map[string]LocationResult, m Metric) []string {
	ordered := append([]string(nil), locations...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return m.Value(results[ordered[i]]) > m.Value(results[ordered[j]])
	})
	return ordered
}

// Location returns the result for one location and whether it exists.
func (r *Result) Location(loc string) (LocationResult, bool) {
	if r == nil {
		return LocationResult{}, false
	}
	lr, ok := r.Results[loc]
	return lr, ok
}

// Summary is the company-wide row shown above the location detail.
type Summary struct {
	Revenue     float64 `json:"revenue"`
	NIDirect    float64 `json:"niDirect"`
	NIAllocated float64 `json:"niAllocated"`
	ClinicalHC  int     `json:"clinicalHC"`
}

// Totals sums revenue, net income and clinical headcount across locations.
func (r *Result) Totals() Summary {
	var s Summary
	if r == nil {
		return s
	}
	for _, lr := range r.Results {
		s.Revenue += lr.Revenue
		s.NIDirect += lr.NID
		s.NIAllocated += lr.NIA
		s.ClinicalHC += lr.ClinHC
	}
	return s
}

// Grade converts a composite score to a letter by its position in the field
// of numLocs locations.
func Grade(composite float64, numLocs int) string {
	if numLocs <= 0 {
		return "-"
	}
	p := composite / float64(numLocs)
	switch {
	case p <= 0.25:
		return "A"
	case p <= 0.5:
		return "B"
	case p <= 0.75:
		return "C"
	default:
		return "D"
	}
}
