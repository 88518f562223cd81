package engine

import (
	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// maxHHI is the Herfindahl-Hirschman index of a portfolio fully
// concentrated in one group (100^2).
var maxHHI = decimal.NewFromInt(10000)

// DiversityScore derives a 0-100 concentration score from an
// allocation-by-class breakdown. 100 means a perfectly even split
// across the present groups; 0 means full concentration. A single
// group or an empty allocation scores 0.
func DiversityScore(alloc map[models.AssetClass]models.AllocationSlice) decimal.Decimal {
	groupCount := len(alloc)
	if groupCount <= 1 {
		return decimal.Zero
	}

	hhi := decimal.Zero
	for _, s := range alloc {
		hhi = hhi.Add(s.Percentage.Mul(s.Percentage))
	}
	if hhi.GreaterThanOrEqual(maxHHI) {
		return decimal.Zero
	}

	minHHI := maxHHI.Div(decimal.NewFromInt(int64(groupCount)))
	score := maxHHI.Sub(hhi).Div(maxHHI.Sub(minHHI)).Mul(hundred)
	if score.GreaterThan(hundred) {
		score = hundred
	}
	return score.Round(2)
}
