package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// PositionValuation pairs a position with its valuation result.
type PositionValuation struct {
	Position *models.Position
	Result   *ValuationResult
}

// Totals holds full-precision portfolio sums.
type Totals struct {
	Value            decimal.Decimal
	Cost             decimal.Decimal
	ProfitLoss       decimal.Decimal
	ReturnPercentage decimal.Decimal
}

// PortfolioAggregator sums and ranks the valuations of a portfolio's
// open positions.
type PortfolioAggregator struct {
	valuator *PositionValuator
}

// NewPortfolioAggregator creates an aggregator over the given valuator.
func NewPortfolioAggregator(valuator *PositionValuator) *PortfolioAggregator {
	return &PortfolioAggregator{valuator: valuator}
}

// Valuations computes current valuations for all open positions.
// Positions without any price history are excluded from the results and
// returned separately so the caller can escalate a fetch for them; an
// unavailable exchange rate propagates as an error.
func (a *PortfolioAggregator) Valuations(ctx context.Context, positions []*models.Position, base string, asOf time.Time) ([]PositionValuation, []*models.Position, error) {
	var vals []PositionValuation
	var unpriced []*models.Position
	for _, pos := range positions {
		if !pos.Open() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		res, err := a.valuator.Valuate(ctx, pos, base, asOf, asOf)
		if err != nil {
			if errors.Is(err, ErrPriceUnavailable) {
				unpriced = append(unpriced, pos)
				continue
			}
			return nil, nil, err
		}
		vals = append(vals, PositionValuation{Position: pos, Result: res})
	}
	return vals, unpriced, nil
}

// TotalsOf sums the supplied valuations. The return percentage is 0
// when total cost is 0.
func (a *PortfolioAggregator) TotalsOf(vals []PositionValuation) Totals {
	t := Totals{Value: decimal.Zero, Cost: decimal.Zero, ProfitLoss: decimal.Zero, ReturnPercentage: decimal.Zero}
	for _, v := range vals {
		t.Value = t.Value.Add(v.Result.Value)
		t.Cost = t.Cost.Add(v.Result.CostBasis)
	}
	t.ProfitLoss = t.Value.Sub(t.Cost)
	if !t.Cost.IsZero() {
		t.ReturnPercentage = t.ProfitLoss.Div(t.Cost).Mul(hundred)
	}
	return t
}

// AllocationByClass groups valuations by asset class. An empty map is
// returned when total value is 0, since no allocation is defined.
func (a *PortfolioAggregator) AllocationByClass(vals []PositionValuation) map[models.AssetClass]models.AllocationSlice {
	groups := make(map[models.AssetClass]models.AllocationSlice)
	for _, v := range vals {
		s := groups[v.Position.Asset.Class]
		s.Value = s.Value.Add(v.Result.Value)
		s.Count++
		groups[v.Position.Asset.Class] = s
	}
	return finishAllocation(groups, totalValue(vals))
}

// AllocationByCurrency groups valuations by the asset's native
// currency.
func (a *PortfolioAggregator) AllocationByCurrency(vals []PositionValuation) map[string]models.AllocationSlice {
	groups := make(map[string]models.AllocationSlice)
	for _, v := range vals {
		s := groups[v.Position.Asset.Currency]
		s.Value = s.Value.Add(v.Result.Value)
		s.Count++
		groups[v.Position.Asset.Currency] = s
	}
	return finishAllocation(groups, totalValue(vals))
}

func totalValue(vals []PositionValuation) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vals {
		total = total.Add(v.Result.Value)
	}
	return total
}

func finishAllocation[K comparable](groups map[K]models.AllocationSlice, total decimal.Decimal) map[K]models.AllocationSlice {
	if total.IsZero() {
		return map[K]models.AllocationSlice{}
	}
	for key, s := range groups {
		s.Percentage = s.Value.Div(total).Mul(hundred).Round(2)
		s.Value = s.Value.Round(2)
		groups[key] = s
	}
	return groups
}

// TopPerformers returns up to n entries with strictly positive profit
// loss, ordered by profit/loss percentage descending. Ties break on
// ascending position ID.
func (a *PortfolioAggregator) TopPerformers(vals []PositionValuation, n int) []models.PerformerEntry {
	var winners []PositionValuation
	for _, v := range vals {
		if v.Result.ProfitLoss.IsPositive() {
			winners = append(winners, v)
		}
	}
	sort.Slice(winners, func(i, j int) bool {
		cmp := winners[i].Result.ProfitLossPercentage.Cmp(winners[j].Result.ProfitLossPercentage)
		if cmp != 0 {
			return cmp > 0
		}
		return winners[i].Position.ID < winners[j].Position.ID
	})
	return performerEntries(winners, n, totalValue(vals))
}

// WorstPerformers returns up to n entries with strictly negative profit
// loss, ordered by profit/loss percentage ascending. Ties break on
// ascending position ID.
func (a *PortfolioAggregator) WorstPerformers(vals []PositionValuation, n int) []models.PerformerEntry {
	var losers []PositionValuation
	for _, v := range vals {
		if v.Result.ProfitLoss.IsNegative() {
			losers = append(losers, v)
		}
	}
	sort.Slice(losers, func(i, j int) bool {
		cmp := losers[i].Result.ProfitLossPercentage.Cmp(losers[j].Result.ProfitLossPercentage)
		if cmp != 0 {
			return cmp < 0
		}
		return losers[i].Position.ID < losers[j].Position.ID
	})
	return performerEntries(losers, n, totalValue(vals))
}

// LargestPositions returns up to n entries ordered by value descending.
// Ties break on ascending position ID.
func (a *PortfolioAggregator) LargestPositions(vals []PositionValuation, n int) []models.PerformerEntry {
	sorted := make([]PositionValuation, len(vals))
	copy(sorted, vals)
	sort.Slice(sorted, func(i, j int) bool {
		cmp := sorted[i].Result.Value.Cmp(sorted[j].Result.Value)
		if cmp != 0 {
			return cmp > 0
		}
		return sorted[i].Position.ID < sorted[j].Position.ID
	})
	return performerEntries(sorted, n, totalValue(vals))
}

func performerEntries(vals []PositionValuation, n int, total decimal.Decimal) []models.PerformerEntry {
	if n < 0 {
		n = 0
	}
	if n < len(vals) {
		vals = vals[:n]
	}
	entries := make([]models.PerformerEntry, 0, len(vals))
	for _, v := range vals {
		weight := decimal.Zero
		if !total.IsZero() {
			weight = v.Result.Value.Div(total).Mul(hundred)
		}
		entries = append(entries, models.PerformerEntry{
			ID:                   v.Position.ID,
			AssetSymbol:          v.Position.Asset.Symbol,
			AssetName:            v.Position.Asset.Name,
			AssetClass:           v.Position.Asset.Class,
			Quantity:             v.Position.Quantity,
			CurrentValue:         v.Result.Value.Round(2),
			TotalCost:            v.Result.CostBasis.Round(2),
			ProfitLoss:           v.Result.ProfitLoss.Round(2),
			ProfitLossPercentage: v.Result.ProfitLossPercentage.Round(2),
			PortfolioWeight:      weight.Round(2),
		})
	}
	return entries
}
