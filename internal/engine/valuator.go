package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ValuationResult is a position's value, cost basis and profit/loss in
// the portfolio's base currency as of a date. It is computed on demand
// and never stored; all fields carry full precision, rounding happens
// at presentation boundaries.
type ValuationResult struct {
	Value                decimal.Decimal
	CostBasis            decimal.Decimal
	ProfitLoss           decimal.Decimal
	ProfitLossPercentage decimal.Decimal
	PriceDate            time.Time
}

// PositionValuator computes single-position valuations from price bars
// and exchange rates.
type PositionValuator struct {
	prices PriceStore
	fx     *CurrencyConverter
}

// NewPositionValuator creates a valuator over the given price store and
// converter.
func NewPositionValuator(prices PriceStore, fx *CurrencyConverter) *PositionValuator {
	return &PositionValuator{prices: prices, fx: fx}
}

// Valuate computes the position's valuation in base as of the given
// date. The close on exactly that date is used when present, otherwise
// the most recent close before it. A missing price yields
// ErrPriceUnavailable; a missing rate for either the value or the cost
// basis yields ErrRateUnavailable.
func (v *PositionValuator) Valuate(ctx context.Context, pos *models.Position, base string, on, asOf time.Time) (*ValuationResult, error) {
	on = Day(on)

	bar, err := v.prices.PriceBarOn(ctx, pos.Asset.ID, on)
	if err != nil {
		return nil, fmt.Errorf("price lookup for %s: %w", pos.Asset.Symbol, err)
	}
	if bar == nil {
		bar, err = v.prices.LatestPriceBarOnOrBefore(ctx, pos.Asset.ID, on)
		if err != nil {
			return nil, fmt.Errorf("price lookup for %s: %w", pos.Asset.Symbol, err)
		}
	}
	if bar == nil {
		return nil, &PriceUnavailableError{AssetID: pos.Asset.ID, Symbol: pos.Asset.Symbol, Date: on}
	}

	nativeValue := pos.Quantity.Mul(bar.Close)
	value, err := v.fx.Convert(ctx, nativeValue, pos.Asset.Currency, base, on, asOf)
	if err != nil {
		return nil, fmt.Errorf("value of position %d: %w", pos.ID, err)
	}

	nativeCost := pos.Quantity.Mul(pos.AverageCost)
	costBasis, err := v.fx.Convert(ctx, nativeCost, pos.PurchaseCurrency, base, on, asOf)
	if err != nil {
		return nil, fmt.Errorf("cost basis of position %d: %w", pos.ID, err)
	}

	profitLoss := value.Sub(costBasis)
	profitLossPct := decimal.Zero
	if !costBasis.IsZero() {
		profitLossPct = profitLoss.Div(costBasis).Mul(hundred)
	}

	return &ValuationResult{
		Value:                value,
		CostBasis:            costBasis,
		ProfitLoss:           profitLoss,
		ProfitLossPercentage: profitLossPct,
		PriceDate:            bar.Date,
	}, nil
}
