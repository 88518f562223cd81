package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// rateFallbackWindowDays bounds the lookback for the same-day fallback,
// which accommodates non-trading days. The fallback never applies to
// historical dates.
const rateFallbackWindowDays = 1

var one = decimal.NewFromInt(1)

// CurrencyConverter resolves exchange rates between two currencies for
// a given date. Lookup order: direct rate, inverse rate, and, only when
// the requested date is the as-of date, the most recent rate within the
// previous day.
type CurrencyConverter struct {
	rates RateStore
}

// NewCurrencyConverter creates a converter backed by the given store.
func NewCurrencyConverter(rates RateStore) *CurrencyConverter {
	return &CurrencyConverter{rates: rates}
}

// Rate returns how many units of to one unit of from buys on the given
// date. asOf is the date the overall computation is anchored to; the
// window fallback applies only when on falls on the same day.
func (c *CurrencyConverter) Rate(ctx context.Context, from, to string, on, asOf time.Time) (decimal.Decimal, error) {
	if from == to {
		return one, nil
	}
	on = Day(on)

	direct, err := c.rates.RateOn(ctx, from, to, on)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rate lookup %s/%s: %w", from, to, err)
	}
	if direct != nil {
		return direct.Rate, nil
	}

	inverse, err := c.rates.RateOn(ctx, to, from, on)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rate lookup %s/%s: %w", to, from, err)
	}
	if inverse != nil {
		return one.Div(inverse.Rate), nil
	}

	if on.Equal(Day(asOf)) {
		recent, err := c.rates.LatestRateWithin(ctx, from, to, on, rateFallbackWindowDays)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("rate window lookup %s/%s: %w", from, to, err)
		}
		if recent != nil {
			return recent.Rate, nil
		}
	}

	return decimal.Decimal{}, &RateUnavailableError{From: from, To: to, Date: on}
}

// Convert expresses amount in the to currency. Matching currencies and
// zero amounts pass through without a lookup.
func (c *CurrencyConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string, on, asOf time.Time) (decimal.Decimal, error) {
	if from == to || amount.IsZero() {
		return amount, nil
	}
	rate, err := c.Rate(ctx, from, to, on, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(rate), nil
}
