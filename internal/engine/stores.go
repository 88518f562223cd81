// Package engine computes currency-normalized portfolio valuations and
// derived analytics from already-persisted price and rate data. Every
// operation is a pure function of the supplied snapshot, the store
// state, and the requested dates; the engine never writes and never
// fetches market data on its own.
package engine

import (
	"context"
	"time"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// PriceStore provides recorded closing prices. Absent data is returned
// as (nil, nil), not as an error.
type PriceStore interface {
	// PriceBarOn returns the bar for the asset on exactly that date.
	PriceBarOn(ctx context.Context, assetID int, on time.Time) (*models.PriceBar, error)

	// LatestPriceBarOnOrBefore returns the most recent bar with
	// date <= on.
	LatestPriceBarOnOrBefore(ctx context.Context, assetID int, on time.Time) (*models.PriceBar, error)
}

// RateStore provides recorded exchange rates. Absent data is returned
// as (nil, nil), not as an error.
type RateStore interface {
	// RateOn returns the rate for (from, to) on exactly that date.
	RateOn(ctx context.Context, from, to string, on time.Time) (*models.FxRate, error)

	// LatestRateWithin returns the most recent rate for (from, to)
	// with date in [on - windowDays, on]. Used only for the same-day
	// fallback.
	LatestRateWithin(ctx context.Context, from, to string, on time.Time, windowDays int) (*models.FxRate, error)
}

// Day truncates a timestamp to its UTC calendar date. All store
// lookups and date comparisons in the engine operate on day
// granularity.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
