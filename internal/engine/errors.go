package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateUnavailable marks a conversion for which no direct, inverse,
// or same-day fallback rate exists. Callers decide whether to exclude
// the contribution or escalate to the external fetcher.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ErrPriceUnavailable marks an asset with no price bar at or before
// the requested date. The position's contribution is excluded for that
// date; it is never fatal for the whole aggregate.
var ErrPriceUnavailable = errors.New("price unavailable")

// RateUnavailableError carries the pair and date of a failed rate
// lookup so callers can request a targeted backfill. It matches
// ErrRateUnavailable under errors.Is.
type RateUnavailableError struct {
	From string
	To   string
	Date time.Time
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("%s/%s on %s: %v", e.From, e.To, e.Date.Format("2006-01-02"), ErrRateUnavailable)
}

func (e *RateUnavailableError) Unwrap() error { return ErrRateUnavailable }

// PriceUnavailableError carries the asset and date of a failed price
// lookup. It matches ErrPriceUnavailable under errors.Is.
type PriceUnavailableError struct {
	AssetID int
	Symbol  string
	Date    time.Time
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Symbol, e.Date.Format("2006-01-02"), ErrPriceUnavailable)
}

func (e *PriceUnavailableError) Unwrap() error { return ErrPriceUnavailable }
