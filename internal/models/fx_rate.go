package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate represents a recorded conversion rate from one currency to
// another on a specific date. One rate exists per (from, to, date) and
// the rate is always positive.
type FxRate struct {
	ID           int             `json:"id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Date         time.Time       `json:"date"`
	Rate         decimal.Decimal `json:"rate"`
	CreatedAt    time.Time       `json:"created_at"`
}
