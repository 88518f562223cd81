package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar represents the recorded closing price for an asset on a
// specific date. One bar exists per (asset, date).
type PriceBar struct {
	ID        int             `json:"id"`
	AssetID   int             `json:"asset_id"`
	Date      time.Time       `json:"date"`
	Close     decimal.Decimal `json:"close"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}
