package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PositionStatus marks whether a position still contributes to
// portfolio analytics.
type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "open"
	PositionStatusClosed PositionStatus = "closed"
)

// Valid reports whether the status is a known position status.
func (s PositionStatus) Valid() bool {
	switch s {
	case PositionStatusOpen, PositionStatusClosed:
		return true
	}
	return false
}

// Position represents a held quantity of one asset within a portfolio.
// Its valuation is always derived from current price and rate data and
// never stored on the position itself.
type Position struct {
	ID               int             `json:"id"`
	PortfolioID      int             `json:"portfolio_id"`
	Asset            Asset           `json:"asset"`
	Quantity         decimal.Decimal `json:"quantity"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	PurchaseCurrency string          `json:"purchase_currency"`
	PurchaseDate     time.Time       `json:"purchase_date"`
	Status           PositionStatus  `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Open reports whether the position contributes to analytics.
func (p *Position) Open() bool { return p.Status == PositionStatusOpen }

// Validate checks the invariants enforced at the data-entry boundary:
// positive quantity and cost, a purchase currency, a known status.
func (p *Position) Validate() error {
	if p.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("position quantity must be positive")
	}
	if p.AverageCost.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("position average cost must be positive")
	}
	if p.PurchaseCurrency == "" {
		return fmt.Errorf("position purchase currency is required")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("invalid position status: %s", p.Status)
	}
	return nil
}
