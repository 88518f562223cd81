package models

import (
	"fmt"
	"time"
)

// AssetClass categorizes an asset for allocation reporting.
type AssetClass string

const (
	AssetClassStock          AssetClass = "stock"
	AssetClassPreciousMetal  AssetClass = "precious_metal"
	AssetClassForex          AssetClass = "forex"
	AssetClassCryptocurrency AssetClass = "cryptocurrency"
	AssetClassETF            AssetClass = "etf"
	AssetClassBond           AssetClass = "bond"
)

// Valid reports whether the class is one of the known asset classes.
func (c AssetClass) Valid() bool {
	switch c {
	case AssetClassStock, AssetClassPreciousMetal, AssetClassForex,
		AssetClassCryptocurrency, AssetClassETF, AssetClassBond:
		return true
	}
	return false
}

// Asset represents a tradable instrument. Symbol is unique within its
// exchange.
type Asset struct {
	ID        int        `json:"id"`
	Symbol    string     `json:"symbol"`
	Name      string     `json:"name"`
	Class     AssetClass `json:"asset_class"`
	Currency  string     `json:"currency"`
	Exchange  string     `json:"exchange"`
	CreatedAt time.Time  `json:"created_at"`
}

// Validate checks the fields set at the data-entry boundary.
func (a *Asset) Validate() error {
	if a.Symbol == "" {
		return fmt.Errorf("asset symbol is required")
	}
	if a.Currency == "" {
		return fmt.Errorf("asset currency is required")
	}
	if !a.Class.Valid() {
		return fmt.Errorf("invalid asset class: %s", a.Class)
	}
	return nil
}
