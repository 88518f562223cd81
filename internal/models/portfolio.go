package models

import "time"

// Portfolio represents a collection of positions reported in a single
// base currency.
type Portfolio struct {
	ID           int       `json:"id"`
	Owner        string    `json:"owner"`
	Name         string    `json:"name"`
	BaseCurrency string    `json:"base_currency"`
	CreatedAt    time.Time `json:"created_at"`
}
