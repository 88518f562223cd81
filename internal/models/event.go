package models

import "time"

// Market data event types consumed from Kafka.
const (
	EventTypePriceRecorded = "PRICE_RECORDED"
	EventTypeRateRecorded  = "RATE_RECORDED"
)

// Fetch escalation event types published to Kafka.
const (
	EventTypePriceFetchRequested = "PRICE_FETCH_REQUESTED"
	EventTypeRateFetchRequested  = "RATE_FETCH_REQUESTED"
)

// PricePayload carries one recorded closing price. Numeric fields are
// strings so producers in other languages keep full precision.
type PricePayload struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Date     string `json:"date"` // YYYY-MM-DD
	Close    string `json:"close"`
	Currency string `json:"currency"`
}

// RatePayload carries one recorded exchange rate.
type RatePayload struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
	Date         string `json:"date"` // YYYY-MM-DD
	Rate         string `json:"rate"`
}

// MarketDataEvent is the envelope for price and rate records arriving
// from the external fetcher.
type MarketDataEvent struct {
	EventType string        `json:"event_type"`
	Source    string        `json:"source"`
	Price     *PricePayload `json:"price,omitempty"`
	Rate      *RatePayload  `json:"rate,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// FetchRequestEvent asks the external fetcher to backfill a missing
// price or rate. The engine never publishes these itself; callers do
// after an unavailable result.
type FetchRequestEvent struct {
	EventType    string    `json:"event_type"`
	Symbol       string    `json:"symbol,omitempty"`
	Exchange     string    `json:"exchange,omitempty"`
	FromCurrency string    `json:"from_currency,omitempty"`
	ToCurrency   string    `json:"to_currency,omitempty"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Timestamp    time.Time `json:"timestamp"`
}
