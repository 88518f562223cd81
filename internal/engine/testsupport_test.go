package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// memPriceStore is an in-memory PriceStore for engine tests.
type memPriceStore struct {
	bars []*models.PriceBar
}

func (s *memPriceStore) PriceBarOn(_ context.Context, assetID int, on time.Time) (*models.PriceBar, error) {
	on = Day(on)
	for _, b := range s.bars {
		if b.AssetID == assetID && b.Date.Equal(on) {
			return b, nil
		}
	}
	return nil, nil
}

func (s *memPriceStore) LatestPriceBarOnOrBefore(_ context.Context, assetID int, on time.Time) (*models.PriceBar, error) {
	on = Day(on)
	var best *models.PriceBar
	for _, b := range s.bars {
		if b.AssetID != assetID || b.Date.After(on) {
			continue
		}
		if best == nil || b.Date.After(best.Date) {
			best = b
		}
	}
	return best, nil
}

// memRateStore is an in-memory RateStore for engine tests.
type memRateStore struct {
	rates []*models.FxRate
}

func (s *memRateStore) RateOn(_ context.Context, from, to string, on time.Time) (*models.FxRate, error) {
	on = Day(on)
	for _, r := range s.rates {
		if r.FromCurrency == from && r.ToCurrency == to && r.Date.Equal(on) {
			return r, nil
		}
	}
	return nil, nil
}

func (s *memRateStore) LatestRateWithin(_ context.Context, from, to string, on time.Time, windowDays int) (*models.FxRate, error) {
	on = Day(on)
	floor := on.AddDate(0, 0, -windowDays)
	var best *models.FxRate
	for _, r := range s.rates {
		if r.FromCurrency != from || r.ToCurrency != to {
			continue
		}
		if r.Date.After(on) || r.Date.Before(floor) {
			continue
		}
		if best == nil || r.Date.After(best.Date) {
			best = r
		}
	}
	return best, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func bar(assetID int, date string, close float64, currency string) *models.PriceBar {
	return &models.PriceBar{
		AssetID:  assetID,
		Date:     day(date),
		Close:    decimal.NewFromFloat(close),
		Currency: currency,
	}
}

func fx(from, to, date string, rate float64) *models.FxRate {
	return &models.FxRate{
		FromCurrency: from,
		ToCurrency:   to,
		Date:         day(date),
		Rate:         decimal.NewFromFloat(rate),
	}
}

func position(id, assetID int, symbol string, class models.AssetClass, currency string, qty, avgCost float64, purchaseCurrency string) *models.Position {
	return &models.Position{
		ID:          id,
		PortfolioID: 1,
		Asset: models.Asset{
			ID:       assetID,
			Symbol:   symbol,
			Name:     symbol,
			Class:    class,
			Currency: currency,
			Exchange: "NASDAQ",
		},
		Quantity:         decimal.NewFromFloat(qty),
		AverageCost:      decimal.NewFromFloat(avgCost),
		PurchaseCurrency: purchaseCurrency,
		PurchaseDate:     day("2024-01-02"),
		Status:           models.PositionStatusOpen,
	}
}
