package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizk/portfolio-analytics/internal/models"
)

func newValuator(prices *memPriceStore, rates *memRateStore) *PositionValuator {
	return NewPositionValuator(prices, NewCurrencyConverter(rates))
}

func TestPositionValuator(t *testing.T) {
	ctx := context.Background()
	asOf := day("2024-06-14")

	t.Run("single currency position", func(t *testing.T) {
		// quantity=10, avg cost=100 USD, latest close=120 USD, base USD.
		v := newValuator(
			&memPriceStore{bars: []*models.PriceBar{bar(1, "2024-06-14", 120, "USD")}},
			&memRateStore{},
		)
		pos := position(1, 1, "AAPL", models.AssetClassStock, "USD", 10, 100, "USD")

		res, err := v.Valuate(ctx, pos, "USD", asOf, asOf)
		require.NoError(t, err)
		assert.True(t, res.Value.Equal(decimal.NewFromInt(1200)), "value = %s", res.Value)
		assert.True(t, res.CostBasis.Equal(decimal.NewFromInt(1000)))
		assert.True(t, res.ProfitLoss.Equal(decimal.NewFromInt(200)))
		assert.True(t, res.ProfitLossPercentage.Equal(decimal.NewFromInt(20)))
	})

	t.Run("converted position keeps its percentage", func(t *testing.T) {
		// Same position valued in TRY at USD/TRY=30.
		v := newValuator(
			&memPriceStore{bars: []*models.PriceBar{bar(1, "2024-06-14", 120, "USD")}},
			&memRateStore{rates: []*models.FxRate{fx("USD", "TRY", "2024-06-14", 30)}},
		)
		pos := position(1, 1, "AAPL", models.AssetClassStock, "USD", 10, 100, "USD")

		res, err := v.Valuate(ctx, pos, "TRY", asOf, asOf)
		require.NoError(t, err)
		assert.True(t, res.Value.Equal(decimal.NewFromInt(36000)))
		assert.True(t, res.CostBasis.Equal(decimal.NewFromInt(30000)))
		assert.True(t, res.ProfitLoss.Equal(decimal.NewFromInt(6000)))
		assert.True(t, res.ProfitLossPercentage.Equal(decimal.NewFromInt(20)))
	})

	t.Run("falls back to most recent close", func(t *testing.T) {
		v := newValuator(
			&memPriceStore{bars: []*models.PriceBar{
				bar(1, "2024-06-10", 110, "USD"),
				bar(1, "2024-06-12", 115, "USD"),
			}},
			&memRateStore{},
		)
		pos := position(1, 1, "AAPL", models.AssetClassStock, "USD", 10, 100, "USD")

		res, err := v.Valuate(ctx, pos, "USD", asOf, asOf)
		require.NoError(t, err)
		assert.True(t, res.Value.Equal(decimal.NewFromInt(1150)))
		assert.True(t, res.PriceDate.Equal(day("2024-06-12")))
	})

	t.Run("no price history yields ErrPriceUnavailable", func(t *testing.T) {
		v := newValuator(&memPriceStore{}, &memRateStore{})
		pos := position(1, 1, "AAPL", models.AssetClassStock, "USD", 10, 100, "USD")

		_, err := v.Valuate(ctx, pos, "USD", asOf, asOf)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPriceUnavailable))
	})

	t.Run("bars after the valuation date are ignored", func(t *testing.T) {
		v := newValuator(
			&memPriceStore{bars: []*models.PriceBar{bar(1, "2024-06-20", 200, "USD")}},
			&memRateStore{},
		)
		pos := position(1, 1, "AAPL", models.AssetClassStock, "USD", 10, 100, "USD")

		_, err := v.Valuate(ctx, pos, "USD", day("2024-06-14"), asOf)
		assert.True(t, errors.Is(err, ErrPriceUnavailable))
	})

	t.Run("missing cost basis rate propagates", func(t *testing.T) {
		// Value converts (USD->TRY present) but the GBP purchase
		// currency cannot be converted.
		v := newValuator(
			&memPriceStore{bars: []*models.PriceBar{bar(1, "2024-06-14", 120, "USD")}},
			&memRateStore{rates: []*models.FxRate{fx("USD", "TRY", "2024-06-14", 30)}},
		)
		pos := position(1, 1, "AAPL", models.AssetClassStock, "USD", 10, 100, "GBP")

		_, err := v.Valuate(ctx, pos, "TRY", asOf, asOf)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRateUnavailable))
		assert.Contains(t, err.Error(), "cost basis")
	})

	t.Run("zero cost basis yields zero percentage", func(t *testing.T) {
		v := newValuator(
			&memPriceStore{bars: []*models.PriceBar{bar(1, "2024-06-14", 120, "USD")}},
			&memRateStore{},
		)
		pos := position(1, 1, "AAPL", models.AssetClassStock, "USD", 10, 100, "USD")
		pos.AverageCost = decimal.Zero

		res, err := v.Valuate(ctx, pos, "USD", asOf, asOf)
		require.NoError(t, err)
		assert.True(t, res.ProfitLossPercentage.IsZero())
	})

	t.Run("valuation is deterministic", func(t *testing.T) {
		v := newValuator(
			&memPriceStore{bars: []*models.PriceBar{bar(1, "2024-06-14", 123.45, "USD")}},
			&memRateStore{rates: []*models.FxRate{fx("USD", "TRY", "2024-06-14", 32.17)}},
		)
		pos := position(1, 1, "AAPL", models.AssetClassStock, "USD", 7, 98.76, "USD")

		first, err := v.Valuate(ctx, pos, "TRY", asOf, asOf)
		require.NoError(t, err)
		second, err := v.Valuate(ctx, pos, "TRY", asOf, asOf)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
