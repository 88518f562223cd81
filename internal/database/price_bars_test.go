package database

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizk/portfolio-analytics/internal/models"
)

func mustCreateAsset(t *testing.T, testDB *TestDB, symbol string) *models.Asset {
	t.Helper()
	asset := &models.Asset{
		Symbol:   symbol,
		Name:     symbol + " Inc",
		Class:    models.AssetClassStock,
		Currency: "USD",
		Exchange: "NASDAQ",
	}
	require.NoError(t, testDB.CreateAsset(context.Background(), asset))
	return asset
}

func TestPriceBarRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("CreatePriceBar creates new record", func(t *testing.T) {
		testDB.TruncateAll(t)
		asset := mustCreateAsset(t, testDB, "AAPL")

		priceBar := &models.PriceBar{
			AssetID:  asset.ID,
			Date:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Close:    decimal.NewFromFloat(177.25),
			Currency: "USD",
		}

		err := testDB.CreatePriceBar(ctx, priceBar)
		require.NoError(t, err)
		assert.NotZero(t, priceBar.ID)
	})

	t.Run("CreatePriceBar upserts on conflict", func(t *testing.T) {
		testDB.TruncateAll(t)
		asset := mustCreateAsset(t, testDB, "AAPL")

		date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		first := &models.PriceBar{AssetID: asset.ID, Date: date, Close: decimal.NewFromFloat(177.25), Currency: "USD"}
		require.NoError(t, testDB.CreatePriceBar(ctx, first))

		second := &models.PriceBar{AssetID: asset.ID, Date: date, Close: decimal.NewFromFloat(179.00), Currency: "USD"}
		require.NoError(t, testDB.CreatePriceBar(ctx, second))

		retrieved, err := testDB.PriceBarOn(ctx, asset.ID, date)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.True(t, decimal.NewFromFloat(179.00).Equal(retrieved.Close))
	})

	t.Run("CreatePriceBarBatch inserts multiple records", func(t *testing.T) {
		testDB.TruncateAll(t)
		asset := mustCreateAsset(t, testDB, "AAPL")

		bars := []*models.PriceBar{
			{AssetID: asset.ID, Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(177), Currency: "USD"},
			{AssetID: asset.ID, Date: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(179), Currency: "USD"},
			{AssetID: asset.ID, Date: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(181), Currency: "USD"},
		}
		require.NoError(t, testDB.CreatePriceBarBatch(ctx, bars))

		retrieved, err := testDB.PriceBarRange(ctx, asset.ID,
			time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Len(t, retrieved, 3)
	})

	t.Run("PriceBarOn returns nil for missing date", func(t *testing.T) {
		testDB.TruncateAll(t)
		asset := mustCreateAsset(t, testDB, "GOOGL")

		retrieved, err := testDB.PriceBarOn(ctx, asset.ID, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("LatestPriceBarOnOrBefore skips later bars", func(t *testing.T) {
		testDB.TruncateAll(t)
		asset := mustCreateAsset(t, testDB, "GOOGL")

		for day, close := range map[int]float64{10: 140, 12: 142, 20: 150} {
			bar := &models.PriceBar{
				AssetID:  asset.ID,
				Date:     time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
				Close:    decimal.NewFromFloat(close),
				Currency: "USD",
			}
			require.NoError(t, testDB.CreatePriceBar(ctx, bar))
		}

		retrieved, err := testDB.LatestPriceBarOnOrBefore(ctx, asset.ID, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.True(t, decimal.NewFromFloat(142).Equal(retrieved.Close))
	})

	t.Run("DeletePriceBarsOlderThan removes old records", func(t *testing.T) {
		testDB.TruncateAll(t)
		asset := mustCreateAsset(t, testDB, "AAPL")

		bars := []*models.PriceBar{
			{AssetID: asset.ID, Date: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(150), Currency: "USD"},
			{AssetID: asset.ID, Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(177), Currency: "USD"},
		}
		require.NoError(t, testDB.CreatePriceBarBatch(ctx, bars))

		deleted, err := testDB.DeletePriceBarsOlderThan(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}
