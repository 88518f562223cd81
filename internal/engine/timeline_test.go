package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizk/portfolio-analytics/internal/models"
)

func TestTimelineBuilder(t *testing.T) {
	ctx := context.Background()
	asOf := day("2024-06-14")

	builder := NewTimelineBuilder(newValuator(
		&memPriceStore{bars: []*models.PriceBar{
			bar(1, "2024-06-10", 100, "USD"),
			bar(1, "2024-06-11", 110, "USD"),
			bar(1, "2024-06-13", 130, "USD"),
		}},
		&memRateStore{},
	))
	positions := []*models.Position{
		position(1, 1, "AAPL", models.AssetClassStock, "USD", 10, 100, "USD"),
	}

	t.Run("one point per calendar day ascending", func(t *testing.T) {
		points, err := builder.Build(ctx, positions, "USD", day("2024-06-10"), day("2024-06-13"), asOf)
		require.NoError(t, err)
		require.Len(t, points, 4)
		for i := 1; i < len(points); i++ {
			assert.True(t, points[i].Date.After(points[i-1].Date))
		}
		assert.True(t, points[0].Value.Equal(decimal.NewFromInt(1000)))
		assert.True(t, points[1].Value.Equal(decimal.NewFromInt(1100)))
		// No bar on the 12th: carries the 11th's close.
		assert.True(t, points[2].Value.Equal(decimal.NewFromInt(1100)))
		assert.True(t, points[3].Value.Equal(decimal.NewFromInt(1300)))
	})

	t.Run("dates before any bar contribute nothing", func(t *testing.T) {
		points, err := builder.Build(ctx, positions, "USD", day("2024-06-08"), day("2024-06-10"), asOf)
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.True(t, points[0].Value.IsZero())
		assert.True(t, points[1].Value.IsZero())
		assert.True(t, points[2].Value.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("historical rate gaps exclude the position", func(t *testing.T) {
		b := NewTimelineBuilder(newValuator(
			&memPriceStore{bars: []*models.PriceBar{
				bar(1, "2024-06-10", 100, "USD"),
			}},
			&memRateStore{rates: []*models.FxRate{
				fx("USD", "TRY", "2024-06-11", 30),
			}},
		))
		points, err := b.Build(ctx, positions, "TRY", day("2024-06-10"), day("2024-06-11"), asOf)
		require.NoError(t, err)
		require.Len(t, points, 2)
		// No USD/TRY rate on the 10th, so that day under-reports.
		assert.True(t, points[0].Value.IsZero())
		assert.True(t, points[1].Value.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		_, err := builder.Build(ctx, positions, "USD", day("2024-06-13"), day("2024-06-10"), asOf)
		assert.Error(t, err)
	})

	t.Run("cancellation returns no partial series", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		points, err := builder.Build(cancelled, positions, "USD", day("2024-06-10"), day("2024-06-13"), asOf)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, points)
	})

	t.Run("rebuilding yields identical output", func(t *testing.T) {
		first, err := builder.Build(ctx, positions, "USD", day("2024-06-10"), day("2024-06-13"), asOf)
		require.NoError(t, err)
		second, err := builder.Build(ctx, positions, "USD", day("2024-06-10"), day("2024-06-13"), asOf)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
