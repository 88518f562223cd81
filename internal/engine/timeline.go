package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// TimelineBuilder produces a day-by-day historical value series for a
// portfolio.
type TimelineBuilder struct {
	valuator *PositionValuator
}

// NewTimelineBuilder creates a builder over the given valuator.
func NewTimelineBuilder(valuator *PositionValuator) *TimelineBuilder {
	return &TimelineBuilder{valuator: valuator}
}

// Build returns one value point per calendar day in [start, end], in
// ascending order. A position with no price or no convertible rate on
// a date contributes nothing to that day's sum. Cancellation aborts
// with the context error; a partial series is never returned.
func (b *TimelineBuilder) Build(ctx context.Context, positions []*models.Position, base string, start, end, asOf time.Time) ([]models.ValuePoint, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var points []models.ValuePoint
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		total, err := b.valueOn(ctx, positions, base, day, asOf)
		if err != nil {
			return nil, err
		}
		points = append(points, models.ValuePoint{Date: day, Value: total.Round(2)})
	}
	return points, nil
}

// ValueOn returns the portfolio's total value on a single date with
// the same exclusion policy as Build. Used for period anchors.
func (b *TimelineBuilder) ValueOn(ctx context.Context, positions []*models.Position, base string, on, asOf time.Time) (decimal.Decimal, error) {
	return b.valueOn(ctx, positions, base, Day(on), asOf)
}

func (b *TimelineBuilder) valueOn(ctx context.Context, positions []*models.Position, base string, day, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, pos := range positions {
		if !pos.Open() {
			continue
		}
		res, err := b.valuator.Valuate(ctx, pos, base, day, asOf)
		if err != nil {
			if errors.Is(err, ErrPriceUnavailable) || errors.Is(err, ErrRateUnavailable) {
				continue
			}
			return decimal.Decimal{}, err
		}
		total = total.Add(res.Value)
	}
	return total, nil
}
