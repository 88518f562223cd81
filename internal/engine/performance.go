package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// Period identifies a reporting window ending at the as-of date.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodYTD     Period = "ytd"
)

// Periods lists the standard reporting periods in breakdown order.
var Periods = []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodYTD}

// StartDate returns the anchor date for the period relative to asOf.
// An unrecognized period anchors at asOf itself (zero-length).
func (p Period) StartDate(asOf time.Time) time.Time {
	day := Day(asOf)
	switch p {
	case PeriodWeek:
		return day.AddDate(0, 0, -7)
	case PeriodMonth:
		return day.AddDate(0, -1, 0)
	case PeriodQuarter:
		return day.AddDate(0, -3, 0)
	case PeriodYear:
		return day.AddDate(-1, 0, 0)
	case PeriodYTD:
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// PerformanceCalculator compares the current total value to the value
// at a period's start date.
type PerformanceCalculator struct {
	timeline *TimelineBuilder
}

// NewPerformanceCalculator creates a calculator over the given
// timeline builder.
func NewPerformanceCalculator(timeline *TimelineBuilder) *PerformanceCalculator {
	return &PerformanceCalculator{timeline: timeline}
}

// Change computes the value change over the period. A past value of 0
// yields a zero result; it guards the division, it does not assert
// that nothing changed.
func (c *PerformanceCalculator) Change(ctx context.Context, positions []*models.Position, base string, period Period, currentValue decimal.Decimal, asOf time.Time) (models.PeriodPerformance, error) {
	start := period.StartDate(asOf)
	past, err := c.timeline.ValueOn(ctx, positions, base, start, asOf)
	if err != nil {
		return models.PeriodPerformance{}, err
	}

	result := models.PeriodPerformance{
		Period:           string(period),
		Change:           decimal.Zero,
		ChangePercentage: decimal.Zero,
	}
	if past.IsZero() {
		return result, nil
	}

	change := currentValue.Sub(past)
	result.Change = change.Round(2)
	result.ChangePercentage = change.Div(past).Mul(hundred).Round(2)
	return result, nil
}
