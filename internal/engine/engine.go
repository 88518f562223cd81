package engine

import (
	"context"
	"time"

	"github.com/denizk/portfolio-analytics/internal/models"
)

// defaultPerformerCount bounds the ranked lists in the summary.
const defaultPerformerCount = 5

// Engine bundles the analytics components behind one explicitly
// constructed instance. It holds no state beyond its collaborators and
// performs no caching of its own.
type Engine struct {
	converter   *CurrencyConverter
	valuator    *PositionValuator
	aggregator  *PortfolioAggregator
	timeline    *TimelineBuilder
	performance *PerformanceCalculator
}

// New wires an engine over the given stores.
func New(prices PriceStore, rates RateStore) *Engine {
	converter := NewCurrencyConverter(rates)
	valuator := NewPositionValuator(prices, converter)
	timeline := NewTimelineBuilder(valuator)
	return &Engine{
		converter:   converter,
		valuator:    valuator,
		aggregator:  NewPortfolioAggregator(valuator),
		timeline:    timeline,
		performance: NewPerformanceCalculator(timeline),
	}
}

// Converter exposes the currency converter for callers that need a
// standalone conversion.
func (e *Engine) Converter() *CurrencyConverter { return e.converter }

// Summary assembles the full analytics report for the portfolio as of
// the given time. Positions without price history are excluded from
// every aggregate and returned alongside the summary so the caller can
// escalate a price fetch; an unavailable exchange rate aborts with a
// RateUnavailableError.
func (e *Engine) Summary(ctx context.Context, portfolio *models.Portfolio, positions []*models.Position, asOf time.Time) (*models.AnalyticsSummary, []*models.Position, error) {
	base := portfolio.BaseCurrency

	vals, unpriced, err := e.aggregator.Valuations(ctx, positions, base, asOf)
	if err != nil {
		return nil, nil, err
	}
	totals := e.aggregator.TotalsOf(vals)

	openCount := 0
	for _, pos := range positions {
		if pos.Open() {
			openCount++
		}
	}

	byClass := e.aggregator.AllocationByClass(vals)

	summary := &models.AnalyticsSummary{
		Overview: models.Overview{
			TotalValue:            totals.Value.Round(2),
			TotalCost:             totals.Cost.Round(2),
			TotalProfitLoss:       totals.ProfitLoss.Round(2),
			TotalReturnPercentage: totals.ReturnPercentage.Round(2),
			BaseCurrency:          base,
			PositionCount:         openCount,
		},
		Allocation: models.Allocation{
			ByAssetClass: byClass,
			ByCurrency:   e.aggregator.AllocationByCurrency(vals),
		},
		Performance: models.PerformanceLists{
			TopPerformers:    e.aggregator.TopPerformers(vals, defaultPerformerCount),
			WorstPerformers:  e.aggregator.WorstPerformers(vals, defaultPerformerCount),
			LargestPositions: e.aggregator.LargestPositions(vals, defaultPerformerCount),
		},
		Metrics: models.Metrics{
			DiversityScore: DiversityScore(byClass),
		},
	}

	for _, period := range Periods {
		perf, err := e.performance.Change(ctx, positions, base, period, totals.Value, asOf)
		if err != nil {
			return nil, nil, err
		}
		switch period {
		case PeriodWeek:
			summary.Periods.Week = perf
		case PeriodMonth:
			summary.Periods.Month = perf
		case PeriodQuarter:
			summary.Periods.Quarter = perf
		case PeriodYear:
			summary.Periods.Year = perf
		case PeriodYTD:
			summary.Periods.YTD = perf
		}
	}

	return summary, unpriced, nil
}

// Timeline returns the portfolio's daily value series over [start, end].
func (e *Engine) Timeline(ctx context.Context, portfolio *models.Portfolio, positions []*models.Position, start, end, asOf time.Time) ([]models.ValuePoint, error) {
	return e.timeline.Build(ctx, positions, portfolio.BaseCurrency, start, end, asOf)
}

// PeriodPerformance returns the value change over a single period.
func (e *Engine) PeriodPerformance(ctx context.Context, portfolio *models.Portfolio, positions []*models.Position, period Period, asOf time.Time) (models.PeriodPerformance, error) {
	vals, _, err := e.aggregator.Valuations(ctx, positions, portfolio.BaseCurrency, asOf)
	if err != nil {
		return models.PeriodPerformance{}, err
	}
	totals := e.aggregator.TotalsOf(vals)
	return e.performance.Change(ctx, positions, portfolio.BaseCurrency, period, totals.Value, asOf)
}
