package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Overview summarizes the current state of a portfolio in its base
// currency.
type Overview struct {
	TotalValue            decimal.Decimal `json:"total_value"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	TotalProfitLoss       decimal.Decimal `json:"total_profit_loss"`
	TotalReturnPercentage decimal.Decimal `json:"total_return_percentage"`
	BaseCurrency          string          `json:"base_currency"`
	PositionCount         int             `json:"position_count"`
}

// AllocationSlice is one group's share of the portfolio value.
type AllocationSlice struct {
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int             `json:"count"`
}

// Allocation breaks portfolio value down by asset class and currency.
type Allocation struct {
	ByAssetClass map[AssetClass]AllocationSlice `json:"by_asset_class"`
	ByCurrency   map[string]AllocationSlice     `json:"by_currency"`
}

// PerformerEntry is one position in a ranked performance list.
type PerformerEntry struct {
	ID                   int             `json:"id"`
	AssetSymbol          string          `json:"asset_symbol"`
	AssetName            string          `json:"asset_name"`
	AssetClass           AssetClass      `json:"asset_class"`
	Quantity             decimal.Decimal `json:"quantity"`
	CurrentValue         decimal.Decimal `json:"current_value"`
	TotalCost            decimal.Decimal `json:"total_cost"`
	ProfitLoss           decimal.Decimal `json:"profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
	PortfolioWeight      decimal.Decimal `json:"portfolio_weight"`
}

// PerformanceLists holds the ranked position subsets.
type PerformanceLists struct {
	TopPerformers    []PerformerEntry `json:"top_performers"`
	WorstPerformers  []PerformerEntry `json:"worst_performers"`
	LargestPositions []PerformerEntry `json:"largest_positions"`
}

// Metrics holds derived portfolio-level metrics.
type Metrics struct {
	DiversityScore decimal.Decimal `json:"diversity_score"`
}

// PeriodPerformance is the change in total value over one period.
type PeriodPerformance struct {
	Period           string          `json:"period"`
	Change           decimal.Decimal `json:"change"`
	ChangePercentage decimal.Decimal `json:"change_percentage"`
}

// PeriodBreakdown holds performance for each standard period.
type PeriodBreakdown struct {
	Week    PeriodPerformance `json:"week"`
	Month   PeriodPerformance `json:"month"`
	Quarter PeriodPerformance `json:"quarter"`
	Year    PeriodPerformance `json:"year"`
	YTD     PeriodPerformance `json:"ytd"`
}

// AnalyticsSummary is the full analytics report for a portfolio.
type AnalyticsSummary struct {
	Overview    Overview         `json:"overview"`
	Allocation  Allocation       `json:"allocation"`
	Performance PerformanceLists `json:"performance"`
	Metrics     Metrics          `json:"metrics"`
	Periods     PeriodBreakdown  `json:"periods"`
}

// ValuePoint captures the total portfolio value at a specific date.
type ValuePoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}
