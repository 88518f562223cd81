package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/denizk/portfolio-analytics/internal/database"
	"github.com/denizk/portfolio-analytics/internal/engine"
	"github.com/denizk/portfolio-analytics/internal/kafka"
	"github.com/denizk/portfolio-analytics/internal/models"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db       *database.DB
	engine   *engine.Engine
	producer *kafka.Producer
	now      func() time.Time
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, eng *engine.Engine, producer *kafka.Producer) *Handler {
	return &Handler{
		db:       db,
		engine:   eng,
		producer: producer,
		now:      time.Now,
	}
}

// CreatePortfolio handles POST /portfolios
func (h *Handler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner        string `json:"owner"`
		Name         string `json:"name"`
		BaseCurrency string `json:"base_currency"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Owner == "" || req.Name == "" || req.BaseCurrency == "" {
		http.Error(w, "owner, name and base_currency are required", http.StatusBadRequest)
		return
	}

	portfolio := &models.Portfolio{
		Owner:        req.Owner,
		Name:         req.Name,
		BaseCurrency: req.BaseCurrency,
	}
	if err := h.db.CreatePortfolio(r.Context(), portfolio); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, portfolio)
}

// GetPortfolio handles GET /portfolios/{id}
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, ok := h.loadPortfolio(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// GetPortfolios handles GET /portfolios?owner=
func (h *Handler) GetPortfolios(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}

	portfolios, err := h.db.GetPortfoliosByOwner(r.Context(), owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, portfolios)
}

// GetAllAssets handles GET /assets
func (h *Handler) GetAllAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.db.GetAllAssets(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

// CreatePosition handles POST /portfolios/{id}/positions
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	portfolio, ok := h.loadPortfolio(w, r)
	if !ok {
		return
	}

	var req struct {
		AssetID          int    `json:"asset_id"`
		Quantity         string `json:"quantity"`
		AverageCost      string `json:"average_cost"`
		PurchaseCurrency string `json:"purchase_currency"`
		PurchaseDate     string `json:"purchase_date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	asset, err := h.db.GetAsset(r.Context(), req.AssetID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if asset == nil {
		http.Error(w, "asset not found", http.StatusBadRequest)
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}
	averageCost, err := decimal.NewFromString(req.AverageCost)
	if err != nil {
		http.Error(w, "invalid average_cost", http.StatusBadRequest)
		return
	}
	purchaseDate, err := time.Parse("2006-01-02", req.PurchaseDate)
	if err != nil {
		http.Error(w, "invalid purchase_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	position := &models.Position{
		PortfolioID:      portfolio.ID,
		Asset:            *asset,
		Quantity:         quantity,
		AverageCost:      averageCost,
		PurchaseCurrency: req.PurchaseCurrency,
		PurchaseDate:     purchaseDate,
		Status:           models.PositionStatusOpen,
	}
	if err := position.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.db.CreatePosition(r.Context(), position); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, position)
}

// GetAnalytics handles GET /portfolios/{id}/analytics
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	portfolio, ok := h.loadPortfolio(w, r)
	if !ok {
		return
	}

	positions, err := h.db.GetOpenPositionsByPortfolio(r.Context(), portfolio.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	asOf := h.now()
	summary, unpriced, err := h.engine.Summary(r.Context(), portfolio, positions, asOf)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	h.escalatePriceGaps(r.Context(), unpriced, asOf)

	respondJSON(w, http.StatusOK, summary)
}

// GetTimeline handles GET /portfolios/{id}/timeline?start=&end=
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	portfolio, ok := h.loadPortfolio(w, r)
	if !ok {
		return
	}

	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "invalid start date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "end date precedes start date", http.StatusBadRequest)
		return
	}

	positions, err := h.db.GetOpenPositionsByPortfolio(r.Context(), portfolio.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	points, err := h.engine.Timeline(r.Context(), portfolio, positions, start, end, h.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio_id":  portfolio.ID,
		"base_currency": portfolio.BaseCurrency,
		"timeline":      points,
	})
}

// GetPerformance handles GET /portfolios/{id}/performance/{period}
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	portfolio, ok := h.loadPortfolio(w, r)
	if !ok {
		return
	}

	// Unrecognized period codes are served as zero-length periods, so
	// no validation happens here.
	period := engine.Period(mux.Vars(r)["period"])

	positions, err := h.db.GetOpenPositionsByPortfolio(r.Context(), portfolio.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	perf, err := h.engine.PeriodPerformance(r.Context(), portfolio, positions, period, h.now())
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, perf)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// loadPortfolio resolves the {id} path variable. It writes the error
// response itself when the portfolio cannot be served.
func (h *Handler) loadPortfolio(w http.ResponseWriter, r *http.Request) (*models.Portfolio, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid portfolio id", http.StatusBadRequest)
		return nil, false
	}

	portfolio, err := h.db.GetPortfolio(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if portfolio == nil {
		http.Error(w, "portfolio not found", http.StatusNotFound)
		return nil, false
	}
	return portfolio, true
}

// escalatePriceGaps publishes a price fetch request for every open
// position the engine excluded for lack of price history. Publish
// failures are logged; the analytics response is served regardless.
func (h *Handler) escalatePriceGaps(ctx context.Context, unpriced []*models.Position, asOf time.Time) {
	if h.producer == nil {
		return
	}
	for _, pos := range unpriced {
		if err := h.producer.PublishPriceFetchRequested(ctx, pos.Asset.Symbol, pos.Asset.Exchange, asOf); err != nil {
			log.Printf("Failed to publish price fetch request for %s: %v", pos.Asset.Symbol, err)
		}
	}
}

// respondEngineError maps a missing exchange rate to 503 and escalates
// a fetch request for the gap before answering.
func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var rateErr *engine.RateUnavailableError
	if errors.As(err, &rateErr) {
		if h.producer != nil {
			if pubErr := h.producer.PublishRateFetchRequested(r.Context(), rateErr.From, rateErr.To, rateErr.Date); pubErr != nil {
				log.Printf("Failed to publish rate fetch request: %v", pubErr)
			}
		}
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
