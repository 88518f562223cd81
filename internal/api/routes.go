package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Portfolio routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/assets", handler.GetAllAssets).Methods("GET")
	api.HandleFunc("/portfolios", handler.CreatePortfolio).Methods("POST")
	api.HandleFunc("/portfolios", handler.GetPortfolios).Methods("GET")
	api.HandleFunc("/portfolios/{id}", handler.GetPortfolio).Methods("GET")
	api.HandleFunc("/portfolios/{id}/positions", handler.CreatePosition).Methods("POST")
	api.HandleFunc("/portfolios/{id}/analytics", handler.GetAnalytics).Methods("GET")
	api.HandleFunc("/portfolios/{id}/timeline", handler.GetTimeline).Methods("GET")
	api.HandleFunc("/portfolios/{id}/performance/{period}", handler.GetPerformance).Methods("GET")

	return r
}
