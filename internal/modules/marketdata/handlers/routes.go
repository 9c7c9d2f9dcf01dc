package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market-data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/marketdata", func(r chi.Router) {
		// Stocks
		r.Get("/stocks/{symbol}", h.HandleGetStockPrice)
		r.Post("/stocks/batch", h.HandleGetStockPrices)
		r.Get("/stocks/{symbol}/validate", h.HandleValidateTicker)

		// Bonds
		r.Get("/bonds/{isin}", h.HandleGetBondPrice)

		// Diagnostics
		r.Get("/cache/stats", h.HandleCacheStats)
		r.Post("/cache/clear", h.HandleClearCache)
	})
}
