package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all currency routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/currency", func(r chi.Router) {
		r.Get("/rates/{base}", h.HandleGetRates)
		r.Post("/convert", h.HandleConvert)
		r.Post("/convert-usd", h.HandleConvertToUSD)
		r.Get("/supported", h.HandleSupportedCurrencies)

		// Diagnostics
		r.Get("/cache/stats", h.HandleCacheStats)
		r.Post("/cache/clear", h.HandleClearCache)
	})
}
