// Package handlers provides HTTP handlers for market-data operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/avramidis/folio/internal/services"
)

// Handler handles market-data HTTP requests
type Handler struct {
	stockService *services.StockPriceService
	bondService  *services.BondPriceService
	log          zerolog.Logger
}

// NewHandler creates a new market-data handler
func NewHandler(
	stockService *services.StockPriceService,
	bondService *services.BondPriceService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		stockService: stockService,
		bondService:  bondService,
		log:          log.With().Str("handler", "marketdata").Logger(),
	}
}

// BatchRequest represents a request for multiple stock prices
type BatchRequest struct {
	Symbols []string `json:"symbols"`
}

// HandleGetStockPrice handles GET /api/marketdata/stocks/{symbol}
func (h *Handler) HandleGetStockPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	rec, err := h.stockService.GetPrice(symbol)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to get stock price")
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": rec,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetStockPrices handles POST /api/marketdata/stocks/batch
func (h *Handler) HandleGetStockPrices(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Symbols) == 0 {
		http.Error(w, "symbols are required", http.StatusBadRequest)
		return
	}

	results, failures := h.stockService.GetMultiple(req.Symbols)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"prices": results,
			"errors": failures,
		},
		"metadata": map[string]interface{}{
			"requested": len(req.Symbols),
			"succeeded": len(results),
			"failed":    len(failures),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleValidateTicker handles GET /api/marketdata/stocks/{symbol}/validate
func (h *Handler) HandleValidateTicker(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	result := h.stockService.ValidateTicker(symbol)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetBondPrice handles GET /api/marketdata/bonds/{isin}
func (h *Handler) HandleGetBondPrice(w http.ResponseWriter, r *http.Request) {
	isin := chi.URLParam(r, "isin")

	rec, err := h.bondService.GetPrice(isin)
	if err != nil {
		h.log.Warn().Err(err).Str("isin", isin).Msg("Failed to get bond price")
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": rec,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCacheStats handles GET /api/marketdata/cache/stats
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"stocks": h.stockService.CacheStats(),
			"bonds":  h.bondService.CacheStats(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleClearCache handles POST /api/marketdata/cache/clear
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.stockService.ClearCache()
	h.bondService.ClearCache()

	h.log.Info().Msg("Market-data caches cleared")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"cleared": true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeError maps a service error onto an HTTP status and writes the error
// envelope.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, statusForError(err), map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
		},
	})
}

// statusForError maps the service error taxonomy to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrServiceUnavailable),
		errors.Is(err, services.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrUpstream),
		errors.Is(err, services.ErrNoPriceAvailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
