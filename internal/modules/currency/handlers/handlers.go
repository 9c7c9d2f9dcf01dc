// Package handlers provides HTTP handlers for currency conversion.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/avramidis/folio/internal/services"
)

// Handler handles currency HTTP requests
type Handler struct {
	currencyService *services.CurrencyService
	log             zerolog.Logger
}

// NewHandler creates a new currency handler
func NewHandler(currencyService *services.CurrencyService, log zerolog.Logger) *Handler {
	return &Handler{
		currencyService: currencyService,
		log:             log.With().Str("handler", "currency").Logger(),
	}
}

// ConvertRequest represents a currency conversion request
type ConvertRequest struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
}

// ConvertUSDRequest represents a conversion-to-USD request
type ConvertUSDRequest struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
}

// HandleGetRates handles GET /api/currency/rates/{base}
func (h *Handler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	base := chi.URLParam(r, "base")

	rates := h.currencyService.FetchRates(base)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"base":  strings.ToUpper(strings.TrimSpace(base)),
			"rates": rates,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleConvert handles POST /api/currency/convert
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, err := h.currencyService.Convert(req.Amount, req.From, req.To)
	if err != nil {
		h.log.Warn().Err(err).
			Str("from", req.From).
			Str("to", req.To).
			Msg("Failed to convert currency")
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": conv,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleConvertToUSD handles POST /api/currency/convert-usd
func (h *Handler) HandleConvertToUSD(w http.ResponseWriter, r *http.Request) {
	var req ConvertUSDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, err := h.currencyService.ConvertToUSD(req.Amount, req.From)
	if err != nil {
		h.log.Warn().Err(err).Str("from", req.From).Msg("Failed to convert to USD")
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": conv,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleSupportedCurrencies handles GET /api/currency/supported
func (h *Handler) HandleSupportedCurrencies(w http.ResponseWriter, r *http.Request) {
	codes := h.currencyService.SupportedCurrencies()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"currencies": codes,
		},
		"metadata": map[string]interface{}{
			"count":     len(codes),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCacheStats handles GET /api/currency/cache/stats
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.currencyService.CacheStats(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleClearCache handles POST /api/currency/cache/clear
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.currencyService.ClearCache()

	h.log.Info().Msg("Currency rate cache cleared")

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
	case errors.Is(err, services.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrNoRateFound):
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
