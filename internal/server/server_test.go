package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avramidis/folio/internal/clients/exchangerate"
	"github.com/avramidis/folio/internal/clients/fmp"
	"github.com/avramidis/folio/internal/clients/yahoo"
	currencyhandlers "github.com/avramidis/folio/internal/modules/currency/handlers"
	marketdatahandlers "github.com/avramidis/folio/internal/modules/marketdata/handlers"
	"github.com/avramidis/folio/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := zerolog.Nop()

	stockService := services.NewStockPriceService(yahoo.NewClient(log), log)
	bondService := services.NewBondPriceService(fmp.NewClient("", log), log)
	currencyService := services.NewCurrencyService(exchangerate.NewClient(log), log)

	return New(
		Config{Port: 0, DevMode: true},
		marketdatahandlers.NewHandler(stockService, bondService, log),
		currencyhandlers.NewHandler(currencyService, log),
		log,
	)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestAPIRoutesMounted(t *testing.T) {
	s := newTestServer(t)

	// A bad ISIN is rejected by validation before any provider call, so the
	// request proves the route is wired without touching the network.
	req := httptest.NewRequest(http.MethodGet, "/api/marketdata/bonds/abc", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Identity conversions skip the rate lookup entirely.
	body := strings.NewReader(`{"amount": 10, "from": "EUR", "to": "EUR"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/currency/convert", body)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
