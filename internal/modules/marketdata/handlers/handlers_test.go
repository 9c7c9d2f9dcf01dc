package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avramidis/folio/internal/clients/fmp"
	"github.com/avramidis/folio/internal/clients/yahoo"
	"github.com/avramidis/folio/internal/services"
)

// stubStockClient serves canned Yahoo payloads per symbol.
type stubStockClient struct {
	quotes   map[string]*yahoo.Quote
	charts   map[string]*yahoo.Chart
	chartErr error
}

func (s *stubStockClient) GetQuote(symbol string) (*yahoo.Quote, error) {
	if q, ok := s.quotes[symbol]; ok {
		return q, nil
	}
	return nil, yahoo.ErrNoData
}

func (s *stubStockClient) GetChart(symbol string) (*yahoo.Chart, error) {
	if s.chartErr != nil {
		return nil, s.chartErr
	}
	if c, ok := s.charts[symbol]; ok {
		return c, nil
	}
	return nil, yahoo.ErrNoData
}

func (s *stubStockClient) GetProfile(symbol string) (*yahoo.CompanyProfile, error) {
	return nil, yahoo.ErrNoData
}

// stubBondClient serves a canned row per ISIN from the profile endpoint.
type stubBondClient struct {
	rows map[string]map[string]interface{}
	err  error
}

func (s *stubBondClient) GetProfile(isin string) (map[string]interface{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[isin], nil
}

func (s *stubBondClient) GetQuote(isin string) (map[string]interface{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func fptr(v float64) *float64 { return &v }

func newTestHandler(stocks *stubStockClient, bonds *stubBondClient) *Handler {
	log := zerolog.Nop()
	return NewHandler(
		services.NewStockPriceService(stocks, log),
		services.NewBondPriceService(bonds, log),
		log,
	)
}

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func chartFor(symbol string, price float64) *yahoo.Chart {
	return &yahoo.Chart{Meta: yahoo.ChartMeta{
		Symbol:             symbol,
		Currency:           "USD",
		RegularMarketPrice: fptr(price),
	}}
}

func TestHandleGetStockPrice(t *testing.T) {
	stocks := &stubStockClient{
		charts: map[string]*yahoo.Chart{"AAPL": chartFor("AAPL", 189.4)},
	}
	router := newTestRouter(newTestHandler(stocks, &stubBondClient{}))

	req := httptest.NewRequest(http.MethodGet, "/marketdata/stocks/AAPL", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.StockPrice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Data.Symbol)
	assert.Equal(t, 189.4, resp.Data.Price)
	assert.Equal(t, "USD", resp.Data.Currency)
}

func TestHandleGetStockPriceNotFound(t *testing.T) {
	router := newTestRouter(newTestHandler(&stubStockClient{}, &stubBondClient{}))

	req := httptest.NewRequest(http.MethodGet, "/marketdata/stocks/NOPE", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetStockPrices(t *testing.T) {
	stocks := &stubStockClient{
		charts: map[string]*yahoo.Chart{
			"AAPL": chartFor("AAPL", 189.4),
			"MSFT": chartFor("MSFT", 415.2),
		},
	}
	router := newTestRouter(newTestHandler(stocks, &stubBondClient{}))

	body, _ := json.Marshal(BatchRequest{Symbols: []string{"AAPL", "MSFT", "NOPE"}})
	req := httptest.NewRequest(http.MethodPost, "/marketdata/stocks/batch", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Prices map[string]services.StockPrice `json:"prices"`
			Errors map[string]string              `json:"errors"`
		} `json:"data"`
		Metadata struct {
			Requested int `json:"requested"`
			Succeeded int `json:"succeeded"`
			Failed    int `json:"failed"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Prices, 2)
	assert.Contains(t, resp.Data.Errors, "NOPE")
	assert.Equal(t, 3, resp.Metadata.Requested)
	assert.Equal(t, 2, resp.Metadata.Succeeded)
	assert.Equal(t, 1, resp.Metadata.Failed)
}

func TestHandleGetStockPricesEmptyBody(t *testing.T) {
	router := newTestRouter(newTestHandler(&stubStockClient{}, &stubBondClient{}))

	body, _ := json.Marshal(BatchRequest{})
	req := httptest.NewRequest(http.MethodPost, "/marketdata/stocks/batch", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleValidateTicker(t *testing.T) {
	stocks := &stubStockClient{
		charts: map[string]*yahoo.Chart{"AAPL": chartFor("AAPL", 189.4)},
	}
	router := newTestRouter(newTestHandler(stocks, &stubBondClient{}))

	req := httptest.NewRequest(http.MethodGet, "/marketdata/stocks/AAPL/validate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 189.4, resp.Data.Price)
}

func TestHandleGetBondPrice(t *testing.T) {
	bonds := &stubBondClient{rows: map[string]map[string]interface{}{
		"DE0001102580": {"price": 98.75, "currency": "EUR"},
	}}
	router := newTestRouter(newTestHandler(&stubStockClient{}, bonds))

	req := httptest.NewRequest(http.MethodGet, "/marketdata/bonds/DE0001102580", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.BondPrice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DE0001102580", resp.Data.ISIN)
	assert.Equal(t, 98.75, resp.Data.Price)
	assert.Equal(t, "EUR", resp.Data.Currency)
}

func TestHandleGetBondPriceInvalidISIN(t *testing.T) {
	router := newTestRouter(newTestHandler(&stubStockClient{}, &stubBondClient{}))

	req := httptest.NewRequest(http.MethodGet, "/marketdata/bonds/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetBondPriceMissingAPIKey(t *testing.T) {
	bonds := &stubBondClient{err: fmp.ErrMissingAPIKey}
	router := newTestRouter(newTestHandler(&stubStockClient{}, bonds))

	req := httptest.NewRequest(http.MethodGet, "/marketdata/bonds/DE0001102580", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleCacheStatsAndClear(t *testing.T) {
	stocks := &stubStockClient{
		charts: map[string]*yahoo.Chart{"AAPL": chartFor("AAPL", 189.4)},
	}
	router := newTestRouter(newTestHandler(stocks, &stubBondClient{}))

	req := httptest.NewRequest(http.MethodGet, "/marketdata/stocks/AAPL", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/marketdata/cache/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Data struct {
			Stocks services.StockCacheStats `json:"stocks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Data.Stocks.Prices.TotalEntries)

	req = httptest.NewRequest(http.MethodPost, "/marketdata/cache/clear", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/marketdata/cache/stats", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Data.Stocks.Prices.TotalEntries)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", services.ErrInvalidArgument, http.StatusBadRequest},
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"circuit open", services.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"configuration", services.ErrConfiguration, http.StatusServiceUnavailable},
		{"upstream", services.ErrUpstream, http.StatusBadGateway},
		{"no price", services.ErrNoPriceAvailable, http.StatusBadGateway},
		{"unclassified", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
