package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/avramidis/folio/internal/breaker"
	"github.com/avramidis/folio/internal/cache"
	"github.com/avramidis/folio/internal/clients/yahoo"
)

// StockDataClient is the slice of the Yahoo client used by the stock pricing
// service.
type StockDataClient interface {
	GetQuote(symbol string) (*yahoo.Quote, error)
	GetChart(symbol string) (*yahoo.Chart, error)
	GetProfile(symbol string) (*yahoo.CompanyProfile, error)
}

// StockPrice is the derived price record for an equity ticker.
type StockPrice struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	ShortName     string    `json:"short_name"`
	LongName      string    `json:"long_name"`
	Sector        *string   `json:"sector"`
	Industry      *string   `json:"industry"`
	Exchange      string    `json:"exchange"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	PreviousClose float64   `json:"previous_close"`
	Open          float64   `json:"open"`
	DayHigh       float64   `json:"day_high"`
	DayLow        float64   `json:"day_low"`
	Volume        int64     `json:"volume"`
	MarketState   string    `json:"market_state"`
	Cached        bool      `json:"cached"`
	Timestamp     time.Time `json:"timestamp"`
}

// ValidationResult is the outcome of a ticker validation.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// StockCacheStats is the diagnostic snapshot for the stock pricing service.
type StockCacheStats struct {
	Prices          cache.Stats `json:"prices"`
	Profiles        cache.Stats `json:"profiles"`
	BreakerStatus   string      `json:"breaker_status"`
	BreakerFailures int         `json:"breaker_failures"`
}

// StockPriceService derives equity price records from the quote and chart
// endpoints, with a short-lived price cache, a long-lived profile cache and a
// circuit breaker around the provider.
type StockPriceService struct {
	client   StockDataClient
	prices   *cache.Cache[StockPrice]
	profiles *cache.Cache[yahoo.CompanyProfile]
	breaker  *breaker.Breaker
	now      func() time.Time
	log      zerolog.Logger
}

// NewStockPriceService creates a stock pricing service.
func NewStockPriceService(client StockDataClient, log zerolog.Logger) *StockPriceService {
	return &StockPriceService{
		client:   client,
		prices:   cache.New[StockPrice](TTLStockPrice),
		profiles: cache.New[yahoo.CompanyProfile](TTLCompanyProfile),
		breaker:  breaker.New(stockBreakerThreshold, breakerResetWindow),
		now:      time.Now,
		log:      log.With().Str("service", "stock_price").Logger(),
	}
}

// GetPrice returns the price record for a ticker. Cache hits are returned
// immediately with the original fetch timestamp and never touch the breaker.
// On a cold cache with an open breaker the call fails fast.
func (s *StockPriceService) GetPrice(ticker string) (*StockPrice, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidArgument)
	}

	if rec, ok := s.prices.Get(symbol); ok {
		rec.Cached = true
		return &rec, nil
	}

	if s.breaker.IsOpen() {
		s.log.Warn().Str("symbol", symbol).Msg("Circuit open, failing fast")
		return nil, fmt.Errorf("%w: stock price provider circuit open", ErrServiceUnavailable)
	}

	// The quote lookup is an optional override source; its failure only
	// degrades the result.
	quote, err := s.client.GetQuote(symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote lookup failed, continuing with chart data")
		quote = nil
	}

	// The chart lookup is the primary source; its failure is fatal.
	chart, err := s.client.GetChart(symbol)
	if err != nil {
		s.breaker.RecordFailure()
		return nil, s.classifyChartError(symbol, err)
	}

	profile := s.lookupProfile(symbol)

	rec := deriveStockPrice(symbol, quote, chart, profile, s.now())
	s.prices.Set(symbol, rec)
	s.breaker.RecordSuccess()

	s.log.Debug().
		Str("symbol", symbol).
		Float64("price", rec.Price).
		Str("currency", rec.Currency).
		Msg("Fetched stock price")

	return &rec, nil
}

// GetMultiple fans GetPrice out over all tickers concurrently. One ticker's
// failure never aborts the others; errors are collected per ticker.
func (s *StockPriceService) GetMultiple(tickers []string) (map[string]StockPrice, map[string]string) {
	results := make(map[string]StockPrice, len(tickers))
	failures := make(map[string]string)

	var mu sync.Mutex
	var g errgroup.Group
	for _, t := range tickers {
		ticker := t
		g.Go(func() error {
			rec, err := s.GetPrice(ticker)
			key := strings.ToUpper(strings.TrimSpace(ticker))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[key] = err.Error()
				return nil
			}
			results[key] = *rec
			return nil
		})
	}
	_ = g.Wait()

	return results, failures
}

// ValidateTicker reshapes GetPrice into a valid/invalid outcome, converting
// any error into the invalid branch.
func (s *StockPriceService) ValidateTicker(ticker string) ValidationResult {
	rec, err := s.GetPrice(ticker)
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Symbol: strings.ToUpper(strings.TrimSpace(ticker)),
			Error:  err.Error(),
		}
	}
	return ValidationResult{
		Valid:  true,
		Symbol: rec.Symbol,
		Price:  rec.Price,
	}
}

// ClearCache empties the price and profile caches. Breaker state is kept.
func (s *StockPriceService) ClearCache() {
	s.prices.Clear()
	s.profiles.Clear()
}

// CacheStats reports cache and breaker diagnostics.
func (s *StockPriceService) CacheStats() StockCacheStats {
	return StockCacheStats{
		Prices:          s.prices.Stats(),
		Profiles:        s.profiles.Stats(),
		BreakerStatus:   s.breaker.Status(),
		BreakerFailures: s.breaker.FailureCount(),
	}
}

// CircuitOpen reports whether the provider breaker is currently open.
func (s *StockPriceService) CircuitOpen() bool {
	return s.breaker.IsOpen()
}

// lookupProfile returns the cached company profile for a symbol, fetching it
// on a miss. Profile failures are swallowed: a price without a sector is
// still a valid result.
func (s *StockPriceService) lookupProfile(symbol string) *yahoo.CompanyProfile {
	if p, ok := s.profiles.Get(symbol); ok {
		return &p
	}

	p, err := s.client.GetProfile(symbol)
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("Profile lookup failed, skipping enrichment")
		return nil
	}

	s.profiles.Set(symbol, *p)
	return p
}

// classifyChartError maps a failed chart lookup onto the error taxonomy.
func (s *StockPriceService) classifyChartError(symbol string, err error) error {
	var apiErr *yahoo.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "Not Found" {
			return fmt.Errorf("%w: %s: %s", ErrNotFound, symbol, apiErr.Description)
		}
		return fmt.Errorf("%w: %s", ErrUpstream, apiErr.Description)
	}
	if errors.Is(err, yahoo.ErrNoData) {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// deriveStockPrice merges quote, chart and profile data in strict precedence
// order: quote overrides chart overrides the literal ticker. The record is
// stamped with the fetch instant supplied by the service clock.
func deriveStockPrice(symbol string, quote *yahoo.Quote, chart *yahoo.Chart, profile *yahoo.CompanyProfile, fetchedAt time.Time) StockPrice {
	meta := chart.Meta
	if quote == nil {
		quote = &yahoo.Quote{}
	}

	price := coalesceFloat(0,
		quote.RegularMarketPrice, meta.RegularMarketPrice, meta.ChartPreviousClose, meta.PreviousClose)
	prevClose := coalesceFloat(price,
		quote.RegularMarketPreviousClose, meta.ChartPreviousClose, meta.PreviousClose)

	change := price - prevClose
	if quote.RegularMarketChange != nil {
		change = *quote.RegularMarketChange
	}

	changePct := 0.0
	if prevClose != 0 {
		changePct = change / prevClose * 100
	}
	if quote.RegularMarketChangePercent != nil {
		changePct = *quote.RegularMarketChangePercent
	}

	rec := StockPrice{
		Symbol:        symbol,
		Price:         price,
		Currency:      firstNonEmpty(quote.Currency, meta.Currency, "USD"),
		ShortName:     firstNonEmpty(quote.ShortName, meta.ShortName, symbol),
		LongName:      firstNonEmpty(quote.LongName, meta.LongName, symbol),
		Exchange:      firstNonEmpty(quote.FullExchangeName, meta.FullExchangeName, meta.ExchangeName),
		Change:        change,
		ChangePercent: changePct,
		PreviousClose: prevClose,
		Open:          coalesceFloat(0, quote.RegularMarketOpen),
		DayHigh:       coalesceFloat(0, quote.RegularMarketDayHigh, meta.RegularMarketDayHigh),
		DayLow:        coalesceFloat(0, quote.RegularMarketDayLow, meta.RegularMarketDayLow),
		Volume:        coalesceInt64(0, quote.RegularMarketVolume, meta.RegularMarketVolume),
		MarketState:   quote.MarketState,
		Cached:        false,
		Timestamp:     fetchedAt,
	}

	if profile != nil {
		if profile.Sector != "" {
			sector := profile.Sector
			rec.Sector = &sector
		}
		if profile.Industry != "" {
			industry := profile.Industry
			rec.Industry = &industry
		}
		if rec.LongName == symbol && profile.LongName != "" {
			rec.LongName = profile.LongName
		}
	}

	return rec
}

// coalesceFloat returns the first non-nil value, else the fallback.
func coalesceFloat(fallback float64, vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return fallback
}

// coalesceInt64 returns the first non-nil value, else the fallback.
func coalesceInt64(fallback int64, vals ...*int64) int64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return fallback
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
