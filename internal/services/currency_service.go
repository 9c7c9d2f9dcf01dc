package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/avramidis/folio/internal/breaker"
	"github.com/avramidis/folio/internal/cache"
)

// RateClient fetches the full exchange-rate table for a base currency.
type RateClient interface {
	GetRates(baseCurrency string) (map[string]float64, error)
}

// Conversion is the result of a currency conversion. The converted amount is
// rounded to two decimal places.
type Conversion struct {
	Amount          float64   `json:"amount"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	ExchangeRate    float64   `json:"exchange_rate"`
	ConvertedAmount float64   `json:"converted_amount"`
	Timestamp       time.Time `json:"timestamp"`
}

// USDConversion is the result of a conversion into US dollars. Fallback is
// set when the rate came from the embedded static table.
type USDConversion struct {
	Amount       float64   `json:"amount"`
	From         string    `json:"from"`
	ExchangeRate float64   `json:"exchange_rate"`
	USDAmount    float64   `json:"usd_amount"`
	Fallback     bool      `json:"fallback"`
	Timestamp    time.Time `json:"timestamp"`
}

// CurrencyCacheStats is the diagnostic snapshot for the currency service.
type CurrencyCacheStats struct {
	Rates           cache.Stats `json:"rates"`
	BreakerStatus   string      `json:"breaker_status"`
	BreakerFailures int         `json:"breaker_failures"`
}

// CurrencyService converts between currencies using live rate tables, with a
// static USD-pivot fallback when the provider is unavailable. Unlike stock
// pricing it degrades to known-stale data instead of failing: an approximate
// rate is judged more useful than no rate.
type CurrencyService struct {
	client  RateClient
	rates   *cache.Cache[map[string]float64]
	breaker *breaker.Breaker
	log     zerolog.Logger
}

// NewCurrencyService creates a currency conversion service.
func NewCurrencyService(client RateClient, log zerolog.Logger) *CurrencyService {
	return &CurrencyService{
		client:  client,
		rates:   cache.New[map[string]float64](TTLExchangeRates),
		breaker: breaker.New(currencyBreakerThreshold, breakerResetWindow),
		log:     log.With().Str("service", "currency").Logger(),
	}
}

// FetchRates returns the rate table for a base currency: cache first, then a
// live fetch guarded by the breaker, then the derived static fallback. It
// never fails; the breaker is incremented only on a real fetch failure, not
// when the breaker short-circuits the call.
func (s *CurrencyService) FetchRates(baseCurrency string) map[string]float64 {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))

	if table, ok := s.rates.Get(base); ok {
		return table
	}

	if s.breaker.IsOpen() {
		s.log.Warn().Str("base", base).Msg("Circuit open, using fallback rates")
		return s.fallbackTable(base)
	}

	table, err := s.client.GetRates(base)
	if err != nil {
		s.breaker.RecordFailure()
		s.log.Warn().Err(err).Str("base", base).Msg("Rate fetch failed, using fallback rates")
		return s.fallbackTable(base)
	}

	s.rates.Set(base, table)
	s.breaker.RecordSuccess()
	return table
}

// Convert converts an amount between two currencies. Same-currency requests
// return the identity conversion without any network interaction.
func (s *CurrencyService) Convert(amount float64, fromCurrency, toCurrency string) (*Conversion, error) {
	from, err := normalizeCurrency(fromCurrency)
	if err != nil {
		return nil, err
	}
	to, err := normalizeCurrency(toCurrency)
	if err != nil {
		return nil, err
	}

	if from == to {
		return &Conversion{
			Amount:          amount,
			From:            from,
			To:              to,
			ExchangeRate:    1.0,
			ConvertedAmount: amount,
			Timestamp:       time.Now(),
		}, nil
	}

	rates := s.FetchRates(from)
	rate, ok := rates[to]
	if !ok || rate == 0 {
		return nil, fmt.Errorf("%w: %s->%s", ErrNoRateFound, from, to)
	}

	return &Conversion{
		Amount:          amount,
		From:            from,
		To:              to,
		ExchangeRate:    rate,
		ConvertedAmount: roundAmount(amount, rate),
		Timestamp:       time.Now(),
	}, nil
}

// ConvertToUSD converts an amount into US dollars. It prefers the USD entry
// of the from-based table, then the inverted entry of the USD-based table,
// then the static USD-per-unit rate (tagged as fallback).
func (s *CurrencyService) ConvertToUSD(amount float64, fromCurrency string) (*USDConversion, error) {
	from, err := normalizeCurrency(fromCurrency)
	if err != nil {
		return nil, err
	}

	if from == "USD" {
		return &USDConversion{
			Amount:       amount,
			From:         from,
			ExchangeRate: 1.0,
			USDAmount:    amount,
			Timestamp:    time.Now(),
		}, nil
	}

	if rate, ok := s.FetchRates(from)["USD"]; ok && rate != 0 {
		return &USDConversion{
			Amount:       amount,
			From:         from,
			ExchangeRate: rate,
			USDAmount:    roundAmount(amount, rate),
			Timestamp:    time.Now(),
		}, nil
	}

	if inverse, ok := s.FetchRates("USD")[from]; ok && inverse != 0 {
		rate := 1 / inverse
		return &USDConversion{
			Amount:       amount,
			From:         from,
			ExchangeRate: rate,
			USDAmount:    roundAmount(amount, rate),
			Timestamp:    time.Now(),
		}, nil
	}

	if rate, ok := fallbackUSDRates[from]; ok {
		return &USDConversion{
			Amount:       amount,
			From:         from,
			ExchangeRate: rate,
			USDAmount:    roundAmount(amount, rate),
			Fallback:     true,
			Timestamp:    time.Now(),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s->USD", ErrNoRateFound, from)
}

// SupportedCurrencies returns the sorted currency codes of a USD-based rate
// fetch, which degrades to the static table's codes when the provider is
// unavailable.
func (s *CurrencyService) SupportedCurrencies() []string {
	rates := s.FetchRates("USD")

	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ClearCache empties the rate table cache. Breaker state is kept.
func (s *CurrencyService) ClearCache() {
	s.rates.Clear()
}

// CacheStats reports cache and breaker diagnostics.
func (s *CurrencyService) CacheStats() CurrencyCacheStats {
	return CurrencyCacheStats{
		Rates:           s.rates.Stats(),
		BreakerStatus:   s.breaker.Status(),
		BreakerFailures: s.breaker.FailureCount(),
	}
}

// CircuitOpen reports whether the provider breaker is currently open.
func (s *CurrencyService) CircuitOpen() bool {
	return s.breaker.IsOpen()
}

// fallbackTable builds a rate table for base from the static USD-keyed
// table. For base USD the table is returned verbatim; otherwise cross rates
// are derived exactly through the USD pivot:
// rate(base->X) = usdRate[base] / usdRate[X].
func (s *CurrencyService) fallbackTable(base string) map[string]float64 {
	if base == "USD" {
		table := make(map[string]float64, len(fallbackUSDRates))
		for code, rate := range fallbackUSDRates {
			table[code] = rate
		}
		return table
	}

	baseRate, ok := fallbackUSDRates[base]
	if !ok {
		// Unknown base: nothing can be derived, lookups against this
		// table miss for everything but the identity.
		return map[string]float64{base: 1.0}
	}

	table := make(map[string]float64, len(fallbackUSDRates))
	for code, rate := range fallbackUSDRates {
		table[code] = baseRate / rate
	}
	table[base] = 1.0
	return table
}

// roundAmount multiplies and rounds to 2 decimal places.
func roundAmount(amount, rate float64) float64 {
	result, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		Float64()
	return result
}

// normalizeCurrency upper-cases and validates a currency code.
func normalizeCurrency(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != 3 {
		return "", fmt.Errorf("%w: invalid currency code %q", ErrInvalidArgument, code)
	}
	return normalized, nil
}
