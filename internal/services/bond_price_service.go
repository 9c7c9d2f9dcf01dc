package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/avramidis/folio/internal/cache"
	"github.com/avramidis/folio/internal/clients/fmp"
)

// BondDataClient is the slice of the FMP client used by the bond pricing
// service. Both endpoints return the first result row loosely typed.
type BondDataClient interface {
	GetProfile(isin string) (map[string]interface{}, error)
	GetQuote(isin string) (map[string]interface{}, error)
}

// BondPrice is a bond reference price expressed as a percentage of par.
type BondPrice struct {
	ISIN      string    `json:"isin"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Source    string    `json:"source"` // "live" or "cache"
	Timestamp time.Time `json:"timestamp"`
}

// BondCacheStats is the diagnostic snapshot for the bond pricing service.
type BondCacheStats struct {
	Prices cache.Stats `json:"prices"`
}

// bondPriceFields are the candidate price fields scanned in order on each
// endpoint's payload. The first positive numeric value wins.
var bondPriceFields = []string{"price", "previousClose", "lastPrice", "navPrice"}

// BondPriceService resolves bond reference prices by ISIN. It carries no
// circuit breaker: callers treat occasional unavailability as an ordinary
// error.
type BondPriceService struct {
	client BondDataClient
	prices *cache.Cache[BondPrice]
	log    zerolog.Logger
}

// NewBondPriceService creates a bond pricing service.
func NewBondPriceService(client BondDataClient, log zerolog.Logger) *BondPriceService {
	return &BondPriceService{
		client: client,
		prices: cache.New[BondPrice](TTLBondPrice),
		log:    log.With().Str("service", "bond_price").Logger(),
	}
}

// GetPrice returns the reference price for an ISIN, trying the profile
// endpoint first and the quote endpoint second. Cache hits are tagged with
// source "cache".
func (s *BondPriceService) GetPrice(isin string) (*BondPrice, error) {
	normalized := strings.ToUpper(strings.TrimSpace(isin))
	if len(normalized) < 6 {
		return nil, fmt.Errorf("%w: ISIN %q is too short", ErrInvalidArgument, isin)
	}

	if rec, ok := s.prices.Get(normalized); ok {
		rec.Source = "cache"
		return &rec, nil
	}

	endpoints := []struct {
		name  string
		fetch func(string) (map[string]interface{}, error)
	}{
		{"profile", s.client.GetProfile},
		{"quote", s.client.GetQuote},
	}

	var lastErr error
	for _, ep := range endpoints {
		row, err := ep.fetch(normalized)
		if err != nil {
			if errors.Is(err, fmp.ErrMissingAPIKey) {
				return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
			}
			s.log.Warn().Err(err).Str("isin", normalized).Str("endpoint", ep.name).Msg("Bond price lookup failed")
			lastErr = err
			continue
		}
		if row == nil {
			lastErr = fmt.Errorf("empty %s response", ep.name)
			continue
		}

		price, ok := scanPriceFields(row)
		if !ok {
			lastErr = fmt.Errorf("no usable price field in %s response", ep.name)
			continue
		}

		rec := BondPrice{
			ISIN:      normalized,
			Price:     price,
			Currency:  stringField(row, "currency", "EUR"),
			Source:    "live",
			Timestamp: time.Now(),
		}
		s.prices.Set(normalized, rec)

		s.log.Debug().
			Str("isin", normalized).
			Str("endpoint", ep.name).
			Float64("price", price).
			Msg("Fetched bond price")

		return &rec, nil
	}

	return nil, fmt.Errorf("%w for %s: %v", ErrNoPriceAvailable, normalized, lastErr)
}

// ClearCache empties the bond price cache.
func (s *BondPriceService) ClearCache() {
	s.prices.Clear()
}

// CacheStats reports cache diagnostics.
func (s *BondPriceService) CacheStats() BondCacheStats {
	return BondCacheStats{Prices: s.prices.Stats()}
}

// scanPriceFields returns the first positive numeric candidate field.
func scanPriceFields(row map[string]interface{}) (float64, bool) {
	for _, field := range bondPriceFields {
		if v, ok := numericField(row, field); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// numericField extracts a numeric value that providers may encode as a JSON
// number or a string.
func numericField(row map[string]interface{}, key string) (float64, bool) {
	val, ok := row[key]
	if !ok || val == nil {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// stringField extracts a string value with a default.
func stringField(row map[string]interface{}, key, fallback string) string {
	if val, ok := row[key]; ok {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
