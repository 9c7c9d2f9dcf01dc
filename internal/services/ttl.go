package services

import "time"

// Cache TTLs per data type. Prices are short-lived; company profiles change
// rarely and are kept for a day.
const (
	TTLStockPrice     = time.Minute
	TTLCompanyProfile = 24 * time.Hour
	TTLBondPrice      = 10 * time.Minute
	TTLExchangeRates  = 10 * time.Minute
)

// Breaker settings. Currency lookups trip earlier because they have a safe
// static fallback; stock prices have none, so more transient failures are
// tolerated before giving up.
const (
	stockBreakerThreshold    = 5
	currencyBreakerThreshold = 3
	breakerResetWindow       = 60 * time.Second
)
