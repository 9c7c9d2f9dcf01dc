package services

import "errors"

// Error taxonomy for the market-data services. Callers discriminate with
// errors.Is; HTTP handlers map these to status codes.
var (
	// ErrInvalidArgument marks a malformed ticker, ISIN or currency code.
	// It never touches a cache or breaker.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrServiceUnavailable is returned when the circuit breaker is open
	// and the cache holds no usable entry.
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// ErrUpstream marks a failed provider call or a transport-level error
	// payload.
	ErrUpstream = errors.New("upstream provider error")

	// ErrNotFound is returned when the provider explicitly reports no data
	// for the requested symbol.
	ErrNotFound = errors.New("symbol not found")

	// ErrNoRateFound is returned when a rate table was obtained but lacks
	// the requested currency.
	ErrNoRateFound = errors.New("no exchange rate found")

	// ErrNoPriceAvailable is returned when no bond endpoint yielded a
	// usable price.
	ErrNoPriceAvailable = errors.New("no price available")

	// ErrConfiguration marks a missing required credential.
	ErrConfiguration = errors.New("service not configured")
)
