// Package breaker implements a consecutive-failure circuit breaker for
// outbound provider calls.
//
// The breaker opens once the failure count reaches its threshold and stays
// open until the reset window has elapsed since the most recent failure.
// Healing is lazy: IsOpen itself resets the count once the window has passed,
// so the breaker recovers on the next query rather than via a timer. A single
// recorded success clears the count entirely regardless of how many failures
// preceded it.
package breaker

import (
	"sync"
	"time"
)

// Status values reported for diagnostics.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// Breaker tracks consecutive failures against a threshold. Safe for
// concurrent use.
type Breaker struct {
	threshold   int
	resetWindow time.Duration

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	now         func() time.Time
}

// New creates a closed breaker that opens after threshold consecutive
// failures and self-heals once resetWindow has elapsed since the last one.
func New(threshold int, resetWindow time.Duration) *Breaker {
	return &Breaker{
		threshold:   threshold,
		resetWindow: resetWindow,
		now:         time.Now,
	}
}

// IsOpen reports whether calls should currently be short-circuited.
//
// This is a stateful check, not a pure read: once the reset window has
// elapsed since the last failure the counter is zeroed before reporting
// closed, so a later failure streak starts counting from zero.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return false
	}
	if b.now().Sub(b.lastFailure) >= b.resetWindow {
		b.failures = 0
		return false
	}
	return true
}

// RecordFailure increments the consecutive-failure count and stamps the
// failure time.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
}

// RecordSuccess clears the failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// FailureCount returns the current consecutive-failure count.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Status projects IsOpen to OPEN or CLOSED for diagnostics.
func (b *Breaker) Status() string {
	if b.IsOpen() {
		return StatusOpen
	}
	return StatusClosed
}

// SetNowFunc replaces the clock used for the reset window. Tests use this to
// simulate time passing.
func (b *Breaker) SetNowFunc(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}
