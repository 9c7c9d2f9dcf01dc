// Package cache provides a time-bounded in-memory key/value store.
//
// Expiry is lazy: an entry past its TTL is treated as absent on read but stays
// in the map until it is overwritten or the cache is cleared. There is no
// background sweeper. Stats reports valid and stale counts against the same
// read-time predicate.
package cache

import (
	"sync"
	"time"
)

// entry stores a cached value together with its insertion time.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Stats is a point-in-time summary of cache contents.
type Stats struct {
	TotalEntries int `json:"total_entries"`
	ValidEntries int `json:"valid_entries"`
	StaleEntries int `json:"stale_entries"`
}

// Cache is a TTL-bounded key/value store. Keys are case-sensitive; the owning
// service is expected to normalize them before use. Safe for concurrent use.
type Cache[V any] struct {
	ttl time.Duration

	mu    sync.RWMutex
	items map[string]entry[V]
	now   func() time.Time
}

// New creates an empty cache whose entries expire ttl after insertion.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:   ttl,
		items: make(map[string]entry[V]),
		now:   time.Now,
	}
}

// Get returns the value for key if an entry exists and is still within its
// TTL. Expired entries are reported as absent but not removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || !c.valid(e, c.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time. Any previous
// entry is replaced wholesale.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, storedAt: c.now()}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry[V])
}

// Stats scans all entries and reports how many are still valid versus stale
// at the moment of the call.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	s := Stats{TotalEntries: len(c.items)}
	for _, e := range c.items {
		if c.valid(e, now) {
			s.ValidEntries++
		} else {
			s.StaleEntries++
		}
	}
	return s
}

// SetNowFunc replaces the clock used for expiry checks. Tests use this to
// simulate time passing.
func (c *Cache[V]) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Cache[V]) valid(e entry[V], now time.Time) bool {
	return now.Sub(e.storedAt) < c.ttl
}
