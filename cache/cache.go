// Package cache provides a concurrency-safe map whose entries can carry a
// time-to-live. Expired entries are hidden from lookups but are not removed
// implicitly; the owner sweeps them via ExpiredValues and Remove.
package cache

import (
	"sync"
	"time"

	"ticketing/clock"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means the entry never expires
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	clock   clock.Clock
}

type Option[K comparable, V any] func(*Cache[K, V])

// WithClock overrides the clock used for expiry checks.
func WithClock[K comparable, V any](c clock.Clock) Option[K, V] {
	return func(cc *Cache[K, V]) {
		cc.clock = c
	}
}

func New[K comparable, V any](opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries: make(map[K]entry[V]),
		clock:   clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set inserts or overwrites the value for key. A positive ttl arms the
// expiry clock from now; ttl <= 0 stores the entry without expiry.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// TryGet returns the value for key if it is present and not expired. An
// expired entry is reported as a miss but stays in the cache for the sweeper.
func (c *Cache[K, V]) TryGet(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(c.clock.Now()) {
		var zero V
		return zero, false
	}

	return e.value, true
}

// Remove deletes the entry for key regardless of its expiry state and
// reports whether an entry was present. The bool makes Remove usable as an
// atomic claim: under concurrent removal exactly one caller sees true.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	return ok
}

// Take removes and returns the entry for key regardless of its expiry state.
// Under concurrent calls for the same key exactly one caller receives the
// value.
func (c *Cache[K, V]) Take(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	delete(c.entries, key)
	return e.value, true
}

// ExpiredValues snapshots the values of all currently expired entries
// without removing them.
func (c *Cache[K, V]) ExpiredValues() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.clock.Now()
	var expired []V
	for _, e := range c.entries {
		if e.expired(now) {
			expired = append(expired, e.value)
		}
	}
	return expired
}

// Len reports the number of entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
