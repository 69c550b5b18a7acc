// Package cache holds upstream query results in memory for a fixed TTL.
//
// Entries expire lazily: an entry older than the TTL is dropped by the next
// Get that touches it. There is no background sweep and no capacity bound.
// The key space is one entry per distinct query text, which is small and
// bounded by the endpoints and parameters actually used.
package cache

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is a TTL cache safe for concurrent use. A Cache built with a
// non-positive TTL is disabled: Get always misses and Set does nothing.
type Cache[V any] struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]entry[V]
}

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// New creates a cache whose entries stay valid for ttl. A nil clock means real time.
func New[V any](ttl time.Duration, clock clockwork.Clock) *Cache[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// TTLFromMillis converts a millisecond setting to a TTL. NaN, infinities
// and non-positive values yield 0, which disables the cache. Values beyond
// the Duration range saturate at the maximum Duration.
func TTLFromMillis(ms float64) time.Duration {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
		return 0
	}
	if ms >= float64(math.MaxInt64)/float64(time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// Enabled reports whether the cache stores anything.
func (c *Cache[V]) Enabled() bool { return c.ttl > 0 }

// TTL returns the configured validity window.
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Get returns the value stored under key if it is no older than the TTL.
// Expired entries are removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.clock.Since(e.createdAt) > c.ttl {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry and resetting its age.
func (c *Cache[V]) Set(key string, value V) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, createdAt: c.clock.Now()}
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

// Len returns the number of stored entries, expired ones included until read.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
