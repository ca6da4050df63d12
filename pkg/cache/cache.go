package cache

import (
	"sync"
	"time"
)

const (
	// DefaultCapacity is the number of distinct keys kept when Config.Capacity is unset
	DefaultCapacity = 100

	// DefaultTTL is the freshness window when Config.TTL is unset
	DefaultTTL = 60 * time.Second
)

// Config holds cache configuration.
type Config struct {
	// Name labels the cache in metrics and logs (e.g. "page", "entries")
	Name string

	// Capacity is the maximum number of distinct keys retained
	Capacity int

	// TTL is how long an entry is served after it was written
	TTL time.Duration

	// Now returns the current time (default: time.Now)
	Now func() time.Time
}

// Cache is a bounded TTL cache with insertion-order eviction.
type Cache[V any] struct {
	mu       sync.Mutex
	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time

	entries map[string]Entry[V]
	// order holds each distinct key once, by first insertion
	order []string
}

// New creates a cache. Zero-valued config fields fall back to defaults.
func New[V any](cfg Config) *Cache[V] {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Cache[V]{
		name:     cfg.Name,
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
		now:      cfg.Now,
		entries:  make(map[string]Entry[V], cfg.Capacity),
		order:    make([]string, 0, cfg.Capacity),
	}
}

// Name returns the cache name used in metrics.
func (c *Cache[V]) Name() string {
	return c.name
}

// TTL returns the freshness window.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Capacity returns the maximum number of distinct keys.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Get returns the value for key if it was written less than TTL ago.
// Stale entries are reported as absent but are not removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.GetWithin(key, c.ttl)
}

// GetWithin is Get with a caller-supplied freshness window. A non-positive
// ttl uses the cache default.
func (c *Cache[V]) GetWithin(key string, ttl time.Duration) (V, bool) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok || !entry.IsFresh(c.now(), ttl) {
		CacheMisses.WithLabelValues(c.name).Inc()
		var zero V
		return zero, false
	}

	CacheHits.WithLabelValues(c.name).Inc()
	return entry.Value, true
}

// Put stores value under key with the current time. A new key is appended to
// the insertion order; if that pushes the key count over capacity the
// oldest-inserted key is evicted. Overwriting an existing key keeps its
// original position.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.entries[key]
	c.entries[key] = Entry[V]{
		Key:      key,
		Value:    value,
		CachedAt: c.now(),
	}

	if !exists {
		c.order = append(c.order, key)
		if len(c.order) > c.capacity {
			oldest := c.order[0]
			c.order = append(c.order[:0], c.order[1:]...)
			delete(c.entries, oldest)
			CacheEvictions.WithLabelValues(c.name).Inc()
		}
	}

	CacheEntries.WithLabelValues(c.name).Set(float64(len(c.entries)))
}

// Delete removes key from the cache.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	CacheEntries.WithLabelValues(c.name).Set(float64(len(c.entries)))
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[V], c.capacity)
	c.order = c.order[:0]

	CacheEntries.WithLabelValues(c.name).Set(0)
}

// Len returns the number of distinct keys held, fresh or stale.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the held keys in first-insertion order.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}
