package cache

import (
	"time"
)

// Entry is a cached value together with the time it was written.
type Entry[V any] struct {
	// Key is the serialized request descriptor
	Key string

	// Value is the cached response
	Value V

	// CachedAt is when the value was last written
	CachedAt time.Time
}

// Age returns how long ago the entry was written relative to now.
func (e Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// IsFresh reports whether the entry is younger than ttl.
// An entry whose age equals ttl is stale.
func (e Entry[V]) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}
