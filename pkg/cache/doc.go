// Package cache provides the bounded, process-scoped response cache that sits
// in front of Contentful calls.
//
// Entries are fresh while now - CachedAt < TTL. Stale entries are reported as
// misses but stay in place until their key is overwritten or evicted (lazy
// expiry). When the number of distinct keys exceeds the capacity, the key that
// was inserted first is evicted. Reads and overwrites never change that order,
// so eviction is FIFO by first insertion rather than LRU.
//
// # Basic Usage
//
//	pages := cache.New[*content.Page](cache.Config{
//		Name:     "page",
//		Capacity: 100,
//		TTL:      time.Minute,
//	})
//
//	key := cache.PageKey("about", false)
//	if page, ok := pages.Get(key); ok {
//		return page
//	}
//	pages.Put(key, fetched)
//
// # Request Keys
//
// RequestKey serializes a request descriptor (method, params, preview) into a
// deterministic string. Encoding can fail for values JSON cannot represent;
// callers treat ErrKeyEncoding as "skip the cache" and fetch live.
//
//	key, err := cache.RequestKey{
//		Method:  "getEntries",
//		Params:  map[string]any{"content_type": "blogPost", "limit": 3},
//		Preview: false,
//	}.String()
//
// # Concurrency
//
// A Cache is safe for concurrent use. Two concurrent misses for the same key
// may both fetch and both Put; the last writer wins.
//
// # Metrics
//
//   - site_cache_hits_total{cache}
//   - site_cache_misses_total{cache}
//   - site_cache_evictions_total{cache}
//   - site_cache_entries{cache}
//   - site_cache_key_errors_total
package cache
