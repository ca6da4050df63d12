package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks fresh lookups by cache name
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"cache"},
	)

	// CacheMisses tracks absent or stale lookups by cache name
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"cache"},
	)

	// CacheEvictions tracks keys evicted because the cache was over capacity
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_cache_evictions_total",
			Help: "Total number of oldest-inserted keys evicted over capacity",
		},
		[]string{"cache"},
	)

	// CacheEntries tracks the number of distinct keys held
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "site_cache_entries",
			Help: "Current number of distinct keys in the response cache",
		},
		[]string{"cache"},
	)

	// KeyErrors tracks request descriptors that could not be serialized
	KeyErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "site_cache_key_errors_total",
			Help: "Total number of request keys that failed to encode",
		},
	)
)
