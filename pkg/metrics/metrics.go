// Package metrics provides the Prometheus registry used by the site service.
// Metrics are defined in their owning packages (cache, contentful, page, subscribe,
// server) and registered through promauto, which keeps packages free of import cycles.
//
// This package documents every exported series and exposes the HTTP handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the site service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler that exposes the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - site_cache_hits_total{cache} (Counter): fresh entries served
//   - site_cache_misses_total{cache} (Counter): absent or stale lookups
//   - site_cache_evictions_total{cache} (Counter): oldest-inserted keys evicted over capacity
//   - site_cache_entries{cache} (Gauge): current distinct keys
//   - site_cache_key_errors_total (Counter): request keys that could not be encoded
//
// Contentful Metrics (pkg/contentful):
//   - contentful_requests_total{api, status} (Counter): requests by API (graphql, delivery) and status
//   - contentful_request_duration_seconds{api} (Histogram): request latency
//   - contentful_errors_total{class} (Counter): errors by class (client, server, rate_limit, network)
//   - contentful_retries_total{error_class} (Counter): retry attempts
//   - contentful_retry_exhausted_total{error_class} (Counter): requests that ran out of attempts
//
// Rate Limit Metrics (pkg/ratelimit):
//   - contentful_rate_limit_remaining (Gauge): X-Contentful-RateLimit-Second-Remaining
//   - contentful_rate_limit_waits_total (Counter): requests delayed until the reset window
//
// Service Metrics (pkg/page, pkg/blog, pkg/subscribe):
//   - page_fetch_failures_total{reason} (Counter): not_found, upstream, unknown
//   - blog_fetch_failures_total{operation} (Counter): post, related, list, category, categories, slugs
//   - newsletter_subscriptions_total{result} (Counter): success, invalid, error
//
// HTTP Metrics (internal/server):
//   - http_requests_total{route, status} (Counter)
//   - http_request_duration_seconds{route} (Histogram)
//
// Example Prometheus Queries:
//
//   # Page cache hit rate
//   sum(rate(site_cache_hits_total{cache="page"}[5m])) /
//   (sum(rate(site_cache_hits_total{cache="page"}[5m])) + sum(rate(site_cache_misses_total{cache="page"}[5m])))
//
//   # Contentful error rate by class
//   rate(contentful_errors_total[5m])
//
//   # P95 GraphQL latency
//   histogram_quantile(0.95, rate(contentful_request_duration_seconds_bucket{api="graphql"}[5m]))
