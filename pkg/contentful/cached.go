package contentful

import (
	"context"
	"net/url"
	"time"

	"github.com/Sternrassler/contentful-site/pkg/cache"
	"github.com/Sternrassler/contentful-site/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// EntriesFetcher is the subset of Client used by CachedClient.
type EntriesFetcher interface {
	GetEntries(ctx context.Context, query url.Values, preview bool) (*EntryCollection, error)
	GetEntry(ctx context.Context, id string, preview bool) (*Entry, error)
}

// Options control a single cached fetch.
type Options struct {
	// TTL is the freshness window for this call (0 = cache default)
	TTL time.Duration

	// Preview selects the Preview API
	Preview bool

	// ForceFresh skips the cache lookup; the fresh result is still stored
	ForceFresh bool
}

// PrefetchQuery names a content type and extra search parameters to warm.
type PrefetchQuery struct {
	ContentType string
	Query       url.Values
}

// CachedClient fronts an EntriesFetcher with in-process response caches.
type CachedClient struct {
	fetcher     EntriesFetcher
	collections *cache.Cache[*EntryCollection]
	entries     *cache.Cache[*Entry]
	logger      zerolog.Logger
}

// NewCachedClient wraps fetcher. Either cache may be nil, in which case a
// default-sized one is created.
func NewCachedClient(fetcher EntriesFetcher, collections *cache.Cache[*EntryCollection], entries *cache.Cache[*Entry]) *CachedClient {
	if collections == nil {
		collections = cache.New[*EntryCollection](cache.Config{Name: "entries"})
	}
	if entries == nil {
		entries = cache.New[*Entry](cache.Config{Name: "entry"})
	}
	return &CachedClient{
		fetcher:     fetcher,
		collections: collections,
		entries:     entries,
		logger:      logging.NewLogger("contentful-cache"),
	}
}

// GetEntries returns a cached collection when one was stored within the TTL,
// otherwise fetches, stores and returns a fresh one. A key that cannot be
// built bypasses the cache entirely.
func (c *CachedClient) GetEntries(ctx context.Context, query url.Values, opts Options) (*EntryCollection, error) {
	key, cacheable := c.requestKey(ctx, "getEntries", valuesToParams(query), opts.Preview)

	if cacheable && !opts.ForceFresh {
		if hit, ok := c.collections.GetWithin(key, opts.TTL); ok {
			logging.FromContext(ctx, c.logger).Debug().Str("key", key).Bool("cache_hit", true).Msg("Entries served from cache")
			return hit, nil
		}
	}

	collection, err := c.fetcher.GetEntries(ctx, query, opts.Preview)
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.collections.Put(key, collection)
	}
	return collection, nil
}

// GetEntry fetches a single entry by id, cached per (id, preview). Like
// GetEntries, a key that cannot be built bypasses the cache.
func (c *CachedClient) GetEntry(ctx context.Context, id string, opts Options) (*Entry, error) {
	key, cacheable := c.requestKey(ctx, "getEntry", map[string]any{"id": id}, opts.Preview)

	if cacheable && !opts.ForceFresh {
		if hit, ok := c.entries.GetWithin(key, opts.TTL); ok {
			return hit, nil
		}
	}

	entry, err := c.fetcher.GetEntry(ctx, id, opts.Preview)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.entries.Put(key, entry)
	}
	return entry, nil
}

// requestKey builds the cache key for a request. The second result is false
// when the parameters cannot be encoded; the caller then fetches live.
func (c *CachedClient) requestKey(ctx context.Context, method string, params map[string]any, preview bool) (string, bool) {
	key, err := cache.RequestKey{Method: method, Params: params, Preview: preview}.String()
	if err != nil {
		logging.FromContext(ctx, c.logger).Warn().Err(err).Str("method", method).Msg("Cache key unavailable, fetching live")
		return "", false
	}
	return key, true
}

// Prefetch warms the cache for several content types in parallel. Results
// are returned in query order; the first failure cancels the rest.
func (c *CachedClient) Prefetch(ctx context.Context, queries []PrefetchQuery) ([]*EntryCollection, error) {
	results := make([]*EntryCollection, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			params := url.Values{}
			for k, v := range q.Query {
				params[k] = v
			}
			params.Set("content_type", q.ContentType)

			collection, err := c.GetEntries(gctx, params, Options{})
			if err != nil {
				return err
			}
			results[i] = collection
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// valuesToParams converts url.Values to a key-friendly map. Single-valued
// parameters collapse to a string so {"limit":"3"} rather than {"limit":["3"]}.
func valuesToParams(values url.Values) map[string]any {
	if len(values) == 0 {
		return nil
	}
	params := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) == 1 {
			params[k] = v[0]
			continue
		}
		params[k] = v
	}
	return params
}
