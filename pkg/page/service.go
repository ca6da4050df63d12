// Package page answers "get page by slug" by composing the Contentful client,
// the response cache, the mapper and SEO derivation.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/contentful-site/pkg/cache"
	"github.com/Sternrassler/contentful-site/pkg/content"
	"github.com/Sternrassler/contentful-site/pkg/logging"
	"github.com/Sternrassler/contentful-site/pkg/mapper"
	"github.com/Sternrassler/contentful-site/pkg/seo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var pageFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "page_fetch_failures_total",
	Help: "Page lookups that resolved to no page, by reason",
}, []string{"reason"})

// SlugListLimit bounds GetAllPageSlugs.
const SlugListLimit = 1000

// ErrPageNotFound is returned when no page has the requested slug.
var ErrPageNotFound = errors.New("page not found")

// FetchError wraps an upstream failure while loading a page.
type FetchError struct {
	Slug string
	Err  error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %q: %v", e.Slug, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// GraphQLFetcher runs a GraphQL query and returns its "data" object.
type GraphQLFetcher interface {
	GraphQL(ctx context.Context, query string, variables map[string]any, preview bool) (map[string]any, error)
}

// Result is a page together with its metadata. Both are nil when the page
// does not exist or could not be loaded.
type Result struct {
	Page *content.Page `json:"page"`
	SEO  *seo.Metadata `json:"seo"`
}

// Service resolves pages by slug.
type Service struct {
	fetcher GraphQLFetcher
	cache   *cache.Cache[*content.Page]
	site    seo.Site
	logger  zerolog.Logger
}

// New creates a page service. A nil cache gets a default-sized one.
func New(fetcher GraphQLFetcher, pageCache *cache.Cache[*content.Page], site seo.Site, logger zerolog.Logger) *Service {
	if pageCache == nil {
		pageCache = cache.New[*content.Page](cache.Config{Name: "page"})
	}
	return &Service{
		fetcher: fetcher,
		cache:   pageCache,
		site:    site,
		logger:  logger.With().Str("component", "page-service").Logger(),
	}
}

// GetPageBySlug returns the page for slug with freshly computed metadata.
// A page cached within the TTL is served without an upstream call unless
// ignoreCache is set. Errors never reach the caller: a missing page and an
// upstream failure both yield an empty Result, and failures are logged.
func (s *Service) GetPageBySlug(ctx context.Context, slug string, preview, ignoreCache bool) Result {
	logger := logging.FromContext(ctx, s.logger).With().
		Str("slug", slug).
		Bool("preview", preview).
		Logger()

	key := cache.PageKey(slug, preview)

	if !ignoreCache {
		if page, ok := s.cache.Get(key); ok {
			logger.Debug().Bool("cache_hit", true).Msg("Page served from cache")
			return Result{Page: page, SEO: seo.Generate(page, s.site)}
		}
	}

	start := time.Now()
	page, err := s.fetchPage(ctx, slug, preview)
	if err != nil {
		var fetchErr *FetchError
		switch {
		case errors.Is(err, ErrPageNotFound):
			pageFetchFailures.WithLabelValues("not_found").Inc()
			logger.Debug().Msg("Page not found")
		case errors.As(err, &fetchErr):
			pageFetchFailures.WithLabelValues("upstream").Inc()
			logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Error fetching page")
		default:
			pageFetchFailures.WithLabelValues("unknown").Inc()
			logger.Error().Err(err).Msg("Error fetching page")
		}
		return Result{}
	}

	s.cache.Put(key, page)
	logger.Debug().
		Bool("cache_hit", false).
		Dur("duration", time.Since(start)).
		Msg("Page fetched")

	return Result{Page: page, SEO: seo.Generate(page, s.site)}
}

// fetchPage loads and maps one page. It returns ErrPageNotFound when the
// collection is empty and a *FetchError when Contentful could not be reached.
func (s *Service) fetchPage(ctx context.Context, slug string, preview bool) (*content.Page, error) {
	data, err := s.fetcher.GraphQL(ctx, PageBySlugQuery, map[string]any{
		"slug":    slug,
		"preview": preview,
	}, preview)
	if err != nil {
		return nil, &FetchError{Slug: slug, Err: err}
	}

	page := mapper.MapPageFromGraphQL(data)
	if page == nil {
		return nil, ErrPageNotFound
	}
	return page, nil
}

// GetAllPageSlugs lists published page slugs, up to SlugListLimit.
// Failures yield an empty list.
func (s *Service) GetAllPageSlugs(ctx context.Context) []string {
	data, err := s.fetcher.GraphQL(ctx, AllPageSlugsQuery, map[string]any{"limit": SlugListLimit}, false)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error().Err(err).Msg("Error fetching all page slugs")
		return []string{}
	}
	return mapper.MapPageSlugs(data)
}

// Invalidate drops the cached published and preview versions of slug.
func (s *Service) Invalidate(slug string) {
	s.cache.Delete(cache.PageKey(slug, false))
	s.cache.Delete(cache.PageKey(slug, true))
}
