// Package blog serves blog posts and categories from the Contentful Delivery
// API. Lookups go through the cached entries client; failures are logged and
// degrade to nil or empty results.
package blog

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/contentful-site/pkg/content"
	"github.com/Sternrassler/contentful-site/pkg/contentful"
	"github.com/Sternrassler/contentful-site/pkg/logging"
	"github.com/Sternrassler/contentful-site/pkg/mapper"
	"github.com/Sternrassler/contentful-site/pkg/pagination"
	"github.com/Sternrassler/contentful-site/pkg/seo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var blogFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blog_fetch_failures_total",
	Help: "Blog lookups that degraded to an empty result, by operation",
}, []string{"operation"})

const (
	// DefaultRelatedLimit is the number of related posts shown under a post.
	DefaultRelatedLimit = 3

	// DefaultListLimit is used when ListPosts gets a non-positive limit.
	DefaultListLimit = 10

	// CategoryListLimit bounds ListCategories.
	CategoryListLimit = 100

	// includeDepth resolves post -> author -> photo.
	includeDepth = "2"

	newestFirst = "-sys.createdAt"
)

// EntriesSource is the subset of contentful.CachedClient used by Service.
type EntriesSource interface {
	GetEntries(ctx context.Context, query url.Values, opts contentful.Options) (*contentful.EntryCollection, error)
}

// Listing is one page of posts plus the category navigation.
type Listing struct {
	Posts      []content.PostSummary `json:"posts"`
	Total      int                   `json:"total"`
	Categories []*content.Category   `json:"categories"`
}

// PostView is a single post with related posts and its metadata.
type PostView struct {
	Post    *content.BlogPost     `json:"post"`
	Related []content.PostSummary `json:"related"`
	SEO     *seo.Metadata         `json:"seo"`
}

// Service resolves blog content.
type Service struct {
	source EntriesSource
	batch  *pagination.BatchFetcher
	site   seo.Site
	logger zerolog.Logger
}

// New creates a blog service. A nil batch fetcher gets the default config.
func New(source EntriesSource, batch *pagination.BatchFetcher, site seo.Site, logger zerolog.Logger) *Service {
	if batch == nil {
		batch = pagination.NewBatchFetcher(pagination.DefaultConfig())
	}
	return &Service{
		source: source,
		batch:  batch,
		site:   site,
		logger: logger.With().Str("component", "blog-service").Logger(),
	}
}

// GetPostBySlug returns the post with slug, or nil.
func (s *Service) GetPostBySlug(ctx context.Context, slug string, preview bool) *content.BlogPost {
	query := url.Values{}
	query.Set("content_type", mapper.ContentTypeBlogPost)
	query.Set("fields.slug", slug)
	query.Set("include", includeDepth)
	query.Set("limit", "1")

	col, err := s.source.GetEntries(ctx, query, contentful.Options{Preview: preview})
	if err != nil {
		blogFetchFailures.WithLabelValues("post").Inc()
		s.log(ctx).Error().Err(err).Str("slug", slug).Bool("preview", preview).Msg("Error fetching post")
		return nil
	}
	if len(col.Items) == 0 {
		return nil
	}
	return mapper.MapBlogPost(col.Items[0], col)
}

// RelatedPosts returns up to limit other posts in the same category, newest
// first. A post without a category has no related posts.
func (s *Service) RelatedPosts(ctx context.Context, postID, categoryID string, limit int, preview bool) []*content.BlogPost {
	if categoryID == "" {
		return []*content.BlogPost{}
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	query := url.Values{}
	query.Set("content_type", mapper.ContentTypeBlogPost)
	query.Set("fields.category.sys.id", categoryID)
	query.Set("sys.id[ne]", postID)
	query.Set("order", newestFirst)
	query.Set("limit", strconv.Itoa(limit))

	col, err := s.source.GetEntries(ctx, query, contentful.Options{Preview: preview})
	if err != nil {
		blogFetchFailures.WithLabelValues("related").Inc()
		s.log(ctx).Error().Err(err).Str("post_id", postID).Msg("Error fetching related posts")
		return []*content.BlogPost{}
	}
	return mapper.MapBlogPosts(col)
}

// Post returns the post with slug together with related posts and metadata,
// or nil when no such post exists.
func (s *Service) Post(ctx context.Context, slug string, preview bool) *PostView {
	post := s.GetPostBySlug(ctx, slug, preview)
	if post == nil {
		return nil
	}

	var categoryID string
	if post.Category != nil {
		categoryID = post.Category.ID
	}

	return &PostView{
		Post:    post,
		Related: summaries(s.RelatedPosts(ctx, post.ID, categoryID, DefaultRelatedLimit, preview)),
		SEO:     seo.ForBlogPost(post, s.site),
	}
}

// ListPosts returns one page of posts, newest first, and the total count.
func (s *Service) ListPosts(ctx context.Context, limit, skip int) ([]*content.BlogPost, int) {
	return s.listPosts(ctx, url.Values{}, limit, skip)
}

func (s *Service) listPosts(ctx context.Context, query url.Values, limit, skip int) ([]*content.BlogPost, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	query.Set("content_type", mapper.ContentTypeBlogPost)
	query.Set("order", newestFirst)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("skip", strconv.Itoa(skip))
	query.Set("include", includeDepth)

	col, err := s.source.GetEntries(ctx, query, contentful.Options{})
	if err != nil {
		blogFetchFailures.WithLabelValues("list").Inc()
		s.log(ctx).Error().Err(err).Int("limit", limit).Int("skip", skip).Msg("Error listing posts")
		return []*content.BlogPost{}, 0
	}
	return mapper.MapBlogPosts(col), col.Total
}

// Index loads a page of posts and all categories concurrently.
func (s *Service) Index(ctx context.Context, limit, skip int) Listing {
	var (
		posts      []*content.BlogPost
		total      int
		categories []*content.Category
	)

	// both lookups degrade on their own, so one failing never cancels the other
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		posts, total = s.ListPosts(ctx, limit, skip)
	}()
	go func() {
		defer wg.Done()
		categories = s.ListCategories(ctx)
	}()
	wg.Wait()

	return Listing{Posts: summaries(posts), Total: total, Categories: categories}
}

// GetCategoryBySlug returns the category with slug, or nil.
func (s *Service) GetCategoryBySlug(ctx context.Context, slug string) *content.Category {
	query := url.Values{}
	query.Set("content_type", mapper.ContentTypeCategory)
	query.Set("fields.slug", slug)
	query.Set("limit", "1")

	col, err := s.source.GetEntries(ctx, query, contentful.Options{})
	if err != nil {
		blogFetchFailures.WithLabelValues("category").Inc()
		s.log(ctx).Error().Err(err).Str("slug", slug).Msg("Error fetching category")
		return nil
	}
	if len(col.Items) == 0 {
		return nil
	}
	return mapper.MapCategory(col.Items[0])
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) []*content.Category {
	query := url.Values{}
	query.Set("content_type", mapper.ContentTypeCategory)
	query.Set("order", "fields.name")
	query.Set("limit", strconv.Itoa(CategoryListLimit))

	col, err := s.source.GetEntries(ctx, query, contentful.Options{})
	if err != nil {
		blogFetchFailures.WithLabelValues("categories").Inc()
		s.log(ctx).Error().Err(err).Msg("Error listing categories")
		return []*content.Category{}
	}
	return mapper.MapCategories(col)
}

// PostsByCategory returns the category with slug and its newest posts. The
// category is nil when it does not exist.
func (s *Service) PostsByCategory(ctx context.Context, slug string, limit int) (*content.Category, []*content.BlogPost) {
	category := s.GetCategoryBySlug(ctx, slug)
	if category == nil {
		return nil, []*content.BlogPost{}
	}

	query := url.Values{}
	query.Set("fields.category.sys.id", category.ID)
	posts, _ := s.listPosts(ctx, query, limit, 0)
	return category, posts
}

// AllPostSlugs lists every published post slug, oldest first. Pages are
// fetched in parallel; when some pages fail the slugs that did load are
// returned.
func (s *Service) AllPostSlugs(ctx context.Context) []string {
	start := time.Now()

	pages, err := s.batch.FetchAll(ctx, pagination.PageFetcherFunc(
		func(ctx context.Context, skip, limit int) (*contentful.EntryCollection, error) {
			query := url.Values{}
			query.Set("content_type", mapper.ContentTypeBlogPost)
			query.Set("select", "fields.slug")
			query.Set("order", "sys.createdAt")
			query.Set("skip", strconv.Itoa(skip))
			query.Set("limit", strconv.Itoa(limit))
			return s.source.GetEntries(ctx, query, contentful.Options{})
		}))
	if err != nil {
		blogFetchFailures.WithLabelValues("slugs").Inc()
		s.log(ctx).Error().Err(err).Int("pages", len(pages)).Msg("Error fetching post slugs")
	}

	slugs := []string{}
	for _, page := range pages {
		for _, item := range page.Items {
			if slug, ok := item.Fields["slug"].(string); ok && slug != "" {
				slugs = append(slugs, slug)
			}
		}
	}

	s.log(ctx).Debug().Int("count", len(slugs)).Dur("duration", time.Since(start)).Msg("Post slugs listed")
	return slugs
}

func (s *Service) log(ctx context.Context) *zerolog.Logger {
	return logging.FromContext(ctx, s.logger)
}

func summaries(posts []*content.BlogPost) []content.PostSummary {
	out := make([]content.PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Summary())
	}
	return out
}
