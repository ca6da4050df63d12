// Package server exposes pages, blog content, newsletter sign-up and preview
// mode over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Sternrassler/contentful-site/internal/config"
	"github.com/Sternrassler/contentful-site/pkg/blog"
	"github.com/Sternrassler/contentful-site/pkg/content"
	"github.com/Sternrassler/contentful-site/pkg/metrics"
	"github.com/Sternrassler/contentful-site/pkg/page"
	"github.com/Sternrassler/contentful-site/pkg/subscribe"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PageService is implemented by *page.Service.
type PageService interface {
	GetPageBySlug(ctx context.Context, slug string, preview, ignoreCache bool) page.Result
	GetAllPageSlugs(ctx context.Context) []string
	Invalidate(slug string)
}

// BlogService is implemented by *blog.Service.
type BlogService interface {
	Index(ctx context.Context, limit, skip int) blog.Listing
	Post(ctx context.Context, slug string, preview bool) *blog.PostView
	ListCategories(ctx context.Context) []*content.Category
	PostsByCategory(ctx context.Context, slug string, limit int) (*content.Category, []*content.BlogPost)
	AllPostSlugs(ctx context.Context) []string
}

// Newsletter is implemented by *subscribe.Service.
type Newsletter interface {
	SubscribeJSON(ctx context.Context, body io.Reader) subscribe.Result
}

// Deps are the services behind the HTTP surface. Redis is optional.
type Deps struct {
	Config     *config.Config
	Pages      PageService
	Blog       BlogService
	Newsletter Newsletter
	Redis      *redis.Client
}

// Server routes HTTP requests to the content services.
type Server struct {
	cfg        *config.Config
	pages      PageService
	blog       BlogService
	newsletter Newsletter
	redis      *redis.Client
	preview    *PreviewTokens
	logger     zerolog.Logger
}

// New creates a Server.
func New(deps Deps, logger zerolog.Logger) *Server {
	return &Server{
		cfg:        deps.Config,
		pages:      deps.Pages,
		blog:       deps.Blog,
		newsletter: deps.Newsletter,
		redis:      deps.Redis,
		preview:    NewPreviewTokens(deps.Config.Contentful.PreviewSecret, DefaultPreviewTTL),
		logger:     logger.With().Str("component", "http").Logger(),
	}
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /health", s.handleHealth)
	s.handle(mux, "GET /ready", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	s.handle(mux, "GET /api/config", s.handleConfig)
	s.handle(mux, "GET /api/pages", s.handlePageSlugs)
	s.handle(mux, "GET /api/pages/{slug}", s.handlePage)

	s.handle(mux, "GET /api/blog/posts", s.handlePosts)
	s.handle(mux, "GET /api/blog/posts/{slug}", s.handlePost)
	s.handle(mux, "GET /api/blog/slugs", s.handlePostSlugs)
	s.handle(mux, "GET /api/blog/categories", s.handleCategories)
	s.handle(mux, "GET /api/blog/categories/{slug}", s.handleCategory)

	s.handle(mux, "POST /api/subscribe", s.handleSubscribe)

	s.handle(mux, "GET /api/preview", s.handlePreview)
	s.handle(mux, "GET /api/preview/exit", s.handlePreviewExit)
	s.handle(mux, "POST /api/revalidate", s.handleRevalidate)

	return mux
}

// NewHTTPServer wraps Handler in an http.Server listening on addr.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

type message struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.requestLogger(r).Error().Err(err).Msg("Failed to write response")
	}
}
