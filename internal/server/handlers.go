package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/contentful-site/internal/config"
	"github.com/Sternrassler/contentful-site/pkg/content"
)

// MaxListLimit caps the limit query parameter of list endpoints.
const MaxListLimit = 100

const readyTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady checks redis when one is configured.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.requestLogger(r).Warn().Err(err).Msg("Redis not ready")
			http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type publicConfig struct {
	FeatureFlags config.FeatureFlags `json:"featureFlags"`
	Contentful   struct {
		Environment string `json:"environment"`
	} `json:"contentful"`
	SiteInfo struct {
		Name   string `json:"name"`
		Locale string `json:"locale"`
	} `json:"siteInfo"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var out publicConfig
	out.FeatureFlags = s.cfg.Features
	out.Contentful.Environment = s.cfg.Contentful.Environment
	out.SiteInfo.Name = s.cfg.Site.Name
	out.SiteInfo.Locale = s.cfg.Site.Locale

	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handlePageSlugs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{"slugs": s.pages.GetAllPageSlugs(r.Context())})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	res := s.pages.GetPageBySlug(r.Context(), r.PathValue("slug"), s.isPreview(r), false)
	if res.Page == nil {
		s.writeJSON(w, r, http.StatusNotFound, message{"Page not found"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	limit, skip := listParams(r)
	s.writeJSON(w, r, http.StatusOK, s.blog.Index(r.Context(), limit, skip))
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	view := s.blog.Post(r.Context(), r.PathValue("slug"), s.isPreview(r))
	if view == nil {
		s.writeJSON(w, r, http.StatusNotFound, message{"Post not found"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handlePostSlugs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{"slugs": s.blog.AllPostSlugs(r.Context())})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{"categories": s.blog.ListCategories(r.Context())})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	limit, _ := listParams(r)
	category, posts := s.blog.PostsByCategory(r.Context(), r.PathValue("slug"), limit)
	if category == nil {
		s.writeJSON(w, r, http.StatusNotFound, message{"Category not found"})
		return
	}

	summaries := make([]content.PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, p.Summary())
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"category": category, "posts": summaries})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	res := s.newsletter.SubscribeJSON(r.Context(), r.Body)
	s.writeJSON(w, r, res.StatusCode, res)
}

// listParams reads limit and skip. Missing or malformed values are zero,
// which the services replace with their defaults.
func listParams(r *http.Request) (limit, skip int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	skip, _ = strconv.Atoi(q.Get("skip"))
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, skip
}
