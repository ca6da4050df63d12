package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// PreviewCookie holds the signed preview token.
	PreviewCookie = "site_preview"

	// DefaultPreviewTTL is how long preview mode lasts.
	DefaultPreviewTTL = time.Hour

	msgInvalidPreview = "Invalid token or missing slug"
)

// previewSlugPattern limits preview redirects to plain site paths.
var previewSlugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-/]*$`)

// ErrPreviewDisabled is returned when no preview secret is configured.
var ErrPreviewDisabled = errors.New("preview mode is not configured")

// PreviewClaims are carried in the preview cookie.
type PreviewClaims struct {
	Slug string `json:"slug"`
	jwt.RegisteredClaims
}

// PreviewTokens issues and validates HS256 preview tokens.
type PreviewTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewPreviewTokens creates a token service. An empty secret disables
// preview mode.
func NewPreviewTokens(secret string, ttl time.Duration) *PreviewTokens {
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether a secret is configured.
func (p *PreviewTokens) Enabled() bool {
	return len(p.secret) > 0
}

// CheckSecret compares candidate with the configured secret in constant time.
func (p *PreviewTokens) CheckSecret(candidate string) bool {
	if !p.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare(p.secret, []byte(candidate)) == 1
}

// Issue signs a preview token for slug.
func (p *PreviewTokens) Issue(slug string) (string, error) {
	if !p.Enabled() {
		return "", ErrPreviewDisabled
	}

	now := p.now()
	claims := &PreviewClaims{
		Slug: slug,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign preview token: %w", err)
	}
	return token, nil
}

// Validate parses and verifies a preview token.
func (p *PreviewTokens) Validate(tokenString string) (*PreviewClaims, error) {
	if !p.Enabled() {
		return nil, ErrPreviewDisabled
	}
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}

	claims := &PreviewClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, fmt.Errorf("invalid preview token: %w", err)
	}
	return claims, nil
}

// isPreview reports whether r carries a valid preview cookie.
func (s *Server) isPreview(r *http.Request) bool {
	cookie, err := r.Cookie(PreviewCookie)
	if err != nil {
		return false
	}
	if _, err := s.preview.Validate(cookie.Value); err != nil {
		s.requestLogger(r).Debug().Err(err).Msg("Ignoring preview cookie")
		return false
	}
	return true
}

// redirectPath maps a slug to the site path it is served under. Leading
// slashes are dropped; anything left that is not a plain path (control
// characters, schemes, dots, backslashes) is rejected.
func redirectPath(slug string) (string, bool) {
	slug = strings.TrimLeft(slug, "/\\")
	if !previewSlugPattern.MatchString(slug) {
		return "", false
	}
	if slug == "home" {
		return "/", true
	}
	return "/" + slug, true
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slug := q.Get("slug")
	target, ok := redirectPath(slug)
	if !s.preview.CheckSecret(q.Get("secret")) || !ok {
		s.writeJSON(w, r, http.StatusUnauthorized, message{msgInvalidPreview})
		return
	}

	token, err := s.preview.Issue(slug)
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("Error enabling preview mode")
		s.writeJSON(w, r, http.StatusInternalServerError, message{"Error enabling preview mode"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     PreviewCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.preview.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	s.requestLogger(r).Info().Str("slug", slug).Msg("Preview mode enabled")
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (s *Server) handlePreviewExit(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     PreviewCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.requestLogger(r).Info().Msg("Preview mode disabled")
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// handleRevalidate drops a page from the cache. It is guarded by the
// preview secret.
func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slug := q.Get("slug")
	if !s.preview.CheckSecret(q.Get("secret")) || slug == "" {
		s.writeJSON(w, r, http.StatusUnauthorized, message{msgInvalidPreview})
		return
	}

	s.pages.Invalidate(slug)
	s.requestLogger(r).Info().Str("slug", slug).Msg("Page revalidated")
	s.writeJSON(w, r, http.StatusOK, map[string]any{"revalidated": true, "slug": slug})
}
