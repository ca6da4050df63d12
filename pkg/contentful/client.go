// Package contentful provides the Contentful HTTP client for the GraphQL
// Content API and the REST Delivery/Preview APIs, with throttling, retry and
// shared rate-limit tracking.
package contentful

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/contentful-site/pkg/logging"
	"github.com/Sternrassler/contentful-site/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for Contentful client operations.
var (
	contentfulRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentful_requests_total",
		Help: "Total Contentful requests by API and status",
	}, []string{"api", "status"})

	contentfulRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contentful_request_duration_seconds",
		Help:    "Contentful request duration in seconds by API",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"api"})

	contentfulErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contentful_errors_total",
		Help: "Total Contentful errors by class",
	}, []string{"class"})
)

// API labels used in metrics and logs.
const (
	APIGraphQL  = "graphql"
	APIDelivery = "delivery"
	APIPreview  = "preview"
)

const (
	DefaultGraphQLURL  = "https://graphql.contentful.com"
	DefaultDeliveryURL = "https://cdn.contentful.com"
	DefaultPreviewURL  = "https://preview.contentful.com"

	// DefaultEnvironment is used when Config.Environment is empty.
	DefaultEnvironment = "master"

	// HeaderDraft asks the GraphQL API for unpublished content.
	HeaderDraft = "X-Contentful-Draft"

	maxErrorBody = 4 << 10
)

// Config holds the client configuration.
type Config struct {
	SpaceID string

	// AccessToken is the Content Delivery API token (REQUIRED)
	AccessToken string

	// PreviewAccessToken is the Content Preview API token.
	// Falls back to AccessToken when empty.
	PreviewAccessToken string

	Environment string

	// Base URLs, overridable for tests
	GraphQLURL  string
	DeliveryURL string
	PreviewURL  string

	// RateLimit is the outbound request budget per second (0 = unlimited)
	RateLimit int

	// Retry
	MaxRetries     int           // retries after the first attempt
	InitialBackoff time.Duration // overrides the per-class initial backoff when > 0
	MaxBackoff     time.Duration // overrides the per-class maximum backoff when > 0

	// Timeout bounds a single HTTP attempt
	Timeout time.Duration

	// RateLimiter shares Contentful rate-limit state across instances (optional)
	RateLimiter *ratelimit.Tracker

	// HTTPClient replaces the default transport (optional)
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(spaceID, accessToken string) Config {
	return Config{
		SpaceID:     spaceID,
		AccessToken: accessToken,
		Environment: DefaultEnvironment,
		GraphQLURL:  DefaultGraphQLURL,
		DeliveryURL: DefaultDeliveryURL,
		PreviewURL:  DefaultPreviewURL,
		RateLimit:   50,
		MaxRetries:  2,
		Timeout:     10 * time.Second,
	}
}

// Client talks to the Contentful APIs.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// New creates a new Contentful client.
func New(cfg Config) (*Client, error) {
	if cfg.SpaceID == "" {
		return nil, fmt.Errorf("space id is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = DefaultGraphQLURL
	}
	if cfg.DeliveryURL == "" {
		cfg.DeliveryURL = DefaultDeliveryURL
	}
	if cfg.PreviewURL == "" {
		cfg.PreviewURL = DefaultPreviewURL
	}
	if cfg.PreviewAccessToken == "" {
		cfg.PreviewAccessToken = cfg.AccessToken
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		burst = cfg.RateLimit
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(limit, burst),
		rateLimiter: cfg.RateLimiter,
		config:      cfg,
		logger:      logging.NewLogger("contentful-client"),
	}, nil
}

// Environment returns the configured Contentful environment.
func (c *Client) Environment() string {
	return c.config.Environment
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   map[string]any `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// GraphQL runs query against the GraphQL Content API and returns the "data"
// object. Preview requests use the preview token and the draft header.
// A response with errors and no data is an error; partial data is returned
// with the errors logged.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, preview bool) (map[string]any, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/content/v1/spaces/%s/environments/%s",
		strings.TrimRight(c.config.GraphQLURL, "/"), c.config.SpaceID, c.config.Environment)

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token(preview))
		if preview {
			req.Header.Set(HeaderDraft, "true")
		}
		return req, nil
	}

	var resp graphQLResponse
	if err := c.do(ctx, APIGraphQL, build, &resp); err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		if resp.Data == nil {
			contentfulErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
			return nil, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
		}
		logging.FromContext(ctx, c.logger).Warn().
			Strs("errors", msgs).
			Msg("GraphQL response carried partial errors")
	}

	if resp.Data == nil {
		resp.Data = map[string]any{}
	}
	return resp.Data, nil
}

// GetEntries lists entries from the Delivery API, or the Preview API when
// preview is set. query carries the Contentful search parameters
// (content_type, fields.slug, limit, skip, order, include...).
func (c *Client) GetEntries(ctx context.Context, query url.Values, preview bool) (*EntryCollection, error) {
	endpoint := c.restURL(preview, "entries")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var collection EntryCollection
	if err := c.do(ctx, c.restAPI(preview), c.restRequest(ctx, endpoint, preview), &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// GetEntry fetches a single entry by id.
func (c *Client) GetEntry(ctx context.Context, id string, preview bool) (*Entry, error) {
	if id == "" {
		return nil, fmt.Errorf("entry id is required")
	}
	endpoint := c.restURL(preview, "entries/"+url.PathEscape(id))

	var entry Entry
	if err := c.do(ctx, c.restAPI(preview), c.restRequest(ctx, endpoint, preview), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) restURL(preview bool, path string) string {
	base := c.config.DeliveryURL
	if preview {
		base = c.config.PreviewURL
	}
	return fmt.Sprintf("%s/spaces/%s/environments/%s/%s",
		strings.TrimRight(base, "/"), c.config.SpaceID, c.config.Environment, path)
}

func (c *Client) restAPI(preview bool) string {
	if preview {
		return APIPreview
	}
	return APIDelivery
}

func (c *Client) restRequest(ctx context.Context, endpoint string, preview bool) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token(preview))
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}

func (c *Client) token(preview bool) string {
	if preview {
		return c.config.PreviewAccessToken
	}
	return c.config.AccessToken
}

// retryConfig applies the client's overrides on top of the per-class schedule.
func (c *Client) retryConfig(class ErrorClass) RetryConfig {
	rc := RetryConfigForErrorClass(class)
	rc.MaxAttempts = c.config.MaxRetries + 1
	if c.config.InitialBackoff > 0 {
		rc.InitialBackoff = c.config.InitialBackoff
	}
	if c.config.MaxBackoff > 0 {
		rc.MaxBackoff = c.config.MaxBackoff
	}
	return rc
}

// do executes a request with throttling, retry and rate-limit bookkeeping,
// and decodes a successful JSON body into out.
func (c *Client) do(ctx context.Context, api string, build func() (*http.Request, error), out any) error {
	logger := logging.FromContext(ctx, c.logger).With().Str("api", api).Logger()

	startTime := time.Now()
	defer func() {
		contentfulRequestDuration.WithLabelValues(api).Observe(time.Since(startTime).Seconds())
	}()

	return retryWithBackoff(ctx, logger, c.retryConfig, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		if c.rateLimiter != nil {
			if err := c.rateLimiter.WaitIfLimited(ctx); err != nil {
				logger.Warn().Err(err).Msg("Shared rate limit check failed")
			}
		}

		req, err := build()
		if err != nil {
			return &APIError{ErrorClass: ErrorClassClient, Message: "build request", Err: err}
		}

		logger.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("Executing Contentful request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			contentfulErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			contentfulRequestsTotal.WithLabelValues(api, "network_error").Inc()
			logger.Warn().Err(err).Msg("HTTP request failed")
			return err
		}
		defer resp.Body.Close()

		if c.rateLimiter != nil {
			if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
				logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		contentfulRequestsTotal.WithLabelValues(api, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			apiErr := newAPIError(resp)
			contentfulErrorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()
			logger.Warn().
				Int("status_code", resp.StatusCode).
				Str("error_class", string(apiErr.ErrorClass)).
				Str("message", apiErr.Message).
				Msg("Contentful request error")
			return apiErr
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			// a truncated body is worth another attempt
			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassServer,
				Message:    "decode response",
				Err:        err,
			}
		}
		return nil
	})
}

// newAPIError builds an APIError from an error response, pulling the message
// from Contentful's error body and the reset window from 429 headers.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		ErrorClass: classifyStatus(resp.StatusCode),
		Message:    resp.Status,
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message string         `json:"message"`
		Errors  []graphQLError `json:"errors"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case len(body.Errors) > 0:
			apiErr.Message = body.Errors[0].Message
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.Header.Get(ratelimit.HeaderReset)); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return apiErr
}
