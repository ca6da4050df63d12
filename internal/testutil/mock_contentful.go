// Package testutil provides testing utilities for the Contentful client and
// the services built on it.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Test space and environment used by the mock server.
const (
	SpaceID      = "test-space"
	Environment  = "master"
	AccessToken  = "test-delivery-token"
	PreviewToken = "test-preview-token"
)

// MockResponse defines the behavior for a mock Contentful response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// GraphQLRequest is the decoded body of a GraphQL call.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// MockContentful is a configurable mock of the Contentful GraphQL and REST APIs.
type MockContentful struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	requestCount      int
	graphQLCount      int
	restCount         int
	lastRequestHeader http.Header
	lastGraphQL       GraphQLRequest
}

// NewMockContentful creates a new mock Contentful server.
func NewMockContentful() *MockContentful {
	mock := &MockContentful{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastRequestHeader = r.Header.Clone()
		if r.URL.Path == GraphQLPath() {
			mock.graphQLCount++
			body, _ := io.ReadAll(r.Body)
			var req GraphQLRequest
			_ = json.Unmarshal(body, &req)
			mock.lastGraphQL = req
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		} else {
			mock.restCount++
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// GraphQLPath is the GraphQL endpoint path for the test space.
func GraphQLPath() string {
	return fmt.Sprintf("/content/v1/spaces/%s/environments/%s", SpaceID, Environment)
}

// EntriesPath is the REST entries path for the test space.
func EntriesPath() string {
	return fmt.Sprintf("/spaces/%s/environments/%s/entries", SpaceID, Environment)
}

// EntryPath is the REST path of a single entry.
func EntryPath(id string) string {
	return EntriesPath() + "/" + id
}

// URL returns the mock server URL. It serves as GraphQL, Delivery and
// Preview base URL at once.
func (m *MockContentful) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockContentful) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockContentful) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.graphQLCount = 0
	m.restCount = 0
	m.lastRequestHeader = nil
	m.lastGraphQL = GraphQLRequest{}
}

// SetHandler sets a custom handler for a specific path.
func (m *MockContentful) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockContentful) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, responseHandler(resp))
}

// SetGraphQLResponse configures the GraphQL endpoint.
func (m *MockContentful) SetGraphQLResponse(resp MockResponse) {
	m.SetResponse(GraphQLPath(), resp)
}

// SetEntriesResponse configures the REST entries endpoint.
func (m *MockContentful) SetEntriesResponse(resp MockResponse) {
	m.SetResponse(EntriesPath(), resp)
}

// SetSequence serves responses for path in order; the last one repeats.
func (m *MockContentful) SetSequence(path string, responses ...MockResponse) {
	var (
		mu   sync.Mutex
		next int
	)
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[next]
		if next < len(responses)-1 {
			next++
		}
		mu.Unlock()
		responseHandler(resp)(w, r)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockContentful) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetGraphQLCount returns the number of GraphQL requests.
func (m *MockContentful) GetGraphQLCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.graphQLCount
}

// GetRESTCount returns the number of REST requests.
func (m *MockContentful) GetRESTCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.restCount
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockContentful) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// LastGraphQL returns the most recent GraphQL request body.
func (m *MockContentful) LastGraphQL() GraphQLRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastGraphQL
}

// defaultHandler answers like an empty space.
func (m *MockContentful) defaultHandler(w http.ResponseWriter, r *http.Request) {
	setRateLimitHeaders(w.Header(), 54, 0)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == GraphQLPath():
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":{"pageCollection":{"items":[]}}}`))
	case r.URL.Path == EntriesPath():
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"sys":{"type":"Array"},"total":0,"skip":0,"limit":100,"items":[]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"sys":{"type":"Error","id":"NotFound"},"message":"The resource could not be found."}`))
	}
}

func responseHandler(resp MockResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}
}

func setRateLimitHeaders(h http.Header, remaining, reset int) {
	h.Set("X-Contentful-RateLimit-Second-Limit", "55")
	h.Set("X-Contentful-RateLimit-Second-Remaining", strconv.Itoa(remaining))
	if reset > 0 {
		h.Set("X-Contentful-RateLimit-Reset", strconv.Itoa(reset))
	}
}

// NewHealthyResponse creates a standard 200 OK response with rate limit headers.
func NewHealthyResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"X-Contentful-RateLimit-Second-Limit":     "55",
			"X-Contentful-RateLimit-Second-Remaining": "54",
			"Content-Type":                            "application/json",
		},
	}
}

// NewGraphQLDataResponse wraps data in a GraphQL {"data": ...} envelope.
func NewGraphQLDataResponse(data string) MockResponse {
	return NewHealthyResponse(`{"data":` + data + `}`)
}

// NewGraphQLErrorResponse creates a GraphQL response with errors and no data.
func NewGraphQLErrorResponse(message string) MockResponse {
	body, _ := json.Marshal(map[string]any{
		"data":   nil,
		"errors": []map[string]string{{"message": message}},
	})
	return NewHealthyResponse(string(body))
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(resetSeconds int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"sys":{"type":"Error","id":"RateLimitExceeded"},"message":"You have exceeded the rate limit of the Organization this Space belongs to."}`,
		Headers: map[string]string{
			"X-Contentful-RateLimit-Second-Limit":     "55",
			"X-Contentful-RateLimit-Second-Remaining": "0",
			"X-Contentful-RateLimit-Reset":            strconv.Itoa(resetSeconds),
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"sys":{"type":"Error","id":"ServerError"},"message":"Internal server error"}`,
	}
}

// NewUnauthorizedResponse creates a 401 response for a bad access token.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"sys":{"type":"Error","id":"AccessTokenInvalid"},"message":"The access token you sent could not be found or is invalid."}`,
	}
}
