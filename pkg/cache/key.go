package cache

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKeyEncoding indicates a request descriptor could not be serialized.
var ErrKeyEncoding = errors.New("cache key encoding failed")

// RequestKey describes an upstream request for caching purposes.
type RequestKey struct {
	// Method is the client operation (e.g. "getEntries", "graphql")
	Method string

	// Params are the request parameters; nested maps are allowed
	Params map[string]any

	// Preview selects draft content
	Preview bool
}

// String generates a deterministic cache key string.
// Format: {"method":"getEntries","params":{...},"preview":false}
//
// Map keys are emitted in sorted order at every depth, so equal descriptors
// always produce equal keys. Values JSON cannot encode (channels, functions,
// NaN) yield ErrKeyEncoding.
func (k RequestKey) String() (string, error) {
	data, err := json.Marshal(struct {
		Method  string         `json:"method"`
		Params  map[string]any `json:"params"`
		Preview bool           `json:"preview"`
	}{
		Method:  k.Method,
		Params:  k.Params,
		Preview: k.Preview,
	})
	if err != nil {
		KeyErrors.Inc()
		return "", fmt.Errorf("%w: %v", ErrKeyEncoding, err)
	}
	return string(data), nil
}

// PageKey returns the cache key for a page lookup.
// Example: page-about-false
func PageKey(slug string, preview bool) string {
	return fmt.Sprintf("page-%s-%t", slug, preview)
}
