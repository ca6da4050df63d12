package cache

import (
	"errors"
	"math"
	"testing"
)

func TestRequestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  RequestKey
		want string
	}{
		{
			name: "no params",
			key:  RequestKey{Method: "getEntries"},
			want: `{"method":"getEntries","params":null,"preview":false}`,
		},
		{
			name: "params sorted",
			key: RequestKey{
				Method: "getEntries",
				Params: map[string]any{
					"limit":        3,
					"content_type": "blogPost",
				},
			},
			want: `{"method":"getEntries","params":{"content_type":"blogPost","limit":3},"preview":false}`,
		},
		{
			name: "preview flag",
			key: RequestKey{
				Method:  "getEntry",
				Params:  map[string]any{"id": "abc"},
				Preview: true,
			},
			want: `{"method":"getEntry","params":{"id":"abc"},"preview":true}`,
		},
		{
			name: "nested params sorted",
			key: RequestKey{
				Method: "graphql",
				Params: map[string]any{
					"variables": map[string]any{"slug": "home", "preview": false},
				},
			},
			want: `{"method":"graphql","params":{"variables":{"preview":false,"slug":"home"}},"preview":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.key.String()
			if err != nil {
				t.Fatalf("String() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestRequestKey_Determinism ensures same input always produces same key
func TestRequestKey_Determinism(t *testing.T) {
	key := RequestKey{
		Method: "getEntries",
		Params: map[string]any{
			"content_type":    "blogPost",
			"order":           "-sys.createdAt",
			"limit":           10,
			"fields.category": "news",
			"include":         2,
		},
	}

	first, err := key.String()
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		got, err := key.String()
		if err != nil {
			t.Fatalf("String() error = %v", err)
		}
		if got != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, got, first)
		}
	}
}

func TestRequestKey_EncodingError(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
	}{
		{name: "channel value", params: map[string]any{"ch": make(chan int)}},
		{name: "function value", params: map[string]any{"fn": func() {}}},
		{name: "NaN value", params: map[string]any{"n": math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RequestKey{Method: "getEntries", Params: tt.params}.String()
			if !errors.Is(err, ErrKeyEncoding) {
				t.Errorf("String() error = %v, want ErrKeyEncoding", err)
			}
		})
	}
}

func TestPageKey(t *testing.T) {
	if got := PageKey("about", false); got != "page-about-false" {
		t.Errorf("PageKey() = %v, want page-about-false", got)
	}
	if got := PageKey("about", true); got != "page-about-true" {
		t.Errorf("PageKey() = %v, want page-about-true", got)
	}
}
