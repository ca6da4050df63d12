package subscribe

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Add(ctx context.Context, email string, at time.Time) (bool, error) {
	return false, errors.New("provider unavailable")
}

func (failingStore) Has(ctx context.Context, email string) (bool, error) { return false, nil }

func (failingStore) Close() error { return nil }

func TestValidate(t *testing.T) {
	svc := NewService(NewLogStore(zerolog.Nop()), zerolog.Nop())

	tests := []struct {
		email string
		want  error
	}{
		{"", ErrEmailRequired},
		{"user@example.com", nil},
		{"first.last+tag@sub.example.co.uk", nil},
		{"user@example", ErrInvalidEmail},
		{"userexample.com", ErrInvalidEmail},
		{"user @example.com", ErrInvalidEmail},
		{" ", ErrInvalidEmail},
		{"@example.com", ErrInvalidEmail},
		{"user@@example.com", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := svc.Validate(Request{Email: tt.email})
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSubscribe(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		store       Store
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{"missing", "", NewLogStore(zerolog.Nop()), http.StatusBadRequest, false, MsgEmailRequired},
		{"malformed", "not-an-email", NewLogStore(zerolog.Nop()), http.StatusBadRequest, false, MsgInvalidEmail},
		{"valid", "reader@example.com", NewLogStore(zerolog.Nop()), http.StatusOK, true, MsgSubscribed},
		{"store failure", "reader@example.com", failingStore{}, http.StatusInternalServerError, false, MsgStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.store, zerolog.Nop())
			res := svc.Subscribe(context.Background(), tt.email)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantMessage, res.Message)
		})
	}
}

func TestSubscribe_NormalizesAndDeduplicates(t *testing.T) {
	store := NewLogStore(zerolog.Nop())
	svc := NewService(store, zerolog.Nop())

	first := svc.Subscribe(context.Background(), "Reader@Example.com")
	second := svc.Subscribe(context.Background(), "reader@example.com")
	assert.True(t, first.Success)
	assert.True(t, second.Success, "repeat subscription still succeeds")

	ok, err := store.Has(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, store.emails, 1)
}

func TestSubscribeJSON(t *testing.T) {
	svc := NewService(NewLogStore(zerolog.Nop()), zerolog.Nop())

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"valid", `{"email":"a@b.co"}`, http.StatusOK, MsgSubscribed},
		{"no email field", `{}`, http.StatusBadRequest, MsgEmailRequired},
		{"bad json", `{"email":`, http.StatusInternalServerError, MsgInternalServer},
		{"null body", `null`, http.StatusInternalServerError, MsgInternalServer},
		{"number email", `{"email":123}`, http.StatusBadRequest, MsgInvalidEmail},
		{"object email", `{"email":{"addr":"a@b.co"}}`, http.StatusBadRequest, MsgInvalidEmail},
		{"array email", `{"email":["a@b.co"]}`, http.StatusBadRequest, MsgInvalidEmail},
		{"true email", `{"email":true}`, http.StatusBadRequest, MsgInvalidEmail},
		{"null email", `{"email":null}`, http.StatusBadRequest, MsgEmailRequired},
		{"false email", `{"email":false}`, http.StatusBadRequest, MsgEmailRequired},
		{"array body", `[]`, http.StatusBadRequest, MsgEmailRequired},
		{"string body", `"a@b.co"`, http.StatusBadRequest, MsgEmailRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.SubscribeJSON(context.Background(), strings.NewReader(tt.body))
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantMsg, res.Message)
		})
	}
}
