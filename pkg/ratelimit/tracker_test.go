package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// setupTestRedis starts an in-memory Redis for the tracker.
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

// rateLimitHeaders builds response headers the way net/http does, with
// canonicalized keys. Pairs are name, value.
func rateLimitHeaders(pairs ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

func TestNewTracker_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewTracker should panic with nil redis client")
		}
	}()
	NewTracker(nil, zerolog.Nop())
}

func TestTracker_GetState_Default(t *testing.T) {
	_, client := setupTestRedis(t)
	tracker := NewTracker(client, zerolog.Nop())

	state, err := tracker.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.SecondRemaining != DefaultSecondLimit {
		t.Errorf("SecondRemaining = %d, want %d", state.SecondRemaining, DefaultSecondLimit)
	}
	if state.IsLimited() {
		t.Error("default state should not be limited")
	}
}

func TestTracker_UpdateFromHeaders(t *testing.T) {
	tests := []struct {
		name          string
		headers       http.Header
		wantErr       bool
		wantRemaining int
		wantLimited   bool
	}{
		{
			name:          "no rate limit headers",
			headers:       http.Header{},
			wantRemaining: DefaultSecondLimit,
		},
		{
			name:          "remaining only",
			headers:       rateLimitHeaders(HeaderSecondRemaining, "42"),
			wantRemaining: 42,
		},
		{
			name:          "429 with reset",
			headers:       rateLimitHeaders(HeaderSecondRemaining, "0", HeaderReset, "2"),
			wantRemaining: 0,
			wantLimited:   true,
		},
		{
			name:          "lower-case header names",
			headers:       rateLimitHeaders("x-contentful-ratelimit-second-remaining", "9"),
			wantRemaining: 9,
		},
		{
			name:    "invalid remaining",
			headers: rateLimitHeaders(HeaderSecondRemaining, "lots"),
			wantErr: true,
		},
		{
			name:    "invalid reset",
			headers: rateLimitHeaders(HeaderReset, "soon"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := setupTestRedis(t)
			tracker := NewTracker(client, zerolog.Nop())
			ctx := context.Background()

			err := tracker.UpdateFromHeaders(ctx, tt.headers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateFromHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			state, err := tracker.GetState(ctx)
			if err != nil {
				t.Fatalf("GetState failed: %v", err)
			}
			if state.SecondRemaining != tt.wantRemaining {
				t.Errorf("SecondRemaining = %d, want %d", state.SecondRemaining, tt.wantRemaining)
			}
			if state.IsLimited() != tt.wantLimited {
				t.Errorf("IsLimited() = %v, want %v", state.IsLimited(), tt.wantLimited)
			}
		})
	}
}

func TestTracker_StateExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	tracker := NewTracker(client, zerolog.Nop())
	ctx := context.Background()

	err := tracker.UpdateFromHeaders(ctx, rateLimitHeaders(HeaderSecondRemaining, "0", HeaderReset, "1"))
	if err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	mr.FastForward(3 * time.Second)

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.SecondRemaining != DefaultSecondLimit {
		t.Errorf("expected state to expire back to default, got %d", state.SecondRemaining)
	}
}

func TestTracker_WaitIfLimited(t *testing.T) {
	_, client := setupTestRedis(t)
	tracker := NewTracker(client, zerolog.Nop())
	tracker.SetMaxWait(50 * time.Millisecond)
	ctx := context.Background()

	// healthy: returns immediately
	start := time.Now()
	if err := tracker.WaitIfLimited(ctx); err != nil {
		t.Fatalf("WaitIfLimited failed: %v", err)
	}
	if time.Since(start) > 20*time.Millisecond {
		t.Error("healthy state should not wait")
	}

	// limited: waits up to max wait
	if err := tracker.UpdateFromHeaders(ctx, rateLimitHeaders(HeaderSecondRemaining, "0", HeaderReset, "10")); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	start = time.Now()
	if err := tracker.WaitIfLimited(ctx); err != nil {
		t.Fatalf("WaitIfLimited failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected to wait about 50ms, waited %v", elapsed)
	}
}

func TestTracker_WaitIfLimited_ContextCancelled(t *testing.T) {
	_, client := setupTestRedis(t)
	tracker := NewTracker(client, zerolog.Nop())
	tracker.SetMaxWait(5 * time.Second)

	if err := tracker.UpdateFromHeaders(context.Background(), rateLimitHeaders(HeaderSecondRemaining, "0", HeaderReset, "10")); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tracker.WaitIfLimited(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
