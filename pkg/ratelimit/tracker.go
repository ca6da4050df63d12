package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	contentfulRateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contentful_rate_limit_remaining",
		Help: "Requests remaining in the current Contentful rate limit window",
	})

	contentfulRateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contentful_rate_limit_waits_total",
		Help: "Total number of requests delayed until the Contentful rate limit reset",
	})
)

const (
	// stateTTL bounds how long a recorded state survives without a reset header.
	stateTTL = 60 * time.Second

	// DefaultMaxWait caps a single WaitIfLimited call.
	DefaultMaxWait = 5 * time.Second
)

// Tracker records Contentful rate-limit headers and delays requests while the
// budget is exhausted.
type Tracker struct {
	redis   *redis.Client
	logger  zerolog.Logger
	maxWait time.Duration
}

// NewTracker creates a new rate limit tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Tracker{
		redis:   redisClient,
		logger:  logger,
		maxWait: DefaultMaxWait,
	}
}

// SetMaxWait overrides the upper bound of a single wait.
func (t *Tracker) SetMaxWait(d time.Duration) {
	if d > 0 {
		t.maxWait = d
	}
}

// GetState retrieves the current rate limit state from Redis.
// Returns a default healthy state if nothing has been recorded.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	remaining, err := t.redis.Get(ctx, RedisKeySecondRemaining).Int()
	if errors.Is(err, redis.Nil) {
		return &State{
			SecondRemaining: DefaultSecondLimit,
			LastUpdate:      time.Now(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get second remaining: %w", err)
	}

	state := &State{SecondRemaining: remaining}

	resetMillis, err := t.redis.Get(ctx, RedisKeyResetTimestamp).Int64()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, fmt.Errorf("get reset timestamp: %w", err)
	case resetMillis > 0:
		state.ResetAt = time.UnixMilli(resetMillis)
	}

	lastUpdate, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, fmt.Errorf("get last update: %w", err)
	default:
		ts, perr := time.Parse(time.RFC3339Nano, lastUpdate)
		if perr != nil {
			return nil, fmt.Errorf("parse last update: %w", perr)
		}
		state.LastUpdate = ts
	}

	return state, nil
}

// UpdateFromHeaders parses Contentful rate limit headers and stores the state.
// Responses without rate limit headers leave the state untouched.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get(HeaderSecondRemaining)
	resetStr := headers.Get(HeaderReset)
	if remainStr == "" && resetStr == "" {
		return nil
	}

	now := time.Now()
	state := &State{LastUpdate: now}

	if remainStr != "" {
		remain, err := strconv.Atoi(remainStr)
		if err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderSecondRemaining, err)
		}
		state.SecondRemaining = remain
	}

	ttl := stateTTL
	if resetStr != "" {
		resetSeconds, err := strconv.Atoi(resetStr)
		if err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderReset, err)
		}
		state.ResetAt = now.Add(time.Duration(resetSeconds) * time.Second)
		ttl = time.Duration(resetSeconds)*time.Second + time.Second
	}

	var resetMillis int64
	if !state.ResetAt.IsZero() {
		resetMillis = state.ResetAt.UnixMilli()
	}

	pipe := t.redis.TxPipeline()
	pipe.Set(ctx, RedisKeySecondRemaining, state.SecondRemaining, ttl)
	pipe.Set(ctx, RedisKeyResetTimestamp, resetMillis, ttl)
	pipe.Set(ctx, RedisKeyLastUpdate, now.Format(time.RFC3339Nano), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	contentfulRateLimitRemaining.Set(float64(state.SecondRemaining))

	if state.IsLimited() {
		t.logger.Warn().
			Int("second_remaining", state.SecondRemaining).
			Time("reset_at", state.ResetAt).
			Msg("Contentful rate limit exhausted")
	} else {
		t.logger.Debug().
			Int("second_remaining", state.SecondRemaining).
			Msg("Contentful rate limit state updated")
	}

	return nil
}

// WaitIfLimited blocks until the rate limit window resets when the budget is
// exhausted. The wait is capped by the tracker's max wait and by ctx.
func (t *Tracker) WaitIfLimited(ctx context.Context) error {
	state, err := t.GetState(ctx)
	if err != nil {
		return fmt.Errorf("get rate limit state: %w", err)
	}

	if !state.IsLimited() {
		return nil
	}

	wait := state.TimeUntilReset()
	if wait > t.maxWait {
		wait = t.maxWait
	}

	t.logger.Warn().
		Int("second_remaining", state.SecondRemaining).
		Dur("wait_duration", wait).
		Msg("Contentful rate limit exhausted - delaying request")
	contentfulRateLimitWaitsTotal.Inc()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
