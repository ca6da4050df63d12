// Package ratelimit tracks Contentful API rate-limit state and delays requests
// while the shared per-second budget is exhausted. State lives in Redis so every
// site instance behind the same space token sees the same budget.
//
// Contentful reports the budget with X-Contentful-RateLimit-Second-Limit,
// X-Contentful-RateLimit-Second-Remaining and, on 429 responses,
// X-Contentful-RateLimit-Reset (seconds until the window resets).
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeySecondRemaining = "contentful:rate_limit:second_remaining"
	RedisKeyResetTimestamp  = "contentful:rate_limit:reset_timestamp"
	RedisKeyLastUpdate      = "contentful:rate_limit:last_update"
)

// HTTP headers sent by the Contentful Delivery and Preview APIs.
const (
	HeaderSecondLimit     = "X-Contentful-RateLimit-Second-Limit"
	HeaderSecondRemaining = "X-Contentful-RateLimit-Second-Remaining"
	HeaderReset           = "X-Contentful-RateLimit-Reset"
)

// DefaultSecondLimit is the documented Content Delivery API per-second limit.
const DefaultSecondLimit = 55

// State represents the last observed Contentful rate limit.
type State struct {
	// SecondRemaining is the number of requests left in the current second.
	SecondRemaining int `json:"second_remaining"`

	// ResetAt is when the window resets. Zero when Contentful did not send a reset.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the state was recorded.
	LastUpdate time.Time `json:"last_update"`
}

// IsLimited returns true if the budget is spent and the window has not reset yet.
func (s *State) IsLimited() bool {
	return s.SecondRemaining <= 0 && s.TimeUntilReset() > 0
}

// IsStale returns true if the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed or is unknown.
func (s *State) TimeUntilReset() time.Duration {
	if s.ResetAt.IsZero() {
		return 0
	}
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}
