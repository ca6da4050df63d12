package ratelimit

import (
	"testing"
	"time"
)

func TestState_IsLimited(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{
			name:  "budget left",
			state: State{SecondRemaining: 10, ResetAt: time.Now().Add(time.Second)},
			want:  false,
		},
		{
			name:  "exhausted with future reset",
			state: State{SecondRemaining: 0, ResetAt: time.Now().Add(2 * time.Second)},
			want:  true,
		},
		{
			name:  "exhausted but reset passed",
			state: State{SecondRemaining: 0, ResetAt: time.Now().Add(-time.Second)},
			want:  false,
		},
		{
			name:  "exhausted with unknown reset",
			state: State{SecondRemaining: 0},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsLimited(); got != tt.want {
				t.Errorf("IsLimited() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_IsStale(t *testing.T) {
	tests := []struct {
		name       string
		lastUpdate time.Time
		maxAge     time.Duration
		want       bool
	}{
		{name: "fresh", lastUpdate: time.Now(), maxAge: time.Minute, want: false},
		{name: "stale", lastUpdate: time.Now().Add(-2 * time.Minute), maxAge: time.Minute, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{LastUpdate: tt.lastUpdate}
			if got := s.IsStale(tt.maxAge); got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	tests := []struct {
		name    string
		resetAt time.Time
		wantMin time.Duration
		wantMax time.Duration
	}{
		{name: "unknown", resetAt: time.Time{}, wantMin: 0, wantMax: 0},
		{name: "passed", resetAt: time.Now().Add(-time.Second), wantMin: 0, wantMax: 0},
		{name: "future", resetAt: time.Now().Add(3 * time.Second), wantMin: 2 * time.Second, wantMax: 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{ResetAt: tt.resetAt}
			got := s.TimeUntilReset()
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("TimeUntilReset() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
