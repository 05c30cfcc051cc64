package domain

import (
	"testing"
	"time"
)

func TestStateAt(t *testing.T) {
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	s := &Session{StartsAt: start, EndsAt: end, IsActive: true}

	cases := []struct {
		name string
		now  time.Time
		want State
	}{
		{"before window", start.Add(-time.Second), StatePending},
		{"at starts_at (inclusive)", start, StateActive},
		{"inside window", start.Add(30 * time.Second), StateActive},
		{"just before ends_at", end.Add(-time.Nanosecond), StateActive},
		{"at ends_at (exclusive)", end, StateExpired},
		{"after window", end.Add(time.Second), StateExpired},
	}
	for _, tc := range cases {
		if got := s.StateAt(tc.now); got != tc.want {
			t.Errorf("%s: StateAt = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestStateAt_InactiveIsTerminal(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	s := &Session{StartsAt: start, EndsAt: start.Add(time.Hour), IsActive: false}
	if got := s.StateAt(time.Now()); got != StateExpired {
		t.Errorf("inactive session StateAt = %s, want expired", got)
	}
}

func TestUsableAt_TerminatedSession(t *testing.T) {
	// Early termination pulls EndsAt to the termination instant; from then on
	// the session is indistinguishable from a naturally expired one.
	now := time.Now()
	s := &Session{StartsAt: now.Add(-time.Hour), EndsAt: now, IsActive: true}
	if s.UsableAt(now) {
		t.Error("terminated session must not be usable at its own ends_at")
	}
	if !s.UsableAt(now.Add(-time.Second)) {
		t.Error("session must be usable just before ends_at")
	}
}
