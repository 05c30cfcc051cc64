package domain

import "time"

// Session represents one attendance session broadcast by an officer.
//
// A session is immutable after creation except for early termination, which
// pulls EndsAt to now. Sessions are never deleted synchronously; they stay in
// the store for history and stop being reachable for resolution once their
// window closes.
type Session struct {
	ID        string // session ref, server-assigned
	OrgID     string
	Token     string // never broadcast verbatim; only its 16-bit hash is
	Title     string
	StartsAt  time.Time
	EndsAt    time.Time
	IsActive  bool
	CreatedBy string // officer who opened the session, for audit
	CreatedAt time.Time
}

// State is the lifecycle state of a session at a point in time.
type State string

const (
	StatePending State = "pending"
	StateActive  State = "active"
	StateExpired State = "expired"
)

// StateAt returns the session's lifecycle state at now. Early termination and
// natural expiry both land in StateExpired; the resolver treats them
// identically. There is no transition back into StateActive.
func (s *Session) StateAt(now time.Time) State {
	switch {
	case !s.IsActive || !now.Before(s.EndsAt):
		return StateExpired
	case now.Before(s.StartsAt):
		return StatePending
	default:
		return StateActive
	}
}

// UsableAt reports whether the session can be resolved at now: the window is
// inclusive at StartsAt and exclusive at EndsAt.
func (s *Session) UsableAt(now time.Time) bool {
	return s.StateAt(now) == StateActive
}
