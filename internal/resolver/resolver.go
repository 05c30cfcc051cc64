// Package resolver maps a sighted beacon payload back to the active session
// that produced it.
package resolver

import (
	"context"
	"time"

	"ble-attendance/backend/internal/beacon"
	orgdomain "ble-attendance/backend/internal/org/domain"
	"ble-attendance/backend/internal/session/domain"
)

// SessionRepo is the minimal session repository needed by the resolver.
type SessionRepo interface {
	ListActiveByOrg(ctx context.Context, orgID string, now time.Time) ([]*domain.Session, error)
}

// Resolver resolves beacon sightings for exactly one organization.
//
// The organization is a constructor parameter, not a call-time field: a
// resolver without an organization cannot exist, so the protocol layer can
// never run ahead of organization identity and silently drop beacons.
type Resolver struct {
	org      orgdomain.Org
	sessions SessionRepo
	nowF     func() time.Time
}

// New returns a Resolver scoped to org.
func New(org orgdomain.Org, sessions SessionRepo) *Resolver {
	return &Resolver{
		org:      org,
		sessions: sessions,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Org returns the organization this resolver is scoped to.
func (r *Resolver) Org() orgdomain.Org {
	return r.org
}

// Resolve finds the active session whose token hashes to minor.
//
// A major that is not this org's code is rejected without any I/O. Otherwise
// the org's active sessions (a bounded small set) are fetched and re-hashed;
// the first whose Hash16 equals minor and whose window still contains now
// wins. 16-bit minors can collide; first-match-in-query-order is the
// documented behavior, not an accident.
//
// Returns (nil, nil) when nothing matches: the beacon may belong to a session
// that is not yet visible or has already expired. An error means a store
// fault; the caller retries with backoff rather than treating it as "no
// session".
func (r *Resolver) Resolve(ctx context.Context, major, minor uint16) (*domain.Session, error) {
	if major != r.org.Code {
		return nil, nil
	}
	now := r.nowF()
	candidates, err := r.sessions.ListActiveByOrg(ctx, r.org.ID, now)
	if err != nil {
		return nil, err
	}
	for _, s := range candidates {
		if beacon.Hash16(s.Token) == minor && s.UsableAt(now) {
			return s, nil
		}
	}
	return nil, nil
}
