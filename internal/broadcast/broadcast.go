// Package broadcast drives the officer side: turning an open session into a
// live beacon advertisement through the OS radio binding.
package broadcast

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"ble-attendance/backend/internal/beacon"
	orgdomain "ble-attendance/backend/internal/org/domain"
	sessiondomain "ble-attendance/backend/internal/session/domain"
)

var (
	// ErrWrongOrg is returned when the session does not belong to the
	// broadcaster's organization.
	ErrWrongOrg = errors.New("session belongs to a different organization")
	// ErrAlreadyBroadcasting is returned on Start while a broadcast is live.
	ErrAlreadyBroadcasting = errors.New("broadcast already running")
)

// Advertiser is the narrow binding to the native advertising API. It only
// needs connectionless beacon broadcast; no GATT, no pairing.
type Advertiser interface {
	StartAdvertising(ctx context.Context, p beacon.Payload) error
	StopAdvertising() error
}

// Broadcaster is the explicit per-broadcast context object: one instance per
// active broadcast, scoped to one organization, no ambient state.
type Broadcaster struct {
	codec *beacon.Codec
	adv   Advertiser
	org   orgdomain.Org

	mu     sync.Mutex
	active bool
}

// New returns a Broadcaster for the given organization.
func New(codec *beacon.Codec, adv Advertiser, org orgdomain.Org) *Broadcaster {
	return &Broadcaster{codec: codec, adv: adv, org: org}
}

// Start computes the session's payload and begins advertising it. The payload
// is derived fresh on every Start and never cached across a stop/start
// boundary.
func (b *Broadcaster) Start(ctx context.Context, s *sessiondomain.Session) (beacon.Payload, error) {
	if s.OrgID != b.org.ID {
		return beacon.Payload{}, ErrWrongOrg
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active {
		return beacon.Payload{}, ErrAlreadyBroadcasting
	}

	p := b.codec.Encode(b.org.Code, s.Token)
	if err := b.adv.StartAdvertising(ctx, p); err != nil {
		return beacon.Payload{}, err
	}
	b.active = true
	log.Info().Str("session_id", s.ID).Uint16("major", p.Major).Uint16("minor", p.Minor).
		Msg("broadcast started")
	return p, nil
}

// Stop ends the broadcast immediately. There is no in-flight state to
// reconcile; stopping an idle broadcaster is a no-op.
func (b *Broadcaster) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return nil
	}
	b.active = false
	if err := b.adv.StopAdvertising(); err != nil {
		return err
	}
	log.Info().Msg("broadcast stopped")
	return nil
}

// Active reports whether a broadcast is currently live.
func (b *Broadcaster) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}
