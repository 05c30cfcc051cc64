// Package guard provides the client-side half of the duplicate/replay guard:
// a short cool-down per (session, subject) that absorbs beacon re-sightings at
// the radio's advertise cadence. The store-side uniqueness constraint remains
// the source of truth; this layer only suppresses pointless round-trips.
package guard

import (
	"sync"
	"time"
)

// sweepThreshold triggers a full sweep of expired entries when the map grows
// past it, so long-running scanners do not accumulate dead pairs.
const sweepThreshold = 1024

type pairKey struct {
	sessionRef string
	subjectID  string
}

// Cooldown tracks recent submission attempts per (session, subject).
type Cooldown struct {
	mu     sync.Mutex
	m      map[pairKey]time.Time // last attempt per pair
	window time.Duration
	nowF   func() time.Time
}

// NewCooldown returns a Cooldown with the given suppression window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		m:      make(map[pairKey]time.Time),
		window: window,
		nowF:   time.Now,
	}
}

// Allow reports whether a submission attempt for the pair may proceed, and if
// so marks the attempt. Successful and failed submissions both start the
// window; a storm of re-sightings collapses to one store call per window.
func (c *Cooldown) Allow(sessionRef, subjectID string) bool {
	now := c.nowF()
	k := pairKey{sessionRef, subjectID}

	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.m[k]; ok && now.Sub(last) < c.window {
		return false
	}
	if len(c.m) >= sweepThreshold {
		c.sweepLocked(now)
	}
	c.m[k] = now
	return true
}

// Forget clears the pair's window, e.g. after a transient store failure when
// the caller wants the next sighting to retry immediately.
func (c *Cooldown) Forget(sessionRef, subjectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, pairKey{sessionRef, subjectID})
}

func (c *Cooldown) sweepLocked(now time.Time) {
	for k, last := range c.m {
		if now.Sub(last) >= c.window {
			delete(c.m, k)
		}
	}
}
