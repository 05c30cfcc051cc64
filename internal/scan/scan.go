// Package scan drives the member side: consuming beacon sightings delivered
// by the OS ranging callback and turning them into attendance records.
//
// Sightings arrive at the radio's cadence with no ordering guarantee and
// heavy duplication. The pipeline is idempotent end to end: the pre-filter
// and cool-down only shed load, while the store-side uniqueness constraint is
// the sole source of truth for "already checked in".
package scan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	attendancedomain "ble-attendance/backend/internal/attendance/domain"
	attendanceservice "ble-attendance/backend/internal/attendance/service"
	"ble-attendance/backend/internal/beacon"
	"ble-attendance/backend/internal/guard"
	"ble-attendance/backend/internal/resolver"
	"ble-attendance/backend/internal/retry"
	sessiondomain "ble-attendance/backend/internal/session/domain"
	"ble-attendance/backend/internal/telemetry"
)

// Sighting is one advertisement observed by the OS scanner.
type Sighting struct {
	Namespace uuid.UUID
	Major     uint16
	Minor     uint16
}

// Scanner is the narrow binding to the native ranging API: it delivers
// sightings into ch until ctx is done. Passive receive only.
type Scanner interface {
	Scan(ctx context.Context, ch chan<- Sighting) error
}

// Listener is the explicit per-scan context object: one instance per scan
// session, bound to one subject and one organization (via its resolver) at
// construction. No ambient "current org" state exists to race against.
type Listener struct {
	codec    *beacon.Codec
	res      *resolver.Resolver
	recorder *attendanceservice.Recorder
	cooldown *guard.Cooldown
	metrics  *telemetry.Metrics

	subjectID string
	timeout   time.Duration
}

// NewListener returns a Listener that checks subjectID into sessions resolved
// by res. metrics may be nil.
func NewListener(codec *beacon.Codec, res *resolver.Resolver, recorder *attendanceservice.Recorder,
	cooldown *guard.Cooldown, metrics *telemetry.Metrics, subjectID string, storeTimeout time.Duration) *Listener {
	return &Listener{
		codec:     codec,
		res:       res,
		recorder:  recorder,
		cooldown:  cooldown,
		metrics:   metrics,
		subjectID: subjectID,
		timeout:   storeTimeout,
	}
}

// HandleSighting processes one sighting. Returns (nil, nil) when the sighting
// leads nowhere: not a candidate, no active session behind the minor, or the
// pair is inside its cool-down window. A non-nil error means the store was
// unreachable after retries.
func (l *Listener) HandleSighting(ctx context.Context, s Sighting) (*attendanceservice.Result, error) {
	l.metrics.Sighting(ctx)

	if !l.codec.IsCandidate(s.Namespace, s.Major, l.res.Org().Code) {
		l.metrics.CandidateRejected(ctx)
		return nil, nil
	}

	sess, err := retry.Do(ctx, "resolve", l.timeout, func(ctx context.Context) (*sessiondomain.Session, error) {
		return l.res.Resolve(ctx, s.Major, s.Minor)
	})
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	l.metrics.Resolved(ctx)

	if !l.cooldown.Allow(sess.ID, l.subjectID) {
		l.metrics.DuplicateSuppressed(ctx)
		return nil, nil
	}

	result, err := retry.Do(ctx, "record", l.timeout, func(ctx context.Context) (*attendanceservice.Result, error) {
		return l.recorder.Record(ctx, sess.ID, l.subjectID, attendancedomain.MethodBLE)
	})
	if err != nil {
		// Clear the window so the next sighting retries immediately instead of
		// waiting out a cool-down started by a failed attempt.
		l.cooldown.Forget(sess.ID, l.subjectID)
		return nil, err
	}
	if result.Outcome == attendancedomain.OutcomeRecorded {
		l.metrics.Recorded(ctx, string(attendancedomain.MethodBLE))
	}
	return result, nil
}

// Run consumes sightings from ch until ctx is done or ch closes. Outcomes are
// logged; store faults are logged and the loop keeps going, since the next
// sighting retries naturally.
func (l *Listener) Run(ctx context.Context, ch <-chan Sighting) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			result, err := l.HandleSighting(ctx, s)
			if err != nil {
				log.Error().Err(err).Uint16("major", s.Major).Uint16("minor", s.Minor).
					Msg("sighting failed after retries")
				continue
			}
			if result != nil {
				log.Info().Str("outcome", string(result.Outcome)).
					Str("subject_id", l.subjectID).Msg("check-in attempt finished")
			}
		}
	}
}
