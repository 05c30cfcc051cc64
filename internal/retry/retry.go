// Package retry wraps session store calls with bounded exponential backoff.
//
// A resolve or record call that times out or hits a connection fault is a
// transient failure, not a definitive negative result; callers retry a small
// number of times before surfacing the fault.
package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// maxAttempts bounds retries of a transient store failure.
const maxAttempts = 3

// IsTransient reports whether a store error is worth retrying: timeouts,
// connection faults, and retryable transaction conflicts. Anything else is
// treated as permanent and surfaced immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure,
			pgerrcode.DeadlockDetected,
			pgerrcode.QueryCanceled,
			pgerrcode.ConnectionException,
			pgerrcode.ConnectionDoesNotExist,
			pgerrcode.ConnectionFailure,
			pgerrcode.CannotConnectNow,
			pgerrcode.SQLClientUnableToEstablishSQLConnection,
			pgerrcode.AdminShutdown,
			pgerrcode.CrashShutdown,
			pgerrcode.TooManyConnections:
			return true
		}
	}
	return false
}

// Do runs op with a per-attempt timeout and bounded exponential backoff.
// Transient errors are retried up to maxAttempts; other errors stop
// immediately. ctx cancellation stops retrying between attempts.
func Do[T any](ctx context.Context, name string, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	wrapped := func() (T, error) {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		v, err := op(callCtx)
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Str("op", name).Int("attempt", attempt).
				Dur("next_retry", next).Msg("transient store failure, will retry")
		}),
	)
}
