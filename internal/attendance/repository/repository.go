package repository

import (
	"context"

	"ble-attendance/backend/internal/attendance/domain"
)

// Repository defines persistence for attendance records.
type Repository interface {
	// InsertOnce records attendance for (rec.SessionID, rec.SubjectID) at most
	// once, atomically: the session row is locked for the duration of the
	// check-and-insert, so concurrent attempts for the same pair yield exactly
	// one inserted record. Returns the record that ended up in the store and
	// whether this call created it.
	InsertOnce(ctx context.Context, rec *domain.Record) (*domain.Record, bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Record, error)
}
