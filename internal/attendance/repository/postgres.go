package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"ble-attendance/backend/internal/attendance/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an attendance repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InsertOnce performs the duplicate check and the durable write in a single
// transaction scoped to the session's row.
//
// The session row is locked FOR UPDATE before the existence check, so two
// concurrent check-ins for the same pair serialize on the lock and the second
// one sees the first one's record. Check-ins for different sessions lock
// different rows and never block each other. The unique index on
// (session_id, subject_id) backstops the lock: even if a write slips past the
// check, the violation is mapped back to "already recorded", not an error.
func (r *PostgresRepository) InsertOnce(ctx context.Context, rec *domain.Record) (*domain.Record, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the session row for the duration of check-and-insert.
	var sessionID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM attendance_sessions WHERE id = $1 FOR UPDATE`, rec.SessionID).Scan(&sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("session %s vanished during record", rec.SessionID)
		}
		return nil, false, err
	}

	existing, err := scanRecordRow(tx.QueryRowContext(ctx,
		`SELECT id, session_id, subject_id, method, recorded_by, recorded_at
		 FROM attendance_records WHERE session_id = $1 AND subject_id = $2`,
		rec.SessionID, rec.SubjectID))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		// Commit to release the lock promptly; nothing was written.
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attendance_records (id, session_id, subject_id, method, recorded_by, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.SessionID, rec.SubjectID, string(rec.Method), rec.RecordedBy, rec.RecordedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// Raced past the check anyway; surface the winner's record.
			_ = tx.Rollback()
			winner, err := r.getByPair(ctx, rec.SessionID, rec.SubjectID)
			if err != nil {
				return nil, false, err
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// ListBySession returns the session's attendance records, oldest first.
func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, subject_id, method, recorded_by, recorded_at
		 FROM attendance_records WHERE session_id = $1 ORDER BY recorded_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var (
			rec    domain.Record
			method string
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.SubjectID, &method,
			&rec.RecordedBy, &rec.RecordedAt); err != nil {
			return nil, err
		}
		rec.Method = domain.Method(method)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) getByPair(ctx context.Context, sessionID, subjectID string) (*domain.Record, error) {
	return scanRecordRow(r.db.QueryRowContext(ctx,
		`SELECT id, session_id, subject_id, method, recorded_by, recorded_at
		 FROM attendance_records WHERE session_id = $1 AND subject_id = $2`,
		sessionID, subjectID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecordRow(row rowScanner) (*domain.Record, error) {
	var (
		rec    domain.Record
		method string
	)
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.SubjectID, &method, &rec.RecordedBy, &rec.RecordedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.Method = domain.Method(method)
	return &rec, nil
}
