package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"ble-attendance/backend/internal/session/domain"
)

// ErrTokenConflict is returned when the generated token collides with one
// already in the store. The service layer reacts by regenerating, never by
// weakening the token.
var ErrTokenConflict = errors.New("session token already issued")

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, org_id, token, title, starts_at, ends_at, is_active, created_by, created_at
		 FROM attendance_sessions WHERE id = $1`, id)
	return scanSession(row)
}

// GetByToken returns the session holding token, or nil if not found.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, org_id, token, title, starts_at, ends_at, is_active, created_by, created_at
		 FROM attendance_sessions WHERE token = $1`, token)
	return scanSession(row)
}

// ListActiveByOrg returns the org's sessions whose window contains now, oldest first.
func (r *PostgresRepository) ListActiveByOrg(ctx context.Context, orgID string, now time.Time) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, org_id, token, title, starts_at, ends_at, is_active, created_by, created_at
		 FROM attendance_sessions
		 WHERE org_id = $1 AND is_active AND starts_at <= $2 AND ends_at > $2
		 ORDER BY created_at`, orgID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.OrgID, &s.Token, &s.Title, &s.StartsAt, &s.EndsAt,
			&s.IsActive, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Create persists the session. The session must have ID and Token set.
// Returns ErrTokenConflict when the token is already in the store.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attendance_sessions
		   (id, org_id, token, title, starts_at, ends_at, is_active, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.OrgID, s.Token, s.Title, s.StartsAt, s.EndsAt, s.IsActive, s.CreatedBy, s.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrTokenConflict
	}
	return err
}

// Terminate pulls ends_at to now for a still-open session. No-op when the
// window already closed, so repeated termination is safe.
func (r *PostgresRepository) Terminate(ctx context.Context, id string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE attendance_sessions SET ends_at = $2 WHERE id = $1 AND ends_at > $2`, id, now)
	return err
}

func scanSession(row *sql.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.OrgID, &s.Token, &s.Title, &s.StartsAt, &s.EndsAt,
		&s.IsActive, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
