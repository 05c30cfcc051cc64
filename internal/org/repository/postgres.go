package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"ble-attendance/backend/internal/org/domain"
)

// ErrCodeTaken is returned when creating an organization whose code is already
// assigned; the code column carries a unique index so the code<->org mapping
// stays bijective.
var ErrCodeTaken = errors.New("organization code already assigned")

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, org_code, name, status, created_at FROM organizations WHERE id = $1`, id)
	return scanOrg(row)
}

// GetByCode returns the organization broadcast as the given beacon major code,
// or nil if no organization holds that code.
func (r *PostgresRepository) GetByCode(ctx context.Context, code uint16) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, org_code, name, status, created_at FROM organizations WHERE org_code = $1`, int32(code))
	return scanOrg(row)
}

// Create persists the organization. The organization must have ID and Code set.
// Returns ErrCodeTaken when the code is already held by another organization.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Org) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, org_code, name, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		o.ID, int32(o.Code), o.Name, string(o.Status), o.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrCodeTaken
	}
	return err
}

// NextFreeCode returns the code after the highest assigned one. Freed codes
// are never reused, so a stale badge cannot resolve into a newer organization.
// The beacon major field is 16-bit, so allocation fails past 65535.
func (r *PostgresRepository) NextFreeCode(ctx context.Context) (uint16, error) {
	var next int32
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(org_code), 0) + 1 FROM organizations`).Scan(&next)
	if err != nil {
		return 0, err
	}
	if next > 0xFFFF {
		return 0, fmt.Errorf("organization code space exhausted")
	}
	return uint16(next), nil
}

func scanOrg(row *sql.Row) (*domain.Org, error) {
	var (
		o      domain.Org
		code   int32
		status string
	)
	err := row.Scan(&o.ID, &code, &o.Name, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Code = uint16(code)
	o.Status = domain.OrgStatus(status)
	return &o, nil
}
