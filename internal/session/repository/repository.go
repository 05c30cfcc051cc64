package repository

import (
	"context"
	"time"

	"ble-attendance/backend/internal/session/domain"
)

// Repository defines persistence for attendance sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	// ListActiveByOrg returns sessions for the org whose window contains now,
	// in creation order. The set is bounded small: sessions are short-lived.
	ListActiveByOrg(ctx context.Context, orgID string, now time.Time) ([]*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	// Terminate pulls the session's ends_at to now. Idempotent; terminating an
	// already-closed session is a no-op.
	Terminate(ctx context.Context, id string, now time.Time) error
}
