package repository

import (
	"context"

	"ble-attendance/backend/internal/org/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Org, error)
	GetByCode(ctx context.Context, code uint16) (*domain.Org, error)
	Create(ctx context.Context, o *domain.Org) error
	NextFreeCode(ctx context.Context) (uint16, error)
}
