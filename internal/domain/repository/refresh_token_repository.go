package repository

import (
	"context"
	"time"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
)

// RefreshTokenRepository persists hashed refresh tokens.
type RefreshTokenRepository interface {
	// Create stores t and fills ID and CreatedAt.
	Create(ctx context.Context, t *entity.RefreshToken) error
	// ListActive returns every record whose expiry is after now.
	ListActive(ctx context.Context, now time.Time) ([]entity.RefreshToken, error)
	// GetBySelector returns the record for a split token selector.
	GetBySelector(ctx context.Context, selector string) (*entity.RefreshToken, error)
	// Rotate deletes oldID (owned by userID) and stores next as one unit.
	// It returns ErrNotFound when oldID is already gone, so only one caller wins.
	Rotate(ctx context.Context, oldID, userID string, next *entity.RefreshToken) error
	// Delete removes one record; ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every record expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
