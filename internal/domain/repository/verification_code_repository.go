package repository

import (
	"context"
	"time"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
)

// VerificationCodeRepository persists one-time email codes.
type VerificationCodeRepository interface {
	// Create stores c and fills ID and CreatedAt.
	Create(ctx context.Context, c *entity.VerificationCode) error
	// Consume atomically deletes and returns the newest unexpired record matching
	// email, code and purpose. ErrNotFound when none matches.
	Consume(ctx context.Context, email, code, purpose string, now time.Time) (*entity.VerificationCode, error)
	// DeleteExpired removes every code expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
