package postgres

import (
	"context"
	"time"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

type VerificationCodeRepository struct {
	db DBTX
}

func NewVerificationCodeRepository(db DBTX) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

func (r *VerificationCodeRepository) Create(ctx context.Context, c *entity.VerificationCode) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO verification_codes (email, code, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at`, c.Email, c.Code, c.Purpose, c.ExpiresAt).
		Scan(&c.ID, &c.CreatedAt)
}

// Consume deletes the newest matching code in a single statement so a code
// submitted twice concurrently is accepted at most once.
func (r *VerificationCodeRepository) Consume(ctx context.Context, email, code, purpose string, now time.Time) (*entity.VerificationCode, error) {
	c := &entity.VerificationCode{}
	err := r.db.QueryRow(ctx, `
		DELETE FROM verification_codes
		WHERE id = (
			SELECT id FROM verification_codes
			WHERE email = $1 AND code = $2 AND purpose = $3 AND expires_at > $4
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id::text, email, code, purpose, expires_at, created_at`, email, code, purpose, now).
		Scan(&c.ID, &c.Email, &c.Code, &c.Purpose, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM verification_codes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.VerificationCodeRepository = (*VerificationCodeRepository)(nil)
