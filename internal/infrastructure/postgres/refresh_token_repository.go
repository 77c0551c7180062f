package postgres

import (
	"context"
	"time"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

const refreshColumns = `id::text, user_id::text, COALESCE(selector, ''), token_hash, expires_at, created_at`

type RefreshTokenRepository struct {
	db DBTX
}

func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

const insertRefresh = `
		INSERT INTO refresh_tokens (user_id, selector, token_hash, expires_at)
		VALUES ($1::uuid, NULLIF($2, ''), $3, $4)
		RETURNING id::text, created_at`

func (r *RefreshTokenRepository) Create(ctx context.Context, t *entity.RefreshToken) error {
	return r.db.QueryRow(ctx, insertRefresh, t.UserID, t.Selector, t.TokenHash, t.ExpiresAt).
		Scan(&t.ID, &t.CreatedAt)
}

func (r *RefreshTokenRepository) ListActive(ctx context.Context, now time.Time) ([]entity.RefreshToken, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+refreshColumns+`
		FROM refresh_tokens
		WHERE expires_at > $1
		ORDER BY created_at DESC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.RefreshToken
	for rows.Next() {
		var t entity.RefreshToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Selector, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *RefreshTokenRepository) GetBySelector(ctx context.Context, selector string) (*entity.RefreshToken, error) {
	t := &entity.RefreshToken{}
	err := r.db.QueryRow(ctx, `SELECT `+refreshColumns+` FROM refresh_tokens WHERE selector = $1`, selector).
		Scan(&t.ID, &t.UserID, &t.Selector, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// Rotate deletes the old record and inserts next in one transaction. A concurrent
// Rotate of the same record blocks on the row lock and then sees zero rows.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID, userID string, next *entity.RefreshToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1::uuid AND user_id = $2::uuid`, oldID, userID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return notFound(err)
	}
	if res.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return repository.ErrNotFound
	}
	if err := tx.QueryRow(ctx, insertRefresh, next.UserID, next.Selector, next.TokenHash, next.ExpiresAt).
		Scan(&next.ID, &next.CreatedAt); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1::uuid`, id)
	if err != nil {
		return notFound(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
