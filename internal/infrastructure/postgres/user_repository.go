package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

const userColumns = `id::text, email, username, display_name, password_hash, email_status, role,
		COALESCE(two_factor_secret, ''), two_factor_enabled, two_factor_last_step,
		COALESCE(yandex_key_secret, ''), yandex_key_enabled, yandex_key_last_step,
		created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.PasswordHash, &u.EmailStatus, &u.Role,
		&u.TwoFactor.Secret, &u.TwoFactor.Enabled, &u.TwoFactor.LastStep,
		&u.YandexKey.Secret, &u.YandexKey.Enabled, &u.YandexKey.LastStep,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.EmailStatus == "" {
		u.EmailStatus = entity.EmailPending
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, username, display_name, password_hash, email_status, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at, updated_at
	`, u.Email, u.Username, u.DisplayName, u.PasswordHash, u.EmailStatus, u.Role)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return translateUnique(err)
	}
	return nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return repository.ErrDuplicateEmail
		case "users_username_key":
			return repository.ErrDuplicateUsername
		}
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) error {
	res, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return notFound(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status entity.EmailStatus) error {
	return r.exec(ctx, `UPDATE users SET email_status = $1, updated_at = NOW() WHERE id = $2::uuid`, status, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2::uuid`, hash, id)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2::uuid`, role, id)
}

// slotPrefix maps a slot to its column prefix. Only known kinds reach the SQL text.
func slotPrefix(kind entity.SlotKind) (string, error) {
	switch kind {
	case entity.SlotTwoFactor:
		return "two_factor", nil
	case entity.SlotYandexKey:
		return "yandex_key", nil
	}
	return "", fmt.Errorf("unknown second factor slot %q", kind)
}

func (r *UserRepository) EnableSecondFactor(ctx context.Context, id string, kind entity.SlotKind, secret string, step int64) error {
	p, err := slotPrefix(kind)
	if err != nil {
		return err
	}
	return r.exec(ctx, fmt.Sprintf(`
		UPDATE users SET %[1]s_secret = $1, %[1]s_enabled = TRUE, %[1]s_last_step = $2, updated_at = NOW()
		WHERE id = $3::uuid`, p), secret, step, id)
}

func (r *UserRepository) DisableSecondFactor(ctx context.Context, id string, kind entity.SlotKind) error {
	p, err := slotPrefix(kind)
	if err != nil {
		return err
	}
	return r.exec(ctx, fmt.Sprintf(`
		UPDATE users SET %[1]s_secret = NULL, %[1]s_enabled = FALSE, %[1]s_last_step = 0, updated_at = NOW()
		WHERE id = $1::uuid`, p), id)
}

func (r *UserRepository) AdvanceSecondFactorStep(ctx context.Context, id string, kind entity.SlotKind, step int64) (bool, error) {
	p, err := slotPrefix(kind)
	if err != nil {
		return false, err
	}
	res, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE users SET %[1]s_last_step = $1
		WHERE id = $2::uuid AND %[1]s_enabled AND %[1]s_last_step < $1`, p), step, id)
	if errors.Is(notFound(err), repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
