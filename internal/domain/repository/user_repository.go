package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

// UserRepository defines the credential store operations the auth core needs.
// Create must enforce email and username uniqueness with ErrDuplicateEmail / ErrDuplicateUsername.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	UpdateStatus(ctx context.Context, id string, status entity.EmailStatus) error
	UpdatePassword(ctx context.Context, id string, hash string) error
	UpdateRole(ctx context.Context, id string, role entity.Role) error

	// EnableSecondFactor stores secret for kind, marks it enabled and records step as used.
	EnableSecondFactor(ctx context.Context, id string, kind entity.SlotKind, secret string, step int64) error
	// DisableSecondFactor clears the secret for kind.
	DisableSecondFactor(ctx context.Context, id string, kind entity.SlotKind) error
	// AdvanceSecondFactorStep records step as used if it is newer than the last accepted one.
	// It returns false when the step was already consumed.
	AdvanceSecondFactorStep(ctx context.Context, id string, kind entity.SlotKind, step int64) (bool, error)
}
