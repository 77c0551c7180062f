// Package memory provides mutex-guarded repositories for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User), now: time.Now}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
	}
	if u.EmailStatus == "" {
		u.EmailStatus = entity.EmailPending
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *UserRepository) update(id string, fn func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = r.now()
	return nil
}

func (r *UserRepository) UpdateStatus(_ context.Context, id string, status entity.EmailStatus) error {
	return r.update(id, func(u *entity.User) { u.EmailStatus = status })
}

func (r *UserRepository) UpdatePassword(_ context.Context, id string, hash string) error {
	return r.update(id, func(u *entity.User) { u.PasswordHash = hash })
}

func (r *UserRepository) UpdateRole(_ context.Context, id string, role entity.Role) error {
	return r.update(id, func(u *entity.User) { u.Role = role })
}

func (r *UserRepository) EnableSecondFactor(_ context.Context, id string, kind entity.SlotKind, secret string, step int64) error {
	if !kind.Valid() {
		return errUnknownSlot(kind)
	}
	return r.update(id, func(u *entity.User) {
		*u.Factor(kind) = entity.SecondFactor{Secret: secret, Enabled: true, LastStep: step}
	})
}

func (r *UserRepository) DisableSecondFactor(_ context.Context, id string, kind entity.SlotKind) error {
	if !kind.Valid() {
		return errUnknownSlot(kind)
	}
	return r.update(id, func(u *entity.User) { *u.Factor(kind) = entity.SecondFactor{} })
}

func (r *UserRepository) AdvanceSecondFactorStep(_ context.Context, id string, kind entity.SlotKind, step int64) (bool, error) {
	if !kind.Valid() {
		return false, errUnknownSlot(kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	f := u.Factor(kind)
	if !f.Enabled || f.LastStep >= step {
		return false, nil
	}
	f.LastStep = step
	return true, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
