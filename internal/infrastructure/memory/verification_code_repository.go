package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

type VerificationCodeRepository struct {
	mu    sync.Mutex
	codes []entity.VerificationCode
	seq   int64
	now   func() time.Time
}

func NewVerificationCodeRepository() *VerificationCodeRepository {
	return &VerificationCodeRepository{now: time.Now}
}

func (r *VerificationCodeRepository) Create(_ context.Context, c *entity.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	// strictly increasing so the newest code wins ties on a coarse clock
	r.seq++
	c.CreatedAt = r.now().Add(time.Duration(r.seq))
	r.codes = append(r.codes, *c)
	return nil
}

func (r *VerificationCodeRepository) Consume(_ context.Context, email, code, purpose string, now time.Time) (*entity.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	best := -1
	for i, c := range r.codes {
		if c.Email != email || c.Code != code || c.Purpose != purpose || !c.ExpiresAt.After(now) {
			continue
		}
		if best < 0 || c.CreatedAt.After(r.codes[best].CreatedAt) {
			best = i
		}
	}
	if best < 0 {
		return nil, repository.ErrNotFound
	}
	found := r.codes[best]
	r.codes = append(r.codes[:best], r.codes[best+1:]...)
	return &found, nil
}

func (r *VerificationCodeRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.codes[:0]
	var n int64
	for _, c := range r.codes {
		if c.ExpiresAt.After(now) {
			kept = append(kept, c)
		} else {
			n++
		}
	}
	r.codes = kept
	return n, nil
}

var _ repository.VerificationCodeRepository = (*VerificationCodeRepository)(nil)
