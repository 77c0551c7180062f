package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

type RefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]entity.RefreshToken
	now    func() time.Time
}

func NewRefreshTokenRepository() *RefreshTokenRepository {
	return &RefreshTokenRepository{tokens: make(map[string]entity.RefreshToken), now: time.Now}
}

func (r *RefreshTokenRepository) insertLocked(t *entity.RefreshToken) {
	t.ID = uuid.NewString()
	t.CreatedAt = r.now()
	r.tokens[t.ID] = *t
}

func (r *RefreshTokenRepository) Create(_ context.Context, t *entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(t)
	return nil
}

func (r *RefreshTokenRepository) ListActive(_ context.Context, now time.Time) ([]entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.RefreshToken, 0, len(r.tokens))
	for _, t := range r.tokens {
		if !t.Expired(now) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *RefreshTokenRepository) GetBySelector(_ context.Context, selector string) (*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if selector != "" && t.Selector == selector {
			cp := t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *RefreshTokenRepository) Rotate(_ context.Context, oldID, userID string, next *entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.tokens[oldID]
	if !ok || old.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.tokens, oldID)
	r.insertLocked(next)
	return nil
}

func (r *RefreshTokenRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens, id)
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if t.Expired(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored records, expired ones included.
func (r *RefreshTokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

var _ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
