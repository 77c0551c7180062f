package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

func TestUserRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	require.NoError(t, r.Create(ctx, &entity.User{Email: "a@x.com", Username: "alice"}))
	assert.ErrorIs(t, r.Create(ctx, &entity.User{Email: "a@x.com", Username: "bob"}), repository.ErrDuplicateEmail)
	assert.ErrorIs(t, r.Create(ctx, &entity.User{Email: "b@x.com", Username: "alice"}), repository.ErrDuplicateUsername)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := &entity.User{Email: "a@x.com", Username: "alice"}
	require.NoError(t, r.Create(ctx, u))

	got, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	got.EmailStatus = entity.EmailVerified

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EmailPending, again.EmailStatus)
}

func TestUserRepository_AdvanceStep(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := &entity.User{Email: "a@x.com", Username: "alice"}
	require.NoError(t, r.Create(ctx, u))

	ok, err := r.AdvanceSecondFactorStep(ctx, u.ID, entity.SlotTwoFactor, 10)
	require.NoError(t, err)
	assert.False(t, ok, "disabled slot")

	require.NoError(t, r.EnableSecondFactor(ctx, u.ID, entity.SlotTwoFactor, "S", 10))
	ok, _ = r.AdvanceSecondFactorStep(ctx, u.ID, entity.SlotTwoFactor, 10)
	assert.False(t, ok, "step already used at enrollment")
	ok, _ = r.AdvanceSecondFactorStep(ctx, u.ID, entity.SlotTwoFactor, 11)
	assert.True(t, ok)

	require.NoError(t, r.DisableSecondFactor(ctx, u.ID, entity.SlotTwoFactor))
	got, _ := r.GetByID(ctx, u.ID)
	assert.Equal(t, entity.SecondFactor{}, got.TwoFactor)
}

func TestRefreshTokenRepository_RotateOnce(t *testing.T) {
	ctx := context.Background()
	r := NewRefreshTokenRepository()
	old := &entity.RefreshToken{UserID: "u-1", TokenHash: "d", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, r.Create(ctx, old))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := &entity.RefreshToken{UserID: "u-1", TokenHash: "n", ExpiresAt: time.Now().Add(time.Hour)}
			if r.Rotate(ctx, old.ID, "u-1", next) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 1, r.Len())
}

func TestRefreshTokenRepository_RotateWrongOwner(t *testing.T) {
	ctx := context.Background()
	r := NewRefreshTokenRepository()
	old := &entity.RefreshToken{UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, r.Create(ctx, old))
	assert.ErrorIs(t, r.Rotate(ctx, old.ID, "u-2", &entity.RefreshToken{}), repository.ErrNotFound)
}

func TestRefreshTokenRepository_ExpiryFiltering(t *testing.T) {
	ctx := context.Background()
	r := NewRefreshTokenRepository()
	now := time.Now()
	require.NoError(t, r.Create(ctx, &entity.RefreshToken{UserID: "u", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, r.Create(ctx, &entity.RefreshToken{UserID: "u", ExpiresAt: now.Add(time.Hour), Selector: "sel"}))

	active, err := r.ListActive(ctx, now)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	got, err := r.GetBySelector(ctx, "sel")
	require.NoError(t, err)
	assert.Equal(t, "sel", got.Selector)
	_, err = r.GetBySelector(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, r.Len())
}

func TestVerificationCodeRepository_NewestWins(t *testing.T) {
	ctx := context.Background()
	r := NewVerificationCodeRepository()
	now := time.Now()
	first := &entity.VerificationCode{Email: "a@x.com", Code: "111111", Purpose: "register", ExpiresAt: now.Add(time.Minute)}
	second := &entity.VerificationCode{Email: "a@x.com", Code: "111111", Purpose: "register", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, r.Create(ctx, first))
	require.NoError(t, r.Create(ctx, second))

	got, err := r.Consume(ctx, "a@x.com", "111111", "register", now)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	got, err = r.Consume(ctx, "a@x.com", "111111", "register", now)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = r.Consume(ctx, "a@x.com", "111111", "register", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVerificationCodeRepository_ExpiredAndPurpose(t *testing.T) {
	ctx := context.Background()
	r := NewVerificationCodeRepository()
	now := time.Now()
	require.NoError(t, r.Create(ctx, &entity.VerificationCode{Email: "a@x.com", Code: "1", Purpose: "register", ExpiresAt: now}))
	require.NoError(t, r.Create(ctx, &entity.VerificationCode{Email: "a@x.com", Code: "2", Purpose: "reset", ExpiresAt: now.Add(time.Hour)}))

	_, err := r.Consume(ctx, "a@x.com", "1", "register", now)
	assert.ErrorIs(t, err, repository.ErrNotFound, "expired")
	_, err = r.Consume(ctx, "a@x.com", "2", "register", now)
	assert.ErrorIs(t, err, repository.ErrNotFound, "wrong purpose")

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
