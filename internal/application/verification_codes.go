package application

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
)

// ErrCodeNotFoundOrExpired is returned when no unexpired code matches.
var ErrCodeNotFoundOrExpired = errors.New("verification code not found or expired")

// VerificationCodeManager issues and consumes one-time email codes.
type VerificationCodeManager struct {
	Repo repository.VerificationCodeRepository
	TTL  time.Duration

	now func() time.Time
}

func NewVerificationCodeManager(repo repository.VerificationCodeRepository, ttl time.Duration) *VerificationCodeManager {
	return &VerificationCodeManager{Repo: repo, TTL: ttl, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (m *VerificationCodeManager) WithClock(now func() time.Time) *VerificationCodeManager {
	m.now = now
	return m
}

// Issue stores a fresh 6-digit code. Earlier codes for the same email stay valid until they expire.
func (m *VerificationCodeManager) Issue(ctx context.Context, email, purpose string) (*entity.VerificationCode, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return nil, err
	}
	vc := &entity.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: m.now().Add(m.TTL),
	}
	if err := m.Repo.Create(ctx, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Consume deletes the newest matching unexpired code.
func (m *VerificationCodeManager) Consume(ctx context.Context, email, code, purpose string) error {
	_, err := m.Repo.Consume(ctx, email, code, purpose, m.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCodeNotFoundOrExpired
	}
	return err
}

// PurgeExpired deletes codes that can no longer be consumed.
func (m *VerificationCodeManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.Repo.DeleteExpired(ctx, m.now())
}
