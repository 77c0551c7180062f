package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
)

// ErrRefreshTokenInvalid covers absent, expired, revoked and already-rotated tokens.
var ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")

// Lookup modes for refresh tokens.
const (
	// LookupScan hashes a single opaque secret and verifies it against every active record.
	LookupScan = "scan"
	// LookupSelector issues "selector.verifier" tokens found by selector in one query.
	LookupSelector = "selector"
)

const (
	secretBytes   = 32
	selectorBytes = 12
	// longest raw token either mode produces, with headroom
	maxRawTokenLen = 128
)

// IssuedToken is a freshly minted refresh token. Raw is handed to the client once and never stored.
type IssuedToken struct {
	Raw    string
	Record entity.RefreshToken
}

// RefreshTokenManager creates, verifies, rotates and revokes hashed refresh tokens.
type RefreshTokenManager struct {
	Repo   repository.RefreshTokenRepository
	Hasher helpers.Hasher
	TTL    time.Duration
	Lookup string

	now func() time.Time
}

func NewRefreshTokenManager(repo repository.RefreshTokenRepository, hasher helpers.Hasher, ttl time.Duration, lookup string) *RefreshTokenManager {
	if lookup == "" {
		lookup = LookupScan
	}
	return &RefreshTokenManager{Repo: repo, Hasher: hasher, TTL: ttl, Lookup: lookup, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (m *RefreshTokenManager) WithClock(now func() time.Time) *RefreshTokenManager {
	m.now = now
	return m
}

// mint builds a raw token and the unsaved record holding its digest.
func (m *RefreshTokenManager) mint(userID string) (IssuedToken, error) {
	secret, err := helpers.GenToken(secretBytes)
	if err != nil {
		return IssuedToken{}, err
	}
	rec := entity.RefreshToken{UserID: userID, ExpiresAt: m.now().Add(m.TTL)}
	raw := secret
	if m.Lookup == LookupSelector {
		sel, err := helpers.GenToken(selectorBytes)
		if err != nil {
			return IssuedToken{}, err
		}
		rec.Selector = sel
		raw = sel + "." + secret
	}
	rec.TokenHash, err = m.Hasher.Hash(secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Raw: raw, Record: rec}, nil
}

// Issue stores a new refresh token for userID and returns its raw value.
func (m *RefreshTokenManager) Issue(ctx context.Context, userID string) (IssuedToken, error) {
	tok, err := m.mint(userID)
	if err != nil {
		return IssuedToken{}, err
	}
	if err := m.Repo.Create(ctx, &tok.Record); err != nil {
		return IssuedToken{}, err
	}
	return tok, nil
}

// Verify returns the stored record matching raw, or ErrRefreshTokenInvalid.
// Tokens of either lookup mode are accepted so the mode can change without logging everyone out.
func (m *RefreshTokenManager) Verify(ctx context.Context, raw string) (*entity.RefreshToken, error) {
	if raw == "" || len(raw) > maxRawTokenLen {
		return nil, ErrRefreshTokenInvalid
	}
	now := m.now()
	if sel, secret, ok := strings.Cut(raw, "."); ok {
		return m.verifySelector(ctx, sel, secret, now)
	}

	active, err := m.Repo.ListActive(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range active {
		rec := &active[i]
		if rec.Selector != "" || rec.Expired(now) {
			continue
		}
		if m.Hasher.Verify(raw, rec.TokenHash) {
			return rec, nil
		}
	}
	return nil, ErrRefreshTokenInvalid
}

func (m *RefreshTokenManager) verifySelector(ctx context.Context, sel, secret string, now time.Time) (*entity.RefreshToken, error) {
	if sel == "" || secret == "" {
		return nil, ErrRefreshTokenInvalid
	}
	rec, err := m.Repo.GetBySelector(ctx, sel)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRefreshTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	if rec.Expired(now) || !m.Hasher.Verify(secret, rec.TokenHash) {
		return nil, ErrRefreshTokenInvalid
	}
	return rec, nil
}

// Rotate replaces old with a fresh token for the same user. Only one of several
// concurrent rotations of the same record succeeds; the rest get ErrRefreshTokenInvalid.
func (m *RefreshTokenManager) Rotate(ctx context.Context, old *entity.RefreshToken) (IssuedToken, error) {
	tok, err := m.mint(old.UserID)
	if err != nil {
		return IssuedToken{}, err
	}
	if err := m.Repo.Rotate(ctx, old.ID, old.UserID, &tok.Record); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return IssuedToken{}, ErrRefreshTokenInvalid
		}
		return IssuedToken{}, err
	}
	return tok, nil
}

// Revoke deletes the record with id. A record that is already gone counts as revoked.
func (m *RefreshTokenManager) Revoke(ctx context.Context, id string) error {
	if err := m.Repo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// PurgeExpired deletes every expired record.
func (m *RefreshTokenManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.Repo.DeleteExpired(ctx, m.now())
}
