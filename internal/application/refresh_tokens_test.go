package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/igrotrend-auth/internal/infrastructure/memory"
	"github.com/oksasatya/igrotrend-auth/pkg/helpers"
)

func newRefreshManager(lookup string, c *clock) (*RefreshTokenManager, *memory.RefreshTokenRepository) {
	repo := memory.NewRefreshTokenRepository()
	m := NewRefreshTokenManager(repo, helpers.NewBcryptHasher(bcrypt.MinCost), 24*time.Hour, lookup).WithClock(c.Now)
	return m, repo
}

func TestRefreshTokenManager_IssueVerify(t *testing.T) {
	for _, lookup := range []string{LookupScan, LookupSelector} {
		t.Run(lookup, func(t *testing.T) {
			ctx := context.Background()
			c := &clock{t: time.Now()}
			m, _ := newRefreshManager(lookup, c)

			tok, err := m.Issue(ctx, "user-1")
			require.NoError(t, err)
			assert.NotContains(t, tok.Record.TokenHash, tok.Raw, "raw value is never stored")
			assert.Equal(t, lookup == LookupSelector, strings.Contains(tok.Raw, "."))

			rec, err := m.Verify(ctx, tok.Raw)
			require.NoError(t, err)
			assert.Equal(t, "user-1", rec.UserID)
			assert.Equal(t, tok.Record.ID, rec.ID)

			_, err = m.Verify(ctx, tok.Raw+"x")
			assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
		})
	}
}

func TestRefreshTokenManager_RejectsMalformed(t *testing.T) {
	ctx := context.Background()
	m, _ := newRefreshManager(LookupSelector, &clock{t: time.Now()})

	for _, raw := range []string{"", ".", "abc.", ".abc", "nope.nope", strings.Repeat("a", 200)} {
		_, err := m.Verify(ctx, raw)
		assert.ErrorIs(t, err, ErrRefreshTokenInvalid, raw)
	}
}

func TestRefreshTokenManager_Expiry(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	m, repo := newRefreshManager(LookupScan, c)

	tok, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	c.Advance(24*time.Hour + time.Second)
	_, err = m.Verify(ctx, tok.Raw)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	n, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Zero(t, repo.Len())
}

func TestRefreshTokenManager_ModesCoexist(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	repo := memory.NewRefreshTokenRepository()
	hasher := helpers.NewBcryptHasher(bcrypt.MinCost)
	scan := NewRefreshTokenManager(repo, hasher, time.Hour, LookupScan).WithClock(c.Now)
	sel := NewRefreshTokenManager(repo, hasher, time.Hour, LookupSelector).WithClock(c.Now)

	old, err := scan.Issue(ctx, "u")
	require.NoError(t, err)
	split, err := sel.Issue(ctx, "u")
	require.NoError(t, err)

	got, err := sel.Verify(ctx, old.Raw)
	require.NoError(t, err)
	assert.Equal(t, old.Record.ID, got.ID)
	got, err = scan.Verify(ctx, split.Raw)
	require.NoError(t, err)
	assert.Equal(t, split.Record.ID, got.ID)
}

func TestRefreshTokenManager_RotateOnce(t *testing.T) {
	ctx := context.Background()
	m, repo := newRefreshManager(LookupSelector, &clock{t: time.Now()})

	tok, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	rec, err := m.Verify(ctx, tok.Raw)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Rotate(ctx, rec); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, repo.Len())
	_, err = m.Verify(ctx, tok.Raw)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid, "rotated token is spent")
}

func TestRefreshTokenManager_Revoke(t *testing.T) {
	ctx := context.Background()
	m, _ := newRefreshManager(LookupScan, &clock{t: time.Now()})

	tok, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, tok.Record.ID))
	require.NoError(t, m.Revoke(ctx, tok.Record.ID), "revoking twice is fine")

	_, err = m.Verify(ctx, tok.Raw)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}
