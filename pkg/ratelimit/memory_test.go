package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemory_FixedWindow(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		limit  int
		window time.Duration
	}{
		{1, time.Second},
		{5, time.Minute},
		{10, time.Hour},
	} {
		clk := &clock{t: time.Unix(1_700_000_000, 0)}
		m := NewMemory().WithClock(clk.Now)

		for i := 1; i <= tc.limit; i++ {
			res, err := m.Check(ctx, "login:1.2.3.4", tc.limit, tc.window)
			require.NoError(t, err)
			assert.True(t, res.Allowed, "call %d of %d", i, tc.limit)
			assert.Equal(t, tc.limit-i, res.Remaining)
		}
		res, err := m.Check(ctx, "login:1.2.3.4", tc.limit, tc.window)
		require.NoError(t, err)
		assert.False(t, res.Allowed, "limit+1 must be rejected")
		assert.Equal(t, 0, res.Remaining)

		clk.Advance(tc.window)
		res, err = m.Check(ctx, "login:1.2.3.4", tc.limit, tc.window)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "first call after the window is accepted")
	}
}

func TestMemory_RejectionDoesNotExtendWindow(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(0, 0)}
	m := NewMemory().WithClock(clk.Now)

	_, _ = m.Check(ctx, "k", 1, time.Minute)
	clk.Advance(50 * time.Second)
	res, _ := m.Check(ctx, "k", 1, time.Minute)
	assert.False(t, res.Allowed)
	assert.Equal(t, 10*time.Second, res.Reset)

	clk.Advance(10 * time.Second)
	res, _ = m.Check(ctx, "k", 1, time.Minute)
	assert.True(t, res.Allowed)
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	res, _ := m.Check(ctx, "login:a", 1, time.Minute)
	assert.True(t, res.Allowed)
	res, _ = m.Check(ctx, "login:b", 1, time.Minute)
	assert.True(t, res.Allowed)
	res, _ = m.Check(ctx, "login:a", 1, time.Minute)
	assert.False(t, res.Allowed)
}

func TestMemory_InvalidArgs(t *testing.T) {
	m := NewMemory()
	_, err := m.Check(context.Background(), "k", 0, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidArgs)
	_, err = m.Check(context.Background(), "k", 1, 0)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	const limit, callers = 50, 200

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.Check(ctx, "k", limit, time.Hour)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, limit, allowed)
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(0, 0)}
	m := NewMemory().WithClock(clk.Now)

	_, _ = m.Check(ctx, "short", 1, time.Second)
	_, _ = m.Check(ctx, "long", 1, time.Hour)
	clk.Advance(time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
}
