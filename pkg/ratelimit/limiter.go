// Package ratelimit implements fixed-window counters keyed by client identity and action.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidArgs = errors.New("ratelimit: limit and window must be positive")

// Result describes the state of a key after one Check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is the time left until the current window lapses.
	Reset time.Duration
}

// Limiter counts one action against key. The (limit+1)-th call inside a window is rejected;
// the first call after the window lapses starts a fresh one.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

func newResult(count int64, limit int, reset time.Duration) Result {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if reset < 0 {
		reset = 0
	}
	return Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		Reset:     reset,
	}
}
