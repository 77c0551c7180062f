package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// sweepable is a store that can drop state it no longer needs.
type sweepable interface {
	Sweep() int
}

// Sweeper periodically purges expired refresh tokens, verification codes and
// in-process rate-limit counters.
type Sweeper struct {
	Refresh  *RefreshTokenManager
	Codes    *VerificationCodeManager
	Limiters []sweepable
	Logger   *logrus.Logger
	Interval time.Duration
}

// AddLimiter registers l for sweeping when it keeps in-process state.
func (s *Sweeper) AddLimiter(l any) {
	if sw, ok := l.(sweepable); ok {
		s.Limiters = append(s.Limiters, sw)
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Interval <= 0 {
		return
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		s.SweepOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	fields := logrus.Fields{}
	if s.Refresh != nil {
		n, err := s.Refresh.PurgeExpired(ctx)
		if err != nil {
			s.Logger.WithError(err).Warn("purge expired refresh tokens failed")
		}
		fields["refresh_tokens"] = n
	}
	if s.Codes != nil {
		n, err := s.Codes.PurgeExpired(ctx)
		if err != nil {
			s.Logger.WithError(err).Warn("purge expired verification codes failed")
		}
		fields["verification_codes"] = n
	}
	var buckets int
	for _, l := range s.Limiters {
		buckets += l.Sweep()
	}
	fields["rate_limit_buckets"] = buckets
	s.Logger.WithFields(fields).Debug("sweep finished")
}
