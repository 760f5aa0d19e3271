// Package sweeper runs the periodic expiry pass over open requests.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// Expirer marks overdue open requests as expired.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// Sweeper calls an Expirer on a fixed interval.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
}

// New creates a Sweeper. An interval <= 0 disables the periodic loop; Once
// still works.
func New(expirer Expirer, interval time.Duration) *Sweeper {
	return &Sweeper{expirer: expirer, interval: interval}
}

// Enabled reports whether Run will do anything.
func (s *Sweeper) Enabled() bool {
	return s.interval > 0
}

// Once runs a single expiry pass.
func (s *Sweeper) Once(ctx context.Context) (int, error) {
	return s.expirer.ExpireOverdue(ctx)
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
// A failed pass is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	if !s.Enabled() {
		slog.Info("Expiry sweeper disabled")
		return
	}

	slog.Info("Expiry sweeper started", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Once(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Expiry sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}
