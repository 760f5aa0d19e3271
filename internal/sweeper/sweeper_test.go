package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (c *countingExpirer) ExpireOverdue(context.Context) (int, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestOnce(t *testing.T) {
	exp := &countingExpirer{}
	s := New(exp, 0)

	n, err := s.Once(context.Background())
	if err != nil {
		t.Fatalf("Once failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
	if s.Enabled() {
		t.Error("expected zero interval to disable the loop")
	}
}

func TestRun_Disabled(t *testing.T) {
	exp := &countingExpirer{}
	done := make(chan struct{})
	go func() {
		New(exp, 0).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected disabled sweeper to return immediately")
	}
	if got := exp.calls.Load(); got != 0 {
		t.Errorf("expected no sweeps, got %d", got)
	}
}

func TestRun_SweepsUntilCancelled(t *testing.T) {
	exp := &countingExpirer{err: errors.New("transient")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(exp, 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for exp.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", exp.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after cancel")
	}
}
