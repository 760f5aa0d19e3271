package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmynk/mutualaid/internal/sweeper"
)

// slowExpirer blocks each pass until its context is cancelled.
type slowExpirer struct {
	started chan struct{}
	running atomic.Bool
}

func (e *slowExpirer) ExpireOverdue(ctx context.Context) (int, error) {
	e.running.Store(true)
	defer e.running.Store(false)
	select {
	case e.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	return 0, ctx.Err()
}

func TestStartSweeper_StopWaitsForRunningPass(t *testing.T) {
	exp := &slowExpirer{started: make(chan struct{}, 1)}
	stop := startSweeper(context.Background(), sweeper.New(exp, time.Hour))

	select {
	case <-exp.started:
	case <-time.After(time.Second):
		t.Fatal("sweep pass never started")
	}

	stop()
	if exp.running.Load() {
		t.Error("expected the sweep pass to have returned when stop returns")
	}
}

func TestStartSweeper_Disabled(t *testing.T) {
	exp := &slowExpirer{started: make(chan struct{}, 1)}
	stop := startSweeper(context.Background(), sweeper.New(exp, 0))
	stop()

	select {
	case <-exp.started:
		t.Error("expected no pass when the interval is zero")
	default:
	}
}
