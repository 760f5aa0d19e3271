package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/mutualaid/internal/app"
	"github.com/mmynk/mutualaid/internal/clock"
	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/requests"
	"github.com/mmynk/mutualaid/internal/storage"
	"github.com/mmynk/mutualaid/internal/storage/memory"
)

func newTestApp(t *testing.T) (*app.App, *models.User) {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })

	user := models.NewUser("Carol@Example.com", "Carol", "hash")
	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateUser(context.Background(), user)
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	return app.New(store, app.Options{}), user
}

func TestSetLimits(t *testing.T) {
	a, user := newTestApp(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := setLimits(ctx, a, &out, []string{"--email", "carol@example.com", "--open", "9"}); err != nil {
		t.Fatalf("set-limits failed: %v", err)
	}

	limits, err := a.Quota.GetLimits(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetLimits failed: %v", err)
	}
	if limits.MaxOpenRequests != 9 {
		t.Errorf("max open requests: expected 9, got %d", limits.MaxOpenRequests)
	}
	if limits.MaxGroupsCreated != models.DefaultMaxGroupsCreated {
		t.Errorf("max groups created: expected %d, got %d", models.DefaultMaxGroupsCreated, limits.MaxGroupsCreated)
	}
	if !strings.Contains(out.String(), "open=9") {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := setLimits(ctx, a, &out, []string{"--email", "carol@example.com", "--joined", "-1"}); err == nil {
		t.Error("expected error for negative limit")
	}
	if err := setLimits(ctx, a, &out, []string{"--email", "nobody@example.com"}); err == nil {
		t.Error("expected error for unknown email")
	}
	if err := setLimits(ctx, a, &out, nil); err == nil {
		t.Error("expected error without --email")
	}
}

func TestShowUsage(t *testing.T) {
	a, _ := newTestApp(t)

	var out bytes.Buffer
	if err := showUsage(context.Background(), a, &out, []string{"--email", "CAROL@example.com"}); err != nil {
		t.Fatalf("usage failed: %v", err)
	}
	if !strings.Contains(out.String(), "open requests   0 / 5") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestPromote(t *testing.T) {
	a, user := newTestApp(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := promote(ctx, a, &out, []string{"--email", user.Email}); err != nil {
		t.Fatalf("promote failed: %v", err)
	}

	got, err := a.Store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !got.IsAdmin {
		t.Error("expected user to be an administrator")
	}
}

func TestSweep(t *testing.T) {
	store := memory.New()
	defer store.Close()
	ctx := context.Background()

	fake := clock.NewFake(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	a := app.New(store, app.Options{Clock: fake})

	owner := models.NewUser("dan@example.com", "Dan", "hash")
	if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateUser(ctx, owner) }); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	group, err := a.Members.CreateGroup(ctx, owner.ID, "Block")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	_, err = a.Requests.Create(ctx, owner.ID, requests.NewRequest{
		GroupID:         group.ID,
		ItemDescription: "bread",
		NeededBy:        fake.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	fake.Advance(2 * time.Hour)

	var out bytes.Buffer
	if err := sweep(ctx, a, &out, nil); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if out.String() != "expired 1 requests\n" {
		t.Errorf("output: expected 'expired 1 requests', got %q", out.String())
	}
}
