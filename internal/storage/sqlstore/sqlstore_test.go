package sqlstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "mutualaid-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := NewSQLite(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedGroup(t *testing.T, store *Store, owner string, at time.Time) *models.Group {
	t.Helper()
	group := &models.Group{Name: "Neighbors", CreatedBy: owner, CreatedAt: at}
	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateGroup(context.Background(), group, at)
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestRebind(t *testing.T) {
	got := Postgres.rebind("SELECT * FROM requests WHERE id = ? AND status IN (?, ?)")
	want := "SELECT * FROM requests WHERE id = $1 AND status IN ($2, $3)"
	if got != want {
		t.Errorf("rebind: expected %q, got %q", want, got)
	}
	if q := SQLite.rebind("id = ?"); q != "id = ?" {
		t.Errorf("sqlite rebind should be identity, got %q", q)
	}
	if Postgres.forUpdate() != " FOR UPDATE" || SQLite.forUpdate() != "" {
		t.Error("unexpected forUpdate suffixes")
	}
}

func TestSQLStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("CreateUser generates ID and enforces unique email", func(t *testing.T) {
		user := models.NewUser("Alice@Example.com", "Alice", "hash")
		err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateUser(ctx, user) })
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}

		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID || got.Name != "Alice" {
			t.Errorf("unexpected user: %+v", got)
		}

		dup := models.NewUser("alice@example.com", "Other", "hash")
		err = store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateUser(ctx, dup) })
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict for duplicate email, got %v", err)
		}
	})

	t.Run("GetUser returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUser(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateGroup adds owner membership", func(t *testing.T) {
		group := seedGroup(t, store, "owner-1", now)

		member, err := store.GetMember(ctx, group.ID, "owner-1")
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if !member.JoinedAt.Equal(now) {
			t.Errorf("JoinedAt: expected %v, got %v", now, member.JoinedAt)
		}

		n, err := store.CountMembers(ctx, group.ID)
		if err != nil || n != 1 {
			t.Errorf("CountMembers: expected 1, got %d (%v)", n, err)
		}

		counts, err := store.CountUsage(ctx, "owner-1")
		if err != nil {
			t.Fatalf("CountUsage failed: %v", err)
		}
		if counts.GroupsCreated != 1 || counts.GroupsJoined != 1 {
			t.Errorf("unexpected counts: %+v", counts)
		}
	})

	t.Run("AddMember rejects duplicates", func(t *testing.T) {
		group := seedGroup(t, store, "owner-2", now)
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			return tx.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: "owner-2", JoinedAt: now})
		})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("failed transaction leaves no writes", func(t *testing.T) {
		boom := errors.New("boom")
		group := &models.Group{Name: "Ghost", CreatedBy: "owner-3", CreatedAt: now}
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			if err := tx.CreateGroup(ctx, group, now); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected rolled back group to be missing, got %v", err)
		}
	})

	t.Run("MarkInviteUsed is single-shot", func(t *testing.T) {
		group := seedGroup(t, store, "owner-4", now)
		invite := &models.Invite{
			GroupID: group.ID, Email: "b@example.com", Token: "tok-1", InvitedBy: "owner-4",
			ExpiresAt: now.Add(7 * 24 * time.Hour), CreatedAt: now,
		}
		if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateInvite(ctx, invite) }); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}

		pending, err := store.ListPendingInvites(ctx, group.ID, now)
		if err != nil || len(pending) != 1 {
			t.Fatalf("ListPendingInvites: expected 1, got %d (%v)", len(pending), err)
		}

		mark := func() error {
			return store.WithTx(ctx, func(tx storage.Tx) error { return tx.MarkInviteUsed(ctx, invite.ID, now) })
		}
		if err := mark(); err != nil {
			t.Fatalf("first MarkInviteUsed failed: %v", err)
		}
		if err := mark(); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("second MarkInviteUsed: expected ErrConflict, got %v", err)
		}

		got, err := store.GetInviteByToken(ctx, "tok-1")
		if err != nil {
			t.Fatalf("GetInviteByToken failed: %v", err)
		}
		if got.UsedAt == nil {
			t.Error("expected UsedAt to be set")
		}
	})

	t.Run("UpdateRequestIf only matches expected state", func(t *testing.T) {
		group := seedGroup(t, store, "owner-5", now)
		req := &models.Request{
			UserID: "owner-5", GroupID: group.ID, ItemDescription: "milk",
			NeededBy: now.Add(24 * time.Hour), Status: models.StatusOpen, CreatedAt: now,
		}
		if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateRequest(ctx, req) }); err != nil {
			t.Fatalf("CreateRequest failed: %v", err)
		}

		claimed := req.Clone()
		claimed.Status = models.StatusClaimed
		claimed.ClaimedBy = "bob"
		claimed.ClaimedAt = &now

		update := func(from models.RequestStatus, claimer string) error {
			return store.WithTx(ctx, func(tx storage.Tx) error {
				return tx.UpdateRequestIf(ctx, claimed, from, claimer)
			})
		}
		if err := update(models.StatusOpen, ""); err != nil {
			t.Fatalf("claim update failed: %v", err)
		}
		if err := update(models.StatusOpen, ""); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("second claim: expected ErrConflict, got %v", err)
		}

		got, err := store.GetRequest(ctx, req.ID)
		if err != nil {
			t.Fatalf("GetRequest failed: %v", err)
		}
		if got.Status != models.StatusClaimed || got.ClaimedBy != "bob" || got.ClaimedAt == nil {
			t.Errorf("unexpected request after claim: %+v", got)
		}

		claimedReqs, err := store.ListClaimedRequests(ctx, "bob")
		if err != nil || len(claimedReqs) != 1 {
			t.Errorf("ListClaimedRequests: expected 1, got %d (%v)", len(claimedReqs), err)
		}
	})

	t.Run("DeleteRequestIf respects allowed statuses", func(t *testing.T) {
		group := seedGroup(t, store, "owner-6", now)
		req := &models.Request{
			UserID: "owner-6", GroupID: group.ID, ItemDescription: "eggs",
			NeededBy: now.Add(time.Hour), Status: models.StatusFulfilled, CreatedAt: now,
		}
		if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateRequest(ctx, req) }); err != nil {
			t.Fatalf("CreateRequest failed: %v", err)
		}

		err := store.WithTx(ctx, func(tx storage.Tx) error {
			return tx.DeleteRequestIf(ctx, req.ID, models.StatusOpen, models.StatusClaimed)
		})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict deleting fulfilled request, got %v", err)
		}
		if _, err := store.GetRequest(ctx, req.ID); err != nil {
			t.Errorf("fulfilled request should survive: %v", err)
		}
	})

	t.Run("ListGroupRequests orders newest first", func(t *testing.T) {
		group := seedGroup(t, store, "owner-7", now)
		for i, desc := range []string{"first", "second", "third"} {
			req := &models.Request{
				UserID: "owner-7", GroupID: group.ID, ItemDescription: desc,
				NeededBy: now.Add(time.Hour), Status: models.StatusOpen,
				CreatedAt: now.Add(time.Duration(i) * time.Second),
			}
			if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateRequest(ctx, req) }); err != nil {
				t.Fatalf("CreateRequest failed: %v", err)
			}
		}

		reqs, err := store.ListGroupRequests(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListGroupRequests failed: %v", err)
		}
		if len(reqs) != 3 || reqs[0].ItemDescription != "third" || reqs[2].ItemDescription != "first" {
			t.Errorf("unexpected order: %v", descriptions(reqs))
		}
	})

	t.Run("same-millisecond rows order by ID descending", func(t *testing.T) {
		group := seedGroup(t, store, "owner-tie", now)
		for _, id := range []string{"req-a", "req-c", "req-b"} {
			req := &models.Request{
				ID: id, UserID: "owner-tie", GroupID: group.ID, ItemDescription: id,
				NeededBy: now.Add(time.Hour), Status: models.StatusOpen, CreatedAt: now,
			}
			if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateRequest(ctx, req) }); err != nil {
				t.Fatalf("CreateRequest failed: %v", err)
			}
		}
		reqs, err := store.ListUserRequests(ctx, "owner-tie")
		if err != nil {
			t.Fatalf("ListUserRequests failed: %v", err)
		}
		if got := descriptions(reqs); len(got) != 3 || got[0] != "req-c" || got[1] != "req-b" || got[2] != "req-a" {
			t.Errorf("order: expected [req-c req-b req-a], got %v", got)
		}

		for _, id := range []string{"grp-tie-a", "grp-tie-b"} {
			g := &models.Group{ID: id, Name: id, CreatedBy: "tie-owner", CreatedAt: now}
			if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateGroup(ctx, g, now) }); err != nil {
				t.Fatalf("CreateGroup failed: %v", err)
			}
		}
		groups, err := store.ListUserGroups(ctx, "tie-owner")
		if err != nil {
			t.Fatalf("ListUserGroups failed: %v", err)
		}
		if len(groups) != 2 || groups[0].ID != "grp-tie-b" {
			t.Errorf("expected grp-tie-b first, got %d groups", len(groups))
		}
	})

	t.Run("ListPendingInvites skips expired and used invites", func(t *testing.T) {
		group := seedGroup(t, store, "owner-inv", now)
		invites := []*models.Invite{
			{Token: "tok-live", ExpiresAt: now.Add(time.Hour)},
			{Token: "tok-edge", ExpiresAt: now},
			{Token: "tok-dead", ExpiresAt: now.Add(-time.Millisecond)},
			{Token: "tok-used", ExpiresAt: now.Add(time.Hour)},
		}
		for _, inv := range invites {
			inv.GroupID, inv.Email, inv.InvitedBy, inv.CreatedAt = group.ID, "x@example.com", "owner-inv", now.Add(-time.Hour)
			if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateInvite(ctx, inv) }); err != nil {
				t.Fatalf("CreateInvite failed: %v", err)
			}
		}
		if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.MarkInviteUsed(ctx, invites[3].ID, now) }); err != nil {
			t.Fatalf("MarkInviteUsed failed: %v", err)
		}

		pending, err := store.ListPendingInvites(ctx, group.ID, now)
		if err != nil {
			t.Fatalf("ListPendingInvites failed: %v", err)
		}
		tokens := map[string]bool{}
		for _, inv := range pending {
			tokens[inv.Token] = true
		}
		if len(pending) != 2 || !tokens["tok-live"] || !tokens["tok-edge"] {
			t.Errorf("expected tok-live and tok-edge, got %v", tokens)
		}
	})

	t.Run("ExpireOpenRequests only touches overdue open requests", func(t *testing.T) {
		group := seedGroup(t, store, "owner-8", now)
		overdue := &models.Request{
			UserID: "owner-8", GroupID: group.ID, ItemDescription: "overdue",
			NeededBy: now.Add(-time.Hour), Status: models.StatusOpen, CreatedAt: now,
		}
		future := &models.Request{
			UserID: "owner-8", GroupID: group.ID, ItemDescription: "future",
			NeededBy: now.Add(time.Hour), Status: models.StatusOpen, CreatedAt: now,
		}
		for _, r := range []*models.Request{overdue, future} {
			if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateRequest(ctx, r) }); err != nil {
				t.Fatalf("CreateRequest failed: %v", err)
			}
		}

		var ids []string
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			var err error
			ids, err = tx.ExpireOpenRequests(ctx, now)
			return err
		})
		if err != nil {
			t.Fatalf("ExpireOpenRequests failed: %v", err)
		}
		if len(ids) != 1 || ids[0] != overdue.ID {
			t.Errorf("expected only %s expired, got %v", overdue.ID, ids)
		}
	})

	t.Run("EnsureLimits materializes defaults once", func(t *testing.T) {
		var first *models.UserLimits
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			var err error
			first, err = tx.EnsureLimits(ctx, "limits-user", models.DefaultLimitValues(), now)
			return err
		})
		if err != nil {
			t.Fatalf("EnsureLimits failed: %v", err)
		}
		if first.MaxOpenRequests != 5 || first.MaxGroupsCreated != 3 || first.MaxGroupsJoined != 5 {
			t.Errorf("unexpected defaults: %+v", first)
		}

		first.MaxOpenRequests = 9
		first.UpdatedAt = now.Add(time.Minute)
		if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.SetLimits(ctx, first) }); err != nil {
			t.Fatalf("SetLimits failed: %v", err)
		}

		err = store.WithTx(ctx, func(tx storage.Tx) error {
			again, err := tx.EnsureLimits(ctx, "limits-user", models.DefaultLimitValues(), now)
			if err != nil {
				return err
			}
			if again.MaxOpenRequests != 9 {
				t.Errorf("EnsureLimits overwrote stored limits: %+v", again)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("second EnsureLimits failed: %v", err)
		}
	})

	t.Run("DeleteGroup cascades", func(t *testing.T) {
		group := seedGroup(t, store, "owner-9", now)
		req := &models.Request{
			UserID: "owner-9", GroupID: group.ID, ItemDescription: "bread",
			NeededBy: now.Add(time.Hour), Status: models.StatusOpen, CreatedAt: now,
		}
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			if err := tx.CreateRequest(ctx, req); err != nil {
				return err
			}
			return tx.DeleteGroup(ctx, group.ID)
		})
		if err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetRequest(ctx, req.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected request deleted with group, got %v", err)
		}
		groups, err := store.ListUserGroups(ctx, "owner-9")
		if err != nil || len(groups) != 0 {
			t.Errorf("expected no groups for owner, got %d (%v)", len(groups), err)
		}
	})
}

func TestSQLStore_ConcurrentClaim(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	group := seedGroup(t, store, "owner", now)
	req := &models.Request{
		UserID: "owner", GroupID: group.ID, ItemDescription: "milk",
		NeededBy: now.Add(time.Hour), Status: models.StatusOpen, CreatedAt: now,
	}
	if err := store.WithTx(ctx, func(tx storage.Tx) error { return tx.CreateRequest(ctx, req) }); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	const claimers = 8
	var wg sync.WaitGroup
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := req.Clone()
			next.Status = models.StatusClaimed
			next.ClaimedBy = string(rune('a' + i))
			next.ClaimedAt = &now
			errs[i] = store.WithTx(ctx, func(tx storage.Tx) error {
				return tx.UpdateRequestIf(ctx, next, models.StatusOpen, "")
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, storage.ErrConflict):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 winning claim, got %d", wins)
	}
}

func descriptions(reqs []*models.Request) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.ItemDescription
	}
	return out
}
