// Package membership implements the Group Membership Manager: group
// creation, invites, joining, leaving and member removal.
//
// Invariants kept here:
//   - a group has between 1 and MaxMembers members while it exists
//   - the owner is always a member; the owner leaving as the last member
//     deletes the group, and cannot leave while others remain
//   - an invite is redeemed (or declined) at most once
//
// Every operation runs in one store transaction and locks the group row
// first, so concurrent joins and leaves on one group never corrupt its size.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/mutualaid/internal/apperr"
	"github.com/mmynk/mutualaid/internal/clock"
	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/notify"
	"github.com/mmynk/mutualaid/internal/quota"
	"github.com/mmynk/mutualaid/internal/sanitize"
	"github.com/mmynk/mutualaid/internal/storage"
	"github.com/mmynk/mutualaid/internal/token"
)

const (
	// MaxMembers is the group size ceiling, owner included.
	MaxMembers = 20

	// InviteTTL is how long an invite stays redeemable.
	InviteTTL = 7 * 24 * time.Hour

	// MaxGroupNameLength bounds group names, in characters.
	MaxGroupNameLength = 100
)

// invalidInvite is deliberately the same for unknown, used and expired
// tokens.
func invalidInvite() error {
	return apperr.NotFound("invalid or expired invite")
}

// Manager enforces the group membership rules.
type Manager struct {
	store    storage.Store
	quota    *quota.Evaluator
	tokens   token.Generator
	clock    clock.Clock
	notifier notify.Notifier
}

// Option configures a Manager.
type Option func(*Manager)

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithTokens replaces the crypto/rand invite token generator.
func WithTokens(g token.Generator) Option {
	return func(m *Manager) { m.tokens = g }
}

func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// New creates a Manager over store, guarded by q.
func New(store storage.Store, q *quota.Evaluator, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		quota:    q,
		tokens:   token.NewRandom(),
		clock:    clock.Real(),
		notifier: notify.Nop{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateGroup creates a group owned by ownerID, with the owner as its first
// member.
func (m *Manager) CreateGroup(ctx context.Context, ownerID, name string) (*models.Group, error) {
	var group *models.Group
	err := m.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := m.quota.Require(ctx, tx, ownerID, quota.GroupsCreated); err != nil {
			return err
		}

		clean := sanitize.Text(name)
		if clean == "" {
			return apperr.Validation("group name is required")
		}
		if sanitize.Length(clean) > MaxGroupNameLength {
			return apperr.Validation("group name must be at most %d characters", MaxGroupNameLength)
		}

		now := m.clock.Now()
		group = &models.Group{Name: clean, CreatedBy: ownerID, CreatedAt: now}
		return tx.CreateGroup(ctx, group, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "owner_id", ownerID)
	return group, nil
}

// CreateInvite issues a seven-day invite to email. Only the owner may invite.
func (m *Manager) CreateInvite(ctx context.Context, groupID, inviterID, email string) (*models.Invite, error) {
	tok, err := m.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	var invite *models.Invite
	err = m.store.WithTx(ctx, func(tx storage.Tx) error {
		group, err := lockGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !group.IsOwner(inviterID) {
			return apperr.Forbidden("only the group owner can invite members")
		}

		addr, ok := sanitize.Email(email)
		if !ok {
			return apperr.Validation("invalid email address")
		}

		existing, err := tx.GetUserByEmail(ctx, addr)
		switch {
		case err == nil:
			if _, err := tx.GetMember(ctx, groupID, existing.ID); err == nil {
				return apperr.Conflict("%s is already a member of this group", addr)
			} else if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("check membership: %w", err)
			}
		case !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("look up invitee: %w", err)
		}

		now := m.clock.Now()
		invite = &models.Invite{
			GroupID:   groupID,
			Email:     addr,
			Token:     tok,
			InvitedBy: inviterID,
			ExpiresAt: now.Add(InviteTTL),
			CreatedAt: now,
		}
		return tx.CreateInvite(ctx, invite)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Invite created", "group_id", groupID, "invite_id", invite.ID, "inviter_id", inviterID)
	return invite, nil
}

// ValidateInvite resolves a token to its group and invite. Unknown, used and
// expired tokens all fail with the same NotFound error.
func (m *Manager) ValidateInvite(ctx context.Context, tok string) (*models.Group, *models.Invite, error) {
	return m.resolveInvite(ctx, m.store, tok)
}

func (m *Manager) resolveInvite(ctx context.Context, r storage.Reader, tok string) (*models.Group, *models.Invite, error) {
	if tok == "" {
		return nil, nil, invalidInvite()
	}

	invite, err := r.GetInviteByToken(ctx, tok)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, invalidInvite()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get invite: %w", err)
	}
	if !invite.Usable(m.clock.Now()) {
		return nil, nil, invalidInvite()
	}

	group, err := r.GetGroup(ctx, invite.GroupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, invalidInvite()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get group: %w", err)
	}
	return group, invite, nil
}

// JoinGroup redeems an invite token for userID.
func (m *Manager) JoinGroup(ctx context.Context, tok, userID string) (*models.Group, error) {
	var group *models.Group
	err := m.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := m.quota.Require(ctx, tx, userID, quota.GroupsJoined); err != nil {
			return err
		}

		g, invite, err := m.resolveInvite(ctx, tx, tok)
		if err != nil {
			return err
		}
		if err := tx.LockGroup(ctx, g.ID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return invalidInvite()
			}
			return err
		}

		if _, err := tx.GetMember(ctx, g.ID, userID); err == nil {
			return apperr.Conflict("you are already a member of this group")
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("check membership: %w", err)
		}

		count, err := tx.CountMembers(ctx, g.ID)
		if err != nil {
			return err
		}
		if count >= MaxMembers {
			return apperr.Conflict("group is full (%d members)", MaxMembers)
		}

		now := m.clock.Now()
		if err := tx.AddMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: userID, JoinedAt: now}); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return apperr.Conflict("you are already a member of this group")
			}
			return err
		}
		if err := tx.MarkInviteUsed(ctx, invite.ID, now); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return invalidInvite()
			}
			return err
		}

		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Member joined group", "group_id", group.ID, "user_id", userID)

	ev := notify.NewEvent(notify.MemberJoined, m.clock.Now())
	ev.GroupID = group.ID
	ev.ActorID = userID
	ev.Recipients = []string{group.CreatedBy}
	notify.Emit(ctx, m.notifier, ev)

	return group, nil
}

// DeclineInvite closes an invite without joining.
func (m *Manager) DeclineInvite(ctx context.Context, tok string) error {
	err := m.store.WithTx(ctx, func(tx storage.Tx) error {
		_, invite, err := m.resolveInvite(ctx, tx, tok)
		if err != nil {
			return err
		}
		if err := tx.MarkInviteUsed(ctx, invite.ID, m.clock.Now()); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return invalidInvite()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Invite declined")
	return nil
}

// LeaveGroup removes userID from the group. When the owner is the last
// member the group itself is deleted and deleted is true.
func (m *Manager) LeaveGroup(ctx context.Context, groupID, userID string) (deleted bool, err error) {
	err = m.store.WithTx(ctx, func(tx storage.Tx) error {
		group, err := lockGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireMember(ctx, tx, groupID, userID); err != nil {
			return err
		}

		if !group.IsOwner(userID) {
			return tx.RemoveMember(ctx, groupID, userID)
		}

		count, err := tx.CountMembers(ctx, groupID)
		if err != nil {
			return err
		}
		if count > 1 {
			return apperr.Conflict("the owner cannot leave while other members remain; remove them first")
		}
		deleted = true
		return tx.DeleteGroup(ctx, groupID)
	})
	if err != nil {
		return false, err
	}

	if deleted {
		slog.Info("Group deleted by departing owner", "group_id", groupID, "owner_id", userID)
	} else {
		slog.Info("Member left group", "group_id", groupID, "user_id", userID)
	}
	return deleted, nil
}

// RemoveMember lets the owner remove another member.
func (m *Manager) RemoveMember(ctx context.Context, groupID, ownerID, targetUserID string) error {
	err := m.store.WithTx(ctx, func(tx storage.Tx) error {
		group, err := lockGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !group.IsOwner(ownerID) {
			return apperr.Forbidden("only the group owner can remove members")
		}
		if targetUserID == ownerID {
			return apperr.Validation("the owner cannot remove themself; leave the group instead")
		}
		if err := tx.RemoveMember(ctx, groupID, targetUserID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.NotFound("user is not a member of this group")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Member removed", "group_id", groupID, "user_id", targetUserID, "owner_id", ownerID)
	return nil
}

// IsMember reports whether userID currently belongs to groupID.
func (m *Manager) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	_, err := m.store.GetMember(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get member: %w", err)
	}
	return true, nil
}

// RequireMember returns an Authorization error unless userID belongs to
// groupID, and NotFound if the group does not exist. r may be a Tx.
func (m *Manager) RequireMember(ctx context.Context, r storage.Reader, groupID, userID string) error {
	if _, err := r.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("group not found")
		}
		return fmt.Errorf("get group: %w", err)
	}
	return requireMember(ctx, r, groupID, userID)
}

// GetGroup returns a group the caller belongs to.
func (m *Manager) GetGroup(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	if err := m.RequireMember(ctx, m.store, groupID, callerID); err != nil {
		return nil, err
	}
	group, err := m.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// GetUserGroups lists the groups userID belongs to, newest first.
func (m *Manager) GetUserGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	groups, err := m.store.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// ListMembers lists a group's members for one of its members.
func (m *Manager) ListMembers(ctx context.Context, callerID, groupID string) ([]*models.MemberProfile, error) {
	if err := m.RequireMember(ctx, m.store, groupID, callerID); err != nil {
		return nil, err
	}
	members, err := m.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// ListInvites lists the group's still-redeemable invites for its owner.
func (m *Manager) ListInvites(ctx context.Context, callerID, groupID string) ([]*models.Invite, error) {
	group, err := m.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("group not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if !group.IsOwner(callerID) {
		return nil, apperr.Forbidden("only the group owner can view invites")
	}

	invites, err := m.store.ListPendingInvites(ctx, groupID, m.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

func lockGroup(ctx context.Context, tx storage.Tx, groupID string) (*models.Group, error) {
	if err := tx.LockGroup(ctx, groupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, err
	}
	group, err := tx.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

func requireMember(ctx context.Context, r storage.Reader, groupID, userID string) error {
	_, err := r.GetMember(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.Forbidden("you are not a member of this group")
	}
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}
	return nil
}
