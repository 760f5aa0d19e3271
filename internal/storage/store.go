// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/mutualaid/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint
	// or a conditional update matches zero rows.
	ErrConflict = errors.New("conflict")
)

// Reader defines the read side of the store. Listing methods return rows
// newest-created first.
type Reader interface {
	// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by normalized email. Returns ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListUserGroups returns the groups userID is a member of.
	ListUserGroups(ctx context.Context, userID string) ([]*models.Group, error)

	// GetMember returns ErrNotFound if userID is not a member of groupID.
	GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error)

	// ListMembers returns the memberships of a group with display fields,
	// oldest joined first.
	ListMembers(ctx context.Context, groupID string) ([]*models.MemberProfile, error)

	CountMembers(ctx context.Context, groupID string) (int, error)

	GetInviteByToken(ctx context.Context, token string) (*models.Invite, error)

	// ListPendingInvites returns the invites of a group that are still
	// redeemable at now: unused and not past ExpiresAt.
	ListPendingInvites(ctx context.Context, groupID string, now time.Time) ([]*models.Invite, error)

	GetRequest(ctx context.Context, requestID string) (*models.Request, error)
	ListGroupRequests(ctx context.Context, groupID string) ([]*models.Request, error)

	// ListUserRequests returns requests created by userID.
	ListUserRequests(ctx context.Context, userID string) ([]*models.Request, error)

	// ListClaimedRequests returns requests claimed by userID, including
	// fulfilled ones.
	ListClaimedRequests(ctx context.Context, userID string) ([]*models.Request, error)

	// GetLimits returns ErrNotFound if the user has no limits row yet.
	GetLimits(ctx context.Context, userID string) (*models.UserLimits, error)

	// CountUsage derives the user's current quota usage from live rows.
	CountUsage(ctx context.Context, userID string) (models.UsageCounts, error)
}

// Tx is a store transaction. All writes made through a Tx become visible
// together when the surrounding WithTx returns nil, or not at all.
type Tx interface {
	Reader

	// CreateUser inserts a user, assigning ID if empty.
	// Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error

	// CreateGroup inserts the group and its owner's membership.
	CreateGroup(ctx context.Context, group *models.Group, ownerJoinedAt time.Time) error

	// DeleteGroup removes the group together with its memberships, invites
	// and requests.
	DeleteGroup(ctx context.Context, groupID string) error

	// LockGroup serializes concurrent membership changes on one group for
	// the rest of the transaction. Returns ErrNotFound if the group is gone.
	LockGroup(ctx context.Context, groupID string) error

	// AddMember returns ErrConflict if the membership already exists.
	AddMember(ctx context.Context, member *models.GroupMember) error

	// RemoveMember returns ErrNotFound if there was no such membership.
	RemoveMember(ctx context.Context, groupID, userID string) error

	CreateInvite(ctx context.Context, invite *models.Invite) error

	// MarkInviteUsed sets used_at only if it is still unset.
	// Returns ErrConflict if the invite was already used.
	MarkInviteUsed(ctx context.Context, inviteID string, usedAt time.Time) error

	CreateRequest(ctx context.Context, req *models.Request) error

	// UpdateRequestIf writes every mutable field of req only if the stored
	// row still has status fromStatus and claimed_by fromClaimer.
	// Returns ErrConflict when the predicate matches zero rows.
	UpdateRequestIf(ctx context.Context, req *models.Request, fromStatus models.RequestStatus, fromClaimer string) error

	// DeleteRequestIf removes the request only if its status is one of
	// allowed. Returns ErrConflict when the predicate matches zero rows.
	DeleteRequestIf(ctx context.Context, requestID string, allowed ...models.RequestStatus) error

	// ExpireOpenRequests marks open requests needed before cutoff as expired
	// and returns their IDs.
	ExpireOpenRequests(ctx context.Context, cutoff time.Time) ([]string, error)

	// EnsureLimits inserts defaults for userID if no row exists and returns
	// the stored row, locked for the rest of the transaction where the
	// backend supports row locks.
	EnsureLimits(ctx context.Context, userID string, defaults models.LimitValues, now time.Time) (*models.UserLimits, error)

	// SetLimits upserts the user's ceilings.
	SetLimits(ctx context.Context, limits *models.UserLimits) error
}

// Store defines the interface for storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// in-memory) without changing the engine layer.
type Store interface {
	Reader

	// WithTx runs fn in a transaction. If fn returns an error every write it
	// made is discarded and the error is returned unchanged.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}
