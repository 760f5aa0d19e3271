// Package memory provides an in-process implementation of storage.Store.
//
// Readers share an RWMutex read lock for the duration of one call. A
// transaction holds the write lock, works on a private copy of the data and
// swaps it in on success, so a failed transaction leaves nothing behind.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

type memberKey struct {
	groupID string
	userID  string
}

// data is one consistent snapshot of every collection.
type data struct {
	users    map[string]models.User
	groups   map[string]models.Group
	members  map[memberKey]models.GroupMember
	invites  map[string]models.Invite
	requests map[string]*models.Request
	limits   map[string]models.UserLimits
}

func newData() *data {
	return &data{
		users:    make(map[string]models.User),
		groups:   make(map[string]models.Group),
		members:  make(map[memberKey]models.GroupMember),
		invites:  make(map[string]models.Invite),
		requests: make(map[string]*models.Request),
		limits:   make(map[string]models.UserLimits),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.groups {
		c.groups[k] = v
	}
	for k, v := range d.members {
		c.members[k] = v
	}
	for k, v := range d.invites {
		c.invites[k] = cloneInvite(v)
	}
	for k, v := range d.requests {
		c.requests[k] = v.Clone()
	}
	for k, v := range d.limits {
		c.limits[k] = v
	}
	return c
}

// Store is a thread-safe in-memory store.
type Store struct {
	mu   sync.RWMutex
	data *data
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newData()}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// WithTx runs fn against a private copy and commits it if fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &view{d: s.data.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = tx.d
	return nil
}

// read returns a view of the committed snapshot and the matching unlock.
func (s *Store) read() (*view, func()) {
	s.mu.RLock()
	return &view{d: s.data}, s.mu.RUnlock
}

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	v, done := s.read()
	defer done()
	return v.GetUser(ctx, userID)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	v, done := s.read()
	defer done()
	return v.GetUserByEmail(ctx, email)
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	v, done := s.read()
	defer done()
	return v.GetGroup(ctx, groupID)
}

func (s *Store) ListUserGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	v, done := s.read()
	defer done()
	return v.ListUserGroups(ctx, userID)
}

func (s *Store) GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	v, done := s.read()
	defer done()
	return v.GetMember(ctx, groupID, userID)
}

func (s *Store) ListMembers(ctx context.Context, groupID string) ([]*models.MemberProfile, error) {
	v, done := s.read()
	defer done()
	return v.ListMembers(ctx, groupID)
}

func (s *Store) CountMembers(ctx context.Context, groupID string) (int, error) {
	v, done := s.read()
	defer done()
	return v.CountMembers(ctx, groupID)
}

func (s *Store) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	v, done := s.read()
	defer done()
	return v.GetInviteByToken(ctx, token)
}

func (s *Store) ListPendingInvites(ctx context.Context, groupID string, now time.Time) ([]*models.Invite, error) {
	v, done := s.read()
	defer done()
	return v.ListPendingInvites(ctx, groupID, now)
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (*models.Request, error) {
	v, done := s.read()
	defer done()
	return v.GetRequest(ctx, requestID)
}

func (s *Store) ListGroupRequests(ctx context.Context, groupID string) ([]*models.Request, error) {
	v, done := s.read()
	defer done()
	return v.ListGroupRequests(ctx, groupID)
}

func (s *Store) ListUserRequests(ctx context.Context, userID string) ([]*models.Request, error) {
	v, done := s.read()
	defer done()
	return v.ListUserRequests(ctx, userID)
}

func (s *Store) ListClaimedRequests(ctx context.Context, userID string) ([]*models.Request, error) {
	v, done := s.read()
	defer done()
	return v.ListClaimedRequests(ctx, userID)
}

func (s *Store) GetLimits(ctx context.Context, userID string) (*models.UserLimits, error) {
	v, done := s.read()
	defer done()
	return v.GetLimits(ctx, userID)
}

func (s *Store) CountUsage(ctx context.Context, userID string) (models.UsageCounts, error) {
	v, done := s.read()
	defer done()
	return v.CountUsage(ctx, userID)
}

func newID() string {
	return uuid.New().String()
}

func cloneInvite(inv models.Invite) models.Invite {
	if inv.UsedAt != nil {
		t := *inv.UsedAt
		inv.UsedAt = &t
	}
	return inv
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
}

func conflict(what string) error {
	return fmt.Errorf("%s: %w", what, storage.ErrConflict)
}

// newestFirst sorts requests by CreatedAt descending, ID as tie-break.
func newestFirst(reqs []*models.Request) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
		}
		return reqs[i].ID > reqs[j].ID
	})
}

