package memory

import (
	"context"
	"sort"
	"time"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
)

// view implements storage.Tx over one data snapshot. Reads hand out copies so
// callers never alias stored values.
type view struct {
	d *data
}

var _ storage.Tx = (*view)(nil)

func (v *view) GetUser(_ context.Context, userID string) (*models.User, error) {
	u, ok := v.d.users[userID]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (v *view) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	for _, u := range v.d.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (v *view) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := v.GetUserByEmail(ctx, user.Email); err == nil {
		return conflict("email already registered")
	}
	if user.ID == "" {
		user.ID = newID()
	}
	v.d.users[user.ID] = *user
	return nil
}

func (v *view) UpdateUser(_ context.Context, user *models.User) error {
	existing, ok := v.d.users[user.ID]
	if !ok {
		return notFound("user")
	}
	existing.Name = user.Name
	existing.Phone = user.Phone
	existing.GeneralArea = user.GeneralArea
	existing.IsAdmin = user.IsAdmin
	existing.UpdatedAt = user.UpdatedAt
	v.d.users[user.ID] = existing
	return nil
}

func (v *view) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	g, ok := v.d.groups[groupID]
	if !ok {
		return nil, notFound("group")
	}
	return &g, nil
}

func (v *view) ListUserGroups(_ context.Context, userID string) ([]*models.Group, error) {
	var groups []*models.Group
	for key := range v.d.members {
		if key.userID != userID {
			continue
		}
		if g, ok := v.d.groups[key.groupID]; ok {
			groups = append(groups, &g)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].CreatedAt.After(groups[j].CreatedAt)
		}
		return groups[i].ID > groups[j].ID
	})
	return groups, nil
}

func (v *view) CreateGroup(ctx context.Context, group *models.Group, ownerJoinedAt time.Time) error {
	if group.ID == "" {
		group.ID = newID()
	}
	if _, ok := v.d.groups[group.ID]; ok {
		return conflict("group exists")
	}
	v.d.groups[group.ID] = *group
	return v.AddMember(ctx, &models.GroupMember{
		GroupID:  group.ID,
		UserID:   group.CreatedBy,
		JoinedAt: ownerJoinedAt,
	})
}

func (v *view) DeleteGroup(_ context.Context, groupID string) error {
	if _, ok := v.d.groups[groupID]; !ok {
		return notFound("group")
	}
	for key := range v.d.members {
		if key.groupID == groupID {
			delete(v.d.members, key)
		}
	}
	for id, inv := range v.d.invites {
		if inv.GroupID == groupID {
			delete(v.d.invites, id)
		}
	}
	for id, r := range v.d.requests {
		if r.GroupID == groupID {
			delete(v.d.requests, id)
		}
	}
	delete(v.d.groups, groupID)
	return nil
}

// LockGroup only checks existence: the transaction already holds the store's
// write lock.
func (v *view) LockGroup(_ context.Context, groupID string) error {
	if _, ok := v.d.groups[groupID]; !ok {
		return notFound("group")
	}
	return nil
}

func (v *view) GetMember(_ context.Context, groupID, userID string) (*models.GroupMember, error) {
	m, ok := v.d.members[memberKey{groupID, userID}]
	if !ok {
		return nil, notFound("membership")
	}
	return &m, nil
}

func (v *view) ListMembers(_ context.Context, groupID string) ([]*models.MemberProfile, error) {
	var members []*models.MemberProfile
	for key, m := range v.d.members {
		if key.groupID != groupID {
			continue
		}
		p := &models.MemberProfile{GroupMember: m}
		if u, ok := v.d.users[key.userID]; ok {
			p.Name = u.Name
			p.Email = u.Email
		}
		members = append(members, p)
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		}
		return members[i].UserID < members[j].UserID
	})
	return members, nil
}

func (v *view) CountMembers(_ context.Context, groupID string) (int, error) {
	n := 0
	for key := range v.d.members {
		if key.groupID == groupID {
			n++
		}
	}
	return n, nil
}

func (v *view) AddMember(_ context.Context, member *models.GroupMember) error {
	key := memberKey{member.GroupID, member.UserID}
	if _, ok := v.d.members[key]; ok {
		return conflict("already a member")
	}
	v.d.members[key] = *member
	return nil
}

func (v *view) RemoveMember(_ context.Context, groupID, userID string) error {
	key := memberKey{groupID, userID}
	if _, ok := v.d.members[key]; !ok {
		return notFound("membership")
	}
	delete(v.d.members, key)
	return nil
}

func (v *view) CreateInvite(_ context.Context, invite *models.Invite) error {
	for _, existing := range v.d.invites {
		if existing.Token == invite.Token {
			return conflict("invite token collision")
		}
	}
	if invite.ID == "" {
		invite.ID = newID()
	}
	v.d.invites[invite.ID] = cloneInvite(*invite)
	return nil
}

func (v *view) GetInviteByToken(_ context.Context, token string) (*models.Invite, error) {
	for _, inv := range v.d.invites {
		if inv.Token == token {
			inv = cloneInvite(inv)
			return &inv, nil
		}
	}
	return nil, notFound("invite")
}

func (v *view) ListPendingInvites(_ context.Context, groupID string, now time.Time) ([]*models.Invite, error) {
	var invites []*models.Invite
	for _, inv := range v.d.invites {
		if inv.GroupID == groupID && inv.Usable(now) {
			inv := cloneInvite(inv)
			invites = append(invites, &inv)
		}
	}
	sort.Slice(invites, func(i, j int) bool {
		if !invites[i].CreatedAt.Equal(invites[j].CreatedAt) {
			return invites[i].CreatedAt.After(invites[j].CreatedAt)
		}
		return invites[i].ID > invites[j].ID
	})
	return invites, nil
}

func (v *view) MarkInviteUsed(_ context.Context, inviteID string, usedAt time.Time) error {
	inv, ok := v.d.invites[inviteID]
	if !ok || inv.UsedAt != nil {
		return conflict("invite already used")
	}
	inv.UsedAt = &usedAt
	v.d.invites[inviteID] = inv
	return nil
}

func (v *view) GetRequest(_ context.Context, requestID string) (*models.Request, error) {
	r, ok := v.d.requests[requestID]
	if !ok {
		return nil, notFound("request")
	}
	return r.Clone(), nil
}

func (v *view) filterRequests(keep func(*models.Request) bool) []*models.Request {
	var reqs []*models.Request
	for _, r := range v.d.requests {
		if keep(r) {
			reqs = append(reqs, r.Clone())
		}
	}
	newestFirst(reqs)
	return reqs
}

func (v *view) ListGroupRequests(_ context.Context, groupID string) ([]*models.Request, error) {
	return v.filterRequests(func(r *models.Request) bool { return r.GroupID == groupID }), nil
}

func (v *view) ListUserRequests(_ context.Context, userID string) ([]*models.Request, error) {
	return v.filterRequests(func(r *models.Request) bool { return r.UserID == userID }), nil
}

func (v *view) ListClaimedRequests(_ context.Context, userID string) ([]*models.Request, error) {
	return v.filterRequests(func(r *models.Request) bool { return r.ClaimedBy == userID }), nil
}

func (v *view) CreateRequest(_ context.Context, req *models.Request) error {
	if req.ID == "" {
		req.ID = newID()
	}
	if _, ok := v.d.requests[req.ID]; ok {
		return conflict("request exists")
	}
	v.d.requests[req.ID] = req.Clone()
	return nil
}

func (v *view) UpdateRequestIf(_ context.Context, req *models.Request, fromStatus models.RequestStatus, fromClaimer string) error {
	cur, ok := v.d.requests[req.ID]
	if !ok || cur.Status != fromStatus || cur.ClaimedBy != fromClaimer {
		return conflict("request changed concurrently")
	}
	next := req.Clone()
	// Identity fields are immutable.
	next.UserID = cur.UserID
	next.GroupID = cur.GroupID
	next.CreatedAt = cur.CreatedAt
	v.d.requests[req.ID] = next
	return nil
}

func (v *view) DeleteRequestIf(_ context.Context, requestID string, allowed ...models.RequestStatus) error {
	cur, ok := v.d.requests[requestID]
	if !ok {
		return conflict("request changed concurrently")
	}
	for _, s := range allowed {
		if cur.Status == s {
			delete(v.d.requests, requestID)
			return nil
		}
	}
	return conflict("request changed concurrently")
}

func (v *view) ExpireOpenRequests(_ context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	for id, r := range v.d.requests {
		if r.Status == models.StatusOpen && r.NeededBy.Before(cutoff) {
			r.Status = models.StatusExpired
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (v *view) GetLimits(_ context.Context, userID string) (*models.UserLimits, error) {
	l, ok := v.d.limits[userID]
	if !ok {
		return nil, notFound("limits")
	}
	return &l, nil
}

func (v *view) EnsureLimits(ctx context.Context, userID string, defaults models.LimitValues, now time.Time) (*models.UserLimits, error) {
	if _, ok := v.d.limits[userID]; !ok {
		v.d.limits[userID] = models.UserLimits{
			UserID:           userID,
			MaxOpenRequests:  defaults.MaxOpenRequests,
			MaxGroupsCreated: defaults.MaxGroupsCreated,
			MaxGroupsJoined:  defaults.MaxGroupsJoined,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}
	return v.GetLimits(ctx, userID)
}

func (v *view) SetLimits(_ context.Context, limits *models.UserLimits) error {
	if existing, ok := v.d.limits[limits.UserID]; ok {
		limits.CreatedAt = existing.CreatedAt
	}
	v.d.limits[limits.UserID] = *limits
	return nil
}

func (v *view) CountUsage(_ context.Context, userID string) (models.UsageCounts, error) {
	var counts models.UsageCounts
	for _, r := range v.d.requests {
		if r.UserID == userID && r.Status == models.StatusOpen {
			counts.OpenRequests++
		}
	}
	for _, g := range v.d.groups {
		if g.CreatedBy == userID {
			counts.GroupsCreated++
		}
	}
	for key := range v.d.members {
		if key.userID == userID {
			counts.GroupsJoined++
		}
	}
	return counts, nil
}
