package service

import (
	"time"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/quota"
	"github.com/mmynk/mutualaid/pkg/api"
)

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func millisPtr(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return millis(*t)
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		GeneralArea: u.GeneralArea,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   millis(u.CreatedAt),
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		OwnerID:   g.CreatedBy,
		CreatedAt: millis(g.CreatedAt),
	}
}

func toAPIGroups(groups []*models.Group) []*api.Group {
	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	return out
}

func toAPIMembers(ownerID string, members []*models.MemberProfile) []*api.Member {
	out := make([]*api.Member, len(members))
	for i, m := range members {
		out[i] = &api.Member{
			UserID:   m.UserID,
			Name:     m.Name,
			Email:    m.Email,
			IsOwner:  m.UserID == ownerID,
			JoinedAt: millis(m.JoinedAt),
		}
	}
	return out
}

func toAPIInvite(inv *models.Invite) *api.Invite {
	return &api.Invite{
		ID:        inv.ID,
		GroupID:   inv.GroupID,
		Email:     inv.Email,
		Token:     inv.Token,
		InvitedBy: inv.InvitedBy,
		ExpiresAt: millis(inv.ExpiresAt),
		CreatedAt: millis(inv.CreatedAt),
	}
}

func toAPIRequest(r *models.Request) *api.Request {
	return &api.Request{
		ID:              r.ID,
		UserID:          r.UserID,
		GroupID:         r.GroupID,
		ItemDescription: r.ItemDescription,
		StorePreference: r.StorePreference,
		NeededBy:        millis(r.NeededBy),
		PickupNotes:     r.PickupNotes,
		Status:          string(r.Status),
		ClaimedBy:       r.ClaimedBy,
		ClaimedAt:       millisPtr(r.ClaimedAt),
		FulfilledAt:     millisPtr(r.FulfilledAt),
		CreatedAt:       millis(r.CreatedAt),
	}
}

func toAPIRequests(reqs []*models.Request) []*api.Request {
	out := make([]*api.Request, len(reqs))
	for i, r := range reqs {
		out[i] = toAPIRequest(r)
	}
	return out
}

func toAPILimits(l *models.UserLimits) *api.Limits {
	return &api.Limits{
		UserID:           l.UserID,
		MaxOpenRequests:  l.MaxOpenRequests,
		MaxGroupsCreated: l.MaxGroupsCreated,
		MaxGroupsJoined:  l.MaxGroupsJoined,
		UpdatedAt:        millis(l.UpdatedAt),
	}
}

func toAPIUsage(u *quota.Usage) *api.Usage {
	return &api.Usage{
		OpenRequests:  u.Counts.OpenRequests,
		GroupsCreated: u.Counts.GroupsCreated,
		GroupsJoined:  u.Counts.GroupsJoined,
		Limits:        toAPILimits(u.Limits),
	}
}
