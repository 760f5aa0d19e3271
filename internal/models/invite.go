package models

import "time"

// Invite grants one-time permission to join a group.
// Once UsedAt is set (redeemed or declined) the invite can never be used again.
type Invite struct {
	ID      string
	GroupID string

	// Email is the address the invite was sent to.
	Email string

	// Token is the unguessable credential handed to the invitee.
	Token string

	// InvitedBy is the user ID of the owner who issued the invite.
	InvitedBy string

	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the invite is unused and not yet expired at now.
func (i *Invite) Usable(now time.Time) bool {
	return i.UsedAt == nil && !now.After(i.ExpiresAt)
}
