package models

import "time"

// Group represents an invitation-only circle of members.
// The creator owns the group and is always a member while it exists.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Neighbors", "Elm Street").
	Name string

	// CreatedBy is the user ID of the owner.
	CreatedBy string

	CreatedAt time.Time
}

// IsOwner reports whether userID owns the group.
func (g *Group) IsOwner(userID string) bool {
	return g.CreatedBy == userID
}

// GroupMember links a user to a group. (GroupID, UserID) is unique.
type GroupMember struct {
	GroupID  string
	UserID   string
	JoinedAt time.Time
}

// MemberProfile is a membership joined with the user's display fields,
// used when listing who is in a group.
type MemberProfile struct {
	GroupMember
	Name  string
	Email string
}
