package models

import (
	"strings"
	"time"
)

// User represents a registered member account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique, stored lower-cased).
	// Used for login and for matching invites to existing members.
	Email string

	// Name is the display name shown to other group members.
	Name string

	// Phone is an optional contact number shared with group members.
	Phone string

	// GeneralArea is a free-text neighborhood hint (e.g., "North side").
	GeneralArea string

	// IsAdmin grants access to administrative operations such as
	// adjusting another user's limits.
	IsAdmin bool

	// PasswordHash is the bcrypt hash used by the password authenticator.
	// Never exposed over the API.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a user with normalized email and fresh timestamps.
// The ID is assigned by the store.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Email:        NormalizeEmail(email),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail trims and lower-cases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
