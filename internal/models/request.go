package models

import "time"

// RequestStatus is the lifecycle state of a Request.
type RequestStatus string

const (
	StatusOpen      RequestStatus = "open"
	StatusClaimed   RequestStatus = "claimed"
	StatusFulfilled RequestStatus = "fulfilled"
	// StatusExpired is set only by the expiry sweep on open requests whose
	// NeededBy has passed.
	StatusExpired RequestStatus = "expired"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClaimed, StatusFulfilled, StatusExpired:
		return true
	}
	return false
}

// Request is an errand posted to a group.
//
// ClaimedBy and ClaimedAt are set together or not at all. They stay set after
// fulfillment as a historical record and are cleared on unclaim.
type Request struct {
	ID      string
	UserID  string
	GroupID string

	// ItemDescription says what is needed (e.g., "milk, 2%").
	ItemDescription string

	// StorePreference is optional (empty when absent).
	StorePreference string

	NeededBy time.Time

	// PickupNotes is optional (empty when absent).
	PickupNotes string

	Status      RequestStatus
	ClaimedBy   string
	ClaimedAt   *time.Time
	FulfilledAt *time.Time
	CreatedAt   time.Time
}

// Clone returns a deep copy so callers can mutate without aliasing the
// timestamps of the original.
func (r *Request) Clone() *Request {
	c := *r
	if r.ClaimedAt != nil {
		t := *r.ClaimedAt
		c.ClaimedAt = &t
	}
	if r.FulfilledAt != nil {
		t := *r.FulfilledAt
		c.FulfilledAt = &t
	}
	return &c
}
