package models

import "time"

// Default per-user ceilings applied when a user's limits are first read.
const (
	DefaultMaxOpenRequests  = 5
	DefaultMaxGroupsCreated = 3
	DefaultMaxGroupsJoined  = 5
)

// UserLimits holds one user's configurable quota ceilings.
type UserLimits struct {
	UserID           string
	MaxOpenRequests  int
	MaxGroupsCreated int
	MaxGroupsJoined  int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LimitValues is the ceiling triple without ownership or timestamps.
type LimitValues struct {
	MaxOpenRequests  int `yaml:"max_open_requests"`
	MaxGroupsCreated int `yaml:"max_groups_created"`
	MaxGroupsJoined  int `yaml:"max_groups_joined"`
}

// DefaultLimitValues returns the built-in defaults (5, 3, 5).
func DefaultLimitValues() LimitValues {
	return LimitValues{
		MaxOpenRequests:  DefaultMaxOpenRequests,
		MaxGroupsCreated: DefaultMaxGroupsCreated,
		MaxGroupsJoined:  DefaultMaxGroupsJoined,
	}
}

// UsageCounts are derived from current store state on every call.
type UsageCounts struct {
	OpenRequests  int
	GroupsCreated int
	GroupsJoined  int
}

// Values returns the ceilings of l.
func (l *UserLimits) Values() LimitValues {
	return LimitValues{
		MaxOpenRequests:  l.MaxOpenRequests,
		MaxGroupsCreated: l.MaxGroupsCreated,
		MaxGroupsJoined:  l.MaxGroupsJoined,
	}
}
