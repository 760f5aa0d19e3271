package api

type Limits struct {
	UserID           string `json:"userId"`
	MaxOpenRequests  int    `json:"maxOpenRequests"`
	MaxGroupsCreated int    `json:"maxGroupsCreated"`
	MaxGroupsJoined  int    `json:"maxGroupsJoined"`
	UpdatedAt        int64  `json:"updatedAt"`
}

// Usage pairs the caller's live counts with their ceilings.
type Usage struct {
	OpenRequests  int     `json:"openRequests"`
	GroupsCreated int     `json:"groupsCreated"`
	GroupsJoined  int     `json:"groupsJoined"`
	Limits        *Limits `json:"limits"`
}

type GetMyUsageRequest struct{}

type GetMyUsageResponse struct {
	Usage *Usage `json:"usage"`
}

// SetUserLimitsRequest is admin only.
type SetUserLimitsRequest struct {
	UserID           string `json:"userId"`
	MaxOpenRequests  int    `json:"maxOpenRequests"`
	MaxGroupsCreated int    `json:"maxGroupsCreated"`
	MaxGroupsJoined  int    `json:"maxGroupsJoined"`
}

type SetUserLimitsResponse struct {
	Limits *Limits `json:"limits"`
}
