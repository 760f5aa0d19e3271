package api

type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt int64  `json:"createdAt"`
}

type Member struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsOwner  bool   `json:"isOwner,omitempty"`
	JoinedAt int64  `json:"joinedAt"`
}

type Invite struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId"`
	Email     string `json:"email"`
	Token     string `json:"token,omitempty"`
	InvitedBy string `json:"invitedBy"`
	ExpiresAt int64  `json:"expiresAt"`
	CreatedAt int64  `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group   *Group    `json:"group"`
	Members []*Member `json:"members"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type ListMembersRequest struct {
	GroupID string `json:"groupId"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

type CreateInviteRequest struct {
	GroupID string `json:"groupId"`
	Email   string `json:"email"`
}

type CreateInviteResponse struct {
	Invite *Invite `json:"invite"`
}

type ListInvitesRequest struct {
	GroupID string `json:"groupId"`
}

type ListInvitesResponse struct {
	Invites []*Invite `json:"invites"`
}

type ValidateInviteRequest struct {
	Token string `json:"token"`
}

type ValidateInviteResponse struct {
	Group     *Group `json:"group"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expiresAt"`
}

type JoinGroupRequest struct {
	Token string `json:"token"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type DeclineInviteRequest struct {
	Token string `json:"token"`
}

type DeclineInviteResponse struct{}

type LeaveGroupRequest struct {
	GroupID string `json:"groupId"`
}

type LeaveGroupResponse struct {
	// GroupDeleted is set when the owner left as the last member.
	GroupDeleted bool `json:"groupDeleted"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type RemoveMemberResponse struct{}
