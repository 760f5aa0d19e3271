package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/internal/membership"
	"github.com/mmynk/mutualaid/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	members *membership.Manager
}

// NewGroupService creates a new GroupService over the membership manager.
func NewGroupService(members *membership.Manager) *GroupService {
	return &GroupService{members: members}
}

// CreateGroup creates a group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "user_id", userID, "name", req.Msg.Name)

	group, err := s.members.CreateGroup(ctx, userID, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup returns a group and its members to one of its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID, "user_id", userID)

	group, err := s.members.GetGroup(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	members, err := s.members.ListMembers(ctx, userID, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{
		Group:   toAPIGroup(group),
		Members: toAPIMembers(group.CreatedBy, members),
	}), nil
}

// ListGroups lists the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.members.GetUserGroups(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: toAPIGroups(groups)}), nil
}

// ListMembers lists a group's members.
func (s *GroupService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.members.GetGroup(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	members, err := s.members.ListMembers(ctx, userID, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListMembersResponse{Members: toAPIMembers(group.CreatedBy, members)}), nil
}

// CreateInvite issues an invite. Owner only.
func (s *GroupService) CreateInvite(ctx context.Context, req *connect.Request[api.CreateInviteRequest]) (*connect.Response[api.CreateInviteResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateInvite request received", "group_id", req.Msg.GroupID, "user_id", userID)

	invite, err := s.members.CreateInvite(ctx, req.Msg.GroupID, userID, req.Msg.Email)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateInviteResponse{Invite: toAPIInvite(invite)}), nil
}

// ListInvites lists redeemable invites. Owner only.
func (s *GroupService) ListInvites(ctx context.Context, req *connect.Request[api.ListInvitesRequest]) (*connect.Response[api.ListInvitesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	invites, err := s.members.ListInvites(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Invite, len(invites))
	for i, inv := range invites {
		out[i] = toAPIInvite(inv)
	}
	return connect.NewResponse(&api.ListInvitesResponse{Invites: out}), nil
}

// ValidateInvite previews an invite. It does not require authentication so
// an invitee can see the group before signing up.
func (s *GroupService) ValidateInvite(ctx context.Context, req *connect.Request[api.ValidateInviteRequest]) (*connect.Response[api.ValidateInviteResponse], error) {
	slog.Info("ValidateInvite request received")

	group, invite, err := s.members.ValidateInvite(ctx, req.Msg.Token)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ValidateInviteResponse{
		Group:     toAPIGroup(group),
		Email:     invite.Email,
		ExpiresAt: millis(invite.ExpiresAt),
	}), nil
}

// JoinGroup redeems an invite token for the caller.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinGroup request received", "user_id", userID)

	group, err := s.members.JoinGroup(ctx, req.Msg.Token, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.JoinGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeclineInvite closes an invite without joining.
func (s *GroupService) DeclineInvite(ctx context.Context, req *connect.Request[api.DeclineInviteRequest]) (*connect.Response[api.DeclineInviteResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeclineInvite request received", "user_id", userID)

	if err := s.members.DeclineInvite(ctx, req.Msg.Token); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.DeclineInviteResponse{}), nil
}

// LeaveGroup removes the caller from a group.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("LeaveGroup request received", "group_id", req.Msg.GroupID, "user_id", userID)

	deleted, err := s.members.LeaveGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.LeaveGroupResponse{GroupDeleted: deleted}), nil
}

// RemoveMember removes another member. Owner only.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "user_id", userID, "target_id", req.Msg.UserID)

	if err := s.members.RemoveMember(ctx, req.Msg.GroupID, userID, req.Msg.UserID); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}
