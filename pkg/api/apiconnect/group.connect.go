package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "mutualaid.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure    = "/mutualaid.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure       = "/mutualaid.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure     = "/mutualaid.v1.GroupService/ListGroups"
	GroupServiceListMembersProcedure    = "/mutualaid.v1.GroupService/ListMembers"
	GroupServiceCreateInviteProcedure   = "/mutualaid.v1.GroupService/CreateInvite"
	GroupServiceListInvitesProcedure    = "/mutualaid.v1.GroupService/ListInvites"
	GroupServiceValidateInviteProcedure = "/mutualaid.v1.GroupService/ValidateInvite"
	GroupServiceJoinGroupProcedure      = "/mutualaid.v1.GroupService/JoinGroup"
	GroupServiceDeclineInviteProcedure  = "/mutualaid.v1.GroupService/DeclineInvite"
	GroupServiceLeaveGroupProcedure     = "/mutualaid.v1.GroupService/LeaveGroup"
	GroupServiceRemoveMemberProcedure   = "/mutualaid.v1.GroupService/RemoveMember"
)

// GroupServiceHandler is the server side of the GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	CreateInvite(context.Context, *connect.Request[api.CreateInviteRequest]) (*connect.Response[api.CreateInviteResponse], error)
	ListInvites(context.Context, *connect.Request[api.ListInvitesRequest]) (*connect.Response[api.ListInvitesResponse], error)
	ValidateInvite(context.Context, *connect.Request[api.ValidateInviteRequest]) (*connect.Response[api.ValidateInviteResponse], error)
	JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error)
	DeclineInvite(context.Context, *connect.Request[api.DeclineInviteRequest]) (*connect.Response[api.DeclineInviteResponse], error)
	LeaveGroup(context.Context, *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on. The api JSON codec is always installed.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return "/" + GroupServiceName + "/", router{
		GroupServiceCreateGroupProcedure:    connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceGetGroupProcedure:       connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceListGroupsProcedure:     connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
		GroupServiceListMembersProcedure:    connect.NewUnaryHandler(GroupServiceListMembersProcedure, svc.ListMembers, opts...),
		GroupServiceCreateInviteProcedure:   connect.NewUnaryHandler(GroupServiceCreateInviteProcedure, svc.CreateInvite, opts...),
		GroupServiceListInvitesProcedure:    connect.NewUnaryHandler(GroupServiceListInvitesProcedure, svc.ListInvites, opts...),
		GroupServiceValidateInviteProcedure: connect.NewUnaryHandler(GroupServiceValidateInviteProcedure, svc.ValidateInvite, opts...),
		GroupServiceJoinGroupProcedure:      connect.NewUnaryHandler(GroupServiceJoinGroupProcedure, svc.JoinGroup, opts...),
		GroupServiceDeclineInviteProcedure:  connect.NewUnaryHandler(GroupServiceDeclineInviteProcedure, svc.DeclineInvite, opts...),
		GroupServiceLeaveGroupProcedure:     connect.NewUnaryHandler(GroupServiceLeaveGroupProcedure, svc.LeaveGroup, opts...),
		GroupServiceRemoveMemberProcedure:   connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...),
	}
}

// GroupServiceClient is the client side of the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	CreateInvite(context.Context, *connect.Request[api.CreateInviteRequest]) (*connect.Response[api.CreateInviteResponse], error)
	ListInvites(context.Context, *connect.Request[api.ListInvitesRequest]) (*connect.Response[api.ListInvitesResponse], error)
	ValidateInvite(context.Context, *connect.Request[api.ValidateInviteRequest]) (*connect.Response[api.ValidateInviteResponse], error)
	JoinGroup(context.Context, *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error)
	DeclineInvite(context.Context, *connect.Request[api.DeclineInviteRequest]) (*connect.Response[api.DeclineInviteResponse], error)
	LeaveGroup(context.Context, *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
}

// NewGroupServiceClient calls the GroupService at baseURL, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &groupServiceClient{
		createGroup:    connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:       connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:     connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		listMembers:    connect.NewClient[api.ListMembersRequest, api.ListMembersResponse](httpClient, baseURL+GroupServiceListMembersProcedure, opts...),
		createInvite:   connect.NewClient[api.CreateInviteRequest, api.CreateInviteResponse](httpClient, baseURL+GroupServiceCreateInviteProcedure, opts...),
		listInvites:    connect.NewClient[api.ListInvitesRequest, api.ListInvitesResponse](httpClient, baseURL+GroupServiceListInvitesProcedure, opts...),
		validateInvite: connect.NewClient[api.ValidateInviteRequest, api.ValidateInviteResponse](httpClient, baseURL+GroupServiceValidateInviteProcedure, opts...),
		joinGroup:      connect.NewClient[api.JoinGroupRequest, api.JoinGroupResponse](httpClient, baseURL+GroupServiceJoinGroupProcedure, opts...),
		declineInvite:  connect.NewClient[api.DeclineInviteRequest, api.DeclineInviteResponse](httpClient, baseURL+GroupServiceDeclineInviteProcedure, opts...),
		leaveGroup:     connect.NewClient[api.LeaveGroupRequest, api.LeaveGroupResponse](httpClient, baseURL+GroupServiceLeaveGroupProcedure, opts...),
		removeMember:   connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup    *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup       *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups     *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	listMembers    *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
	createInvite   *connect.Client[api.CreateInviteRequest, api.CreateInviteResponse]
	listInvites    *connect.Client[api.ListInvitesRequest, api.ListInvitesResponse]
	validateInvite *connect.Client[api.ValidateInviteRequest, api.ValidateInviteResponse]
	joinGroup      *connect.Client[api.JoinGroupRequest, api.JoinGroupResponse]
	declineInvite  *connect.Client[api.DeclineInviteRequest, api.DeclineInviteResponse]
	leaveGroup     *connect.Client[api.LeaveGroupRequest, api.LeaveGroupResponse]
	removeMember   *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *groupServiceClient) CreateInvite(ctx context.Context, req *connect.Request[api.CreateInviteRequest]) (*connect.Response[api.CreateInviteResponse], error) {
	return c.createInvite.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListInvites(ctx context.Context, req *connect.Request[api.ListInvitesRequest]) (*connect.Response[api.ListInvitesResponse], error) {
	return c.listInvites.CallUnary(ctx, req)
}

func (c *groupServiceClient) ValidateInvite(ctx context.Context, req *connect.Request[api.ValidateInviteRequest]) (*connect.Response[api.ValidateInviteResponse], error) {
	return c.validateInvite.CallUnary(ctx, req)
}

func (c *groupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeclineInvite(ctx context.Context, req *connect.Request[api.DeclineInviteRequest]) (*connect.Response[api.DeclineInviteResponse], error) {
	return c.declineInvite.CallUnary(ctx, req)
}

func (c *groupServiceClient) LeaveGroup(ctx context.Context, req *connect.Request[api.LeaveGroupRequest]) (*connect.Response[api.LeaveGroupResponse], error) {
	return c.leaveGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}
