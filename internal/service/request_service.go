package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/internal/requests"
	"github.com/mmynk/mutualaid/pkg/api"
)

// RequestService implements the Connect RequestService.
type RequestService struct {
	engine *requests.Engine
}

// NewRequestService creates a new RequestService over the lifecycle engine.
func NewRequestService(engine *requests.Engine) *RequestService {
	return &RequestService{engine: engine}
}

// CreateRequest posts an errand to one of the caller's groups.
func (s *RequestService) CreateRequest(ctx context.Context, req *connect.Request[api.CreateRequestRequest]) (*connect.Response[api.CreateRequestResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateRequest request received", "group_id", req.Msg.GroupID, "user_id", userID)

	created, err := s.engine.Create(ctx, userID, requests.NewRequest{
		GroupID:         req.Msg.GroupID,
		ItemDescription: req.Msg.ItemDescription,
		StorePreference: req.Msg.StorePreference,
		NeededBy:        fromMillis(req.Msg.NeededBy),
		PickupNotes:     req.Msg.PickupNotes,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateRequestResponse{Request: toAPIRequest(created)}), nil
}

// UpdateRequest edits an open request. Creator only.
func (s *RequestService) UpdateRequest(ctx context.Context, req *connect.Request[api.UpdateRequestRequest]) (*connect.Response[api.UpdateRequestResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateRequest request received", "request_id", req.Msg.RequestID, "user_id", userID)

	updated, err := s.engine.Update(ctx, req.Msg.RequestID, userID, requests.RequestEdit{
		ItemDescription: req.Msg.ItemDescription,
		StorePreference: req.Msg.StorePreference,
		NeededBy:        fromMillis(req.Msg.NeededBy),
		PickupNotes:     req.Msg.PickupNotes,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.UpdateRequestResponse{Request: toAPIRequest(updated)}), nil
}

// GetRequest returns one request.
func (s *RequestService) GetRequest(ctx context.Context, req *connect.Request[api.GetRequestRequest]) (*connect.Response[api.GetRequestResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	got, err := s.engine.Get(ctx, userID, req.Msg.RequestID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetRequestResponse{Request: toAPIRequest(got)}), nil
}

// ListGroupRequests lists a group's requests, newest first.
func (s *RequestService) ListGroupRequests(ctx context.Context, req *connect.Request[api.ListGroupRequestsRequest]) (*connect.Response[api.ListGroupRequestsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroupRequests request received", "group_id", req.Msg.GroupID, "user_id", userID)

	reqs, err := s.engine.ListGroupRequests(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListGroupRequestsResponse{Requests: toAPIRequests(reqs)}), nil
}

// ListMyRequests lists requests the caller created.
func (s *RequestService) ListMyRequests(ctx context.Context, req *connect.Request[api.ListMyRequestsRequest]) (*connect.Response[api.ListMyRequestsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	reqs, err := s.engine.ListUserRequests(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListMyRequestsResponse{Requests: toAPIRequests(reqs)}), nil
}

// ListMyClaims lists requests the caller claimed.
func (s *RequestService) ListMyClaims(ctx context.Context, req *connect.Request[api.ListMyClaimsRequest]) (*connect.Response[api.ListMyClaimsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	reqs, err := s.engine.ListClaimedBy(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListMyClaimsResponse{Requests: toAPIRequests(reqs)}), nil
}

// ClaimRequest takes responsibility for an open request.
func (s *RequestService) ClaimRequest(ctx context.Context, req *connect.Request[api.ClaimRequestRequest]) (*connect.Response[api.ClaimRequestResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ClaimRequest request received", "request_id", req.Msg.RequestID, "user_id", userID)

	claimed, err := s.engine.Claim(ctx, req.Msg.RequestID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ClaimRequestResponse{Request: toAPIRequest(claimed)}), nil
}

// UnclaimRequest releases the caller's claim.
func (s *RequestService) UnclaimRequest(ctx context.Context, req *connect.Request[api.UnclaimRequestRequest]) (*connect.Response[api.UnclaimRequestResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UnclaimRequest request received", "request_id", req.Msg.RequestID, "user_id", userID)

	opened, err := s.engine.Unclaim(ctx, req.Msg.RequestID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.UnclaimRequestResponse{Request: toAPIRequest(opened)}), nil
}

// FulfillRequest marks the caller's claimed request as done.
func (s *RequestService) FulfillRequest(ctx context.Context, req *connect.Request[api.FulfillRequestRequest]) (*connect.Response[api.FulfillRequestResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("FulfillRequest request received", "request_id", req.Msg.RequestID, "user_id", userID)

	done, err := s.engine.Fulfill(ctx, req.Msg.RequestID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.FulfillRequestResponse{Request: toAPIRequest(done)}), nil
}

// DeleteRequest removes one of the caller's unfulfilled requests.
func (s *RequestService) DeleteRequest(ctx context.Context, req *connect.Request[api.DeleteRequestRequest]) (*connect.Response[api.DeleteRequestResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteRequest request received", "request_id", req.Msg.RequestID, "user_id", userID)

	removed, err := s.engine.Delete(ctx, req.Msg.RequestID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.DeleteRequestResponse{Request: toAPIRequest(removed)}), nil
}
