package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/quota"
	"github.com/mmynk/mutualaid/pkg/api"
)

// LimitsService implements the Connect LimitsService.
type LimitsService struct {
	quota *quota.Evaluator
}

func NewLimitsService(q *quota.Evaluator) *LimitsService {
	return &LimitsService{quota: q}
}

// GetMyUsage reports the caller's live counts and ceilings.
func (s *LimitsService) GetMyUsage(ctx context.Context, req *connect.Request[api.GetMyUsageRequest]) (*connect.Response[api.GetMyUsageResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	usage, err := s.quota.Usage(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetMyUsageResponse{Usage: toAPIUsage(usage)}), nil
}

// SetUserLimits changes another user's ceilings. Admin only.
func (s *LimitsService) SetUserLimits(ctx context.Context, req *connect.Request[api.SetUserLimitsRequest]) (*connect.Response[api.SetUserLimitsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SetUserLimits request received", "user_id", userID, "target_id", req.Msg.UserID)

	limits, err := s.quota.SetLimits(ctx, userID, req.Msg.UserID, models.LimitValues{
		MaxOpenRequests:  req.Msg.MaxOpenRequests,
		MaxGroupsCreated: req.Msg.MaxGroupsCreated,
		MaxGroupsJoined:  req.Msg.MaxGroupsJoined,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.SetUserLimitsResponse{Limits: toAPILimits(limits)}), nil
}
