// Package quota implements the per-user limits evaluator.
//
// Usage is never cached: every check recounts from the store, so a decision
// always reflects the rows as they are at that moment. Inside a transaction
// the check and the write that consumes the quota see the same snapshot.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/mutualaid/internal/apperr"
	"github.com/mmynk/mutualaid/internal/clock"
	"github.com/mmynk/mutualaid/internal/metrics"
	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
)

// Kind names one of the three per-user limits.
type Kind int

const (
	OpenRequests Kind = iota
	GroupsCreated
	GroupsJoined
)

func (k Kind) String() string {
	switch k {
	case OpenRequests:
		return "open requests"
	case GroupsCreated:
		return "groups created"
	case GroupsJoined:
		return "groups joined"
	default:
		return fmt.Sprintf("quota(%d)", int(k))
	}
}

// pick returns the count and ceiling that kind compares.
func (k Kind) pick(counts models.UsageCounts, limits *models.UserLimits) (count, max int) {
	switch k {
	case OpenRequests:
		return counts.OpenRequests, limits.MaxOpenRequests
	case GroupsCreated:
		return counts.GroupsCreated, limits.MaxGroupsCreated
	default:
		return counts.GroupsJoined, limits.MaxGroupsJoined
	}
}

// Usage is a user's counts next to their ceilings.
type Usage struct {
	Counts models.UsageCounts
	Limits *models.UserLimits
}

// Evaluator answers "can this user do X" questions against live store state.
type Evaluator struct {
	store    storage.Store
	defaults models.LimitValues
	clock    clock.Clock
	metrics  *metrics.Metrics
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithDefaults overrides the limits materialized on first access.
func WithDefaults(v models.LimitValues) Option {
	return func(e *Evaluator) { e.defaults = v }
}

func WithClock(c clock.Clock) Option {
	return func(e *Evaluator) { e.clock = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// New creates an Evaluator with the built-in defaults (5, 3, 5).
func New(store storage.Store, opts ...Option) *Evaluator {
	e := &Evaluator{
		store:    store,
		defaults: models.DefaultLimitValues(),
		clock:    clock.Real(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Defaults returns the limits new users receive.
func (e *Evaluator) Defaults() models.LimitValues {
	return e.defaults
}

// GetCounts recomputes the user's usage.
func (e *Evaluator) GetCounts(ctx context.Context, userID string) (models.UsageCounts, error) {
	counts, err := e.store.CountUsage(ctx, userID)
	if err != nil {
		return models.UsageCounts{}, fmt.Errorf("count usage: %w", err)
	}
	return counts, nil
}

// GetLimits returns the user's limits, creating the default row on first
// access. Later calls return the stored row unchanged.
func (e *Evaluator) GetLimits(ctx context.Context, userID string) (*models.UserLimits, error) {
	limits, err := e.store.GetLimits(ctx, userID)
	if err == nil {
		return limits, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get limits: %w", err)
	}

	err = e.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		limits, err = tx.EnsureLimits(ctx, userID, e.defaults, e.clock.Now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("materialize limits: %w", err)
	}
	slog.Debug("Default limits materialized", "user_id", userID)
	return limits, nil
}

// Usage returns counts and limits together.
func (e *Evaluator) Usage(ctx context.Context, userID string) (*Usage, error) {
	limits, err := e.GetLimits(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := e.GetCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Usage{Counts: counts, Limits: limits}, nil
}

func (e *Evaluator) can(ctx context.Context, userID string, kind Kind) (bool, error) {
	usage, err := e.Usage(ctx, userID)
	if err != nil {
		return false, err
	}
	count, max := kind.pick(usage.Counts, usage.Limits)
	return count < max, nil
}

// CanCreateRequest reports whether the user is below their open-request limit.
func (e *Evaluator) CanCreateRequest(ctx context.Context, userID string) (bool, error) {
	return e.can(ctx, userID, OpenRequests)
}

// CanCreateGroup reports whether the user is below their groups-created limit.
func (e *Evaluator) CanCreateGroup(ctx context.Context, userID string) (bool, error) {
	return e.can(ctx, userID, GroupsCreated)
}

// CanJoinGroup reports whether the user is below their groups-joined limit.
func (e *Evaluator) CanJoinGroup(ctx context.Context, userID string) (bool, error) {
	return e.can(ctx, userID, GroupsJoined)
}

// Require is the guard engines call inside their write transaction. It
// returns an apperr QuotaExceeded error naming the limit and current usage
// when count >= limit.
func (e *Evaluator) Require(ctx context.Context, tx storage.Tx, userID string, kind Kind) error {
	limits, err := tx.EnsureLimits(ctx, userID, e.defaults, e.clock.Now())
	if err != nil {
		return fmt.Errorf("load limits: %w", err)
	}
	counts, err := tx.CountUsage(ctx, userID)
	if err != nil {
		return fmt.Errorf("count usage: %w", err)
	}

	count, max := kind.pick(counts, limits)
	if count >= max {
		e.metrics.QuotaRejected(kind.String())
		slog.Info("Quota exceeded", "user_id", userID, "limit", kind.String(), "count", count, "max", max)
		return apperr.Quota(kind.String(), count, max)
	}
	return nil
}

// SetLimits lets an administrator change another user's ceilings.
func (e *Evaluator) SetLimits(ctx context.Context, callerID, targetUserID string, values models.LimitValues) (*models.UserLimits, error) {
	caller, err := e.store.GetUser(ctx, callerID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !caller.IsAdmin) {
		return nil, apperr.Forbidden("only administrators can change limits")
	}
	if err != nil {
		return nil, fmt.Errorf("get caller: %w", err)
	}

	if values.MaxOpenRequests < 0 || values.MaxGroupsCreated < 0 || values.MaxGroupsJoined < 0 {
		return nil, apperr.Validation("limits must not be negative")
	}

	if _, err := e.store.GetUser(ctx, targetUserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get target user: %w", err)
	}

	return e.ApplyLimits(ctx, targetUserID, values)
}

// ApplyLimits writes ceilings without an authorization check. It backs
// SetLimits and the admin CLI, which runs with database access.
func (e *Evaluator) ApplyLimits(ctx context.Context, userID string, values models.LimitValues) (*models.UserLimits, error) {
	var limits *models.UserLimits
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		now := e.clock.Now()
		current, err := tx.EnsureLimits(ctx, userID, e.defaults, now)
		if err != nil {
			return err
		}
		current.MaxOpenRequests = values.MaxOpenRequests
		current.MaxGroupsCreated = values.MaxGroupsCreated
		current.MaxGroupsJoined = values.MaxGroupsJoined
		current.UpdatedAt = now
		if err := tx.SetLimits(ctx, current); err != nil {
			return err
		}
		limits = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set limits: %w", err)
	}

	slog.Info("Limits updated",
		"user_id", userID,
		"max_open_requests", limits.MaxOpenRequests,
		"max_groups_created", limits.MaxGroupsCreated,
		"max_groups_joined", limits.MaxGroupsJoined,
	)
	return limits, nil
}
