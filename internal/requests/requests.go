// Package requests implements the Request Lifecycle Engine.
//
//	open -> claimed -> fulfilled
//	claimed -> open (unclaim)
//	open | claimed | expired -> removed (delete, creator only)
//
// Requests become expired only through ExpireOverdue. Every transition is a
// conditional update on the current status (and claimer), so two members
// racing for the same request cannot both win.
package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/mutualaid/internal/apperr"
	"github.com/mmynk/mutualaid/internal/clock"
	"github.com/mmynk/mutualaid/internal/membership"
	"github.com/mmynk/mutualaid/internal/metrics"
	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/notify"
	"github.com/mmynk/mutualaid/internal/quota"
	"github.com/mmynk/mutualaid/internal/sanitize"
	"github.com/mmynk/mutualaid/internal/storage"
)

const (
	// CreateGrace tolerates clock skew between client and server when
	// checking that NeededBy is in the future.
	CreateGrace = 5 * time.Second

	// MaxTextLength bounds each free-text field, in characters.
	MaxTextLength = 500
)

// NewRequest carries the caller-supplied fields of a request.
type NewRequest struct {
	GroupID         string
	ItemDescription string
	StorePreference string
	NeededBy        time.Time
	PickupNotes     string
}

// RequestEdit replaces the editable fields of an open request.
type RequestEdit struct {
	ItemDescription string
	StorePreference string
	NeededBy        time.Time
	PickupNotes     string
}

// Engine drives requests through their lifecycle.
type Engine struct {
	store    storage.Store
	quota    *quota.Evaluator
	members  *membership.Manager
	clock    clock.Clock
	notifier notify.Notifier
	metrics  *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine.
func New(store storage.Store, q *quota.Evaluator, members *membership.Manager, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		quota:    q,
		members:  members,
		clock:    clock.Real(),
		notifier: notify.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type fields struct {
	description string
	store       string
	notes       string
	neededBy    time.Time
}

func (e *Engine) validate(description, storePref, notes string, neededBy time.Time) (fields, error) {
	f := fields{
		description: sanitize.Text(description),
		store:       sanitize.Text(storePref),
		notes:       sanitize.Text(notes),
		neededBy:    neededBy.UTC(),
	}
	if f.description == "" {
		return f, apperr.Validation("item description is required")
	}
	for name, v := range map[string]string{
		"item description": f.description,
		"store preference": f.store,
		"pickup notes":     f.notes,
	} {
		if sanitize.Length(v) > MaxTextLength {
			return f, apperr.Validation("%s must be at most %d characters", name, MaxTextLength)
		}
	}
	if !neededBy.After(e.clock.Now().Add(-CreateGrace)) {
		return f, apperr.Validation("needed-by time must be in the future")
	}
	return f, nil
}

// Create posts a new open request to a group the creator belongs to.
func (e *Engine) Create(ctx context.Context, creatorID string, in NewRequest) (*models.Request, error) {
	var req *models.Request
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := e.quota.Require(ctx, tx, creatorID, quota.OpenRequests); err != nil {
			return err
		}
		f, err := e.validate(in.ItemDescription, in.StorePreference, in.PickupNotes, in.NeededBy)
		if err != nil {
			return err
		}
		if err := e.members.RequireMember(ctx, tx, in.GroupID, creatorID); err != nil {
			return err
		}

		req = &models.Request{
			UserID:          creatorID,
			GroupID:         in.GroupID,
			ItemDescription: f.description,
			StorePreference: f.store,
			NeededBy:        f.neededBy,
			PickupNotes:     f.notes,
			Status:          models.StatusOpen,
			CreatedAt:       e.clock.Now(),
		}
		return tx.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Request created", "request_id", req.ID, "group_id", req.GroupID, "user_id", creatorID)
	e.metrics.Transition("create")
	e.emit(ctx, notify.RequestCreated, req, creatorID, e.otherMembers(ctx, req.GroupID, creatorID))
	return req, nil
}

// Claim assigns an open request to claimerID.
func (e *Engine) Claim(ctx context.Context, requestID, claimerID string) (*models.Request, error) {
	var next *models.Request
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		cur, err := getRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if cur.UserID == claimerID {
			return apperr.Forbidden("you cannot claim your own request")
		}
		if cur.Status != models.StatusOpen {
			return notClaimable()
		}
		if err := e.members.RequireMember(ctx, tx, cur.GroupID, claimerID); err != nil {
			return err
		}

		now := e.clock.Now()
		next = cur.Clone()
		next.Status = models.StatusClaimed
		next.ClaimedBy = claimerID
		next.ClaimedAt = &now
		return translateConflict(tx.UpdateRequestIf(ctx, next, models.StatusOpen, ""), notClaimable)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Request claimed", "request_id", requestID, "user_id", claimerID)
	e.metrics.Transition("claim")
	e.emit(ctx, notify.RequestClaimed, next, claimerID, []string{next.UserID})
	return next, nil
}

// Unclaim hands a claimed request back to the group.
func (e *Engine) Unclaim(ctx context.Context, requestID, callerID string) (*models.Request, error) {
	next, err := e.claimerTransition(ctx, requestID, callerID, "unclaim", func(r *models.Request, _ time.Time) {
		r.Status = models.StatusOpen
		r.ClaimedBy = ""
		r.ClaimedAt = nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Request unclaimed", "request_id", requestID, "user_id", callerID)
	e.metrics.Transition("unclaim")
	return next, nil
}

// Fulfill marks a claimed request as done. Claim fields are kept.
func (e *Engine) Fulfill(ctx context.Context, requestID, callerID string) (*models.Request, error) {
	next, err := e.claimerTransition(ctx, requestID, callerID, "fulfill", func(r *models.Request, now time.Time) {
		r.Status = models.StatusFulfilled
		r.FulfilledAt = &now
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Request fulfilled", "request_id", requestID, "user_id", callerID)
	e.metrics.Transition("fulfill")
	e.emit(ctx, notify.RequestFulfilled, next, callerID, []string{next.UserID})
	return next, nil
}

// claimerTransition applies change to a request that callerID currently has
// claimed.
func (e *Engine) claimerTransition(ctx context.Context, requestID, callerID, verb string, change func(*models.Request, time.Time)) (*models.Request, error) {
	var next *models.Request
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		cur, err := getRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if cur.Status != models.StatusClaimed {
			return notClaimed()
		}
		if cur.ClaimedBy != callerID {
			return apperr.Forbidden("only the member who claimed this request can %s it", verb)
		}

		next = cur.Clone()
		change(next, e.clock.Now())
		return translateConflict(tx.UpdateRequestIf(ctx, next, models.StatusClaimed, callerID), notClaimed)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Delete removes a request that has not been fulfilled. It returns the
// request as it was before removal.
func (e *Engine) Delete(ctx context.Context, requestID, callerID string) (*models.Request, error) {
	var removed *models.Request
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		cur, err := getRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if cur.UserID != callerID {
			return apperr.Forbidden("only the creator can delete this request")
		}
		if cur.Status == models.StatusFulfilled {
			return fulfilledImmutable()
		}

		removed = cur
		err = tx.DeleteRequestIf(ctx, requestID, models.StatusOpen, models.StatusClaimed, models.StatusExpired)
		return translateConflict(err, fulfilledImmutable)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Request deleted", "request_id", requestID, "user_id", callerID)
	e.metrics.Transition("delete")
	return removed, nil
}

// Update edits an open request. Only the creator may edit, and only before
// anyone has claimed it.
func (e *Engine) Update(ctx context.Context, requestID, callerID string, edit RequestEdit) (*models.Request, error) {
	var next *models.Request
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		cur, err := getRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if cur.UserID != callerID {
			return apperr.Forbidden("only the creator can edit this request")
		}
		if cur.Status != models.StatusOpen {
			return notEditable()
		}
		f, err := e.validate(edit.ItemDescription, edit.StorePreference, edit.PickupNotes, edit.NeededBy)
		if err != nil {
			return err
		}

		next = cur.Clone()
		next.ItemDescription = f.description
		next.StorePreference = f.store
		next.PickupNotes = f.notes
		next.NeededBy = f.neededBy
		return translateConflict(tx.UpdateRequestIf(ctx, next, models.StatusOpen, ""), notEditable)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Request updated", "request_id", requestID, "user_id", callerID)
	e.metrics.Transition("update")
	return next, nil
}

// Get returns a request to a member of its group. The creator and the
// claimer can still see it after leaving the group.
func (e *Engine) Get(ctx context.Context, callerID, requestID string) (*models.Request, error) {
	req, err := getRequest(ctx, e.store, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID == callerID || req.ClaimedBy == callerID {
		return req, nil
	}
	if err := e.members.RequireMember(ctx, e.store, req.GroupID, callerID); err != nil {
		return nil, err
	}
	return req, nil
}

// ListGroupRequests lists every request in a group, newest first.
func (e *Engine) ListGroupRequests(ctx context.Context, callerID, groupID string) ([]*models.Request, error) {
	if err := e.members.RequireMember(ctx, e.store, groupID, callerID); err != nil {
		return nil, err
	}
	reqs, err := e.store.ListGroupRequests(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group requests: %w", err)
	}
	return reqs, nil
}

// ListUserRequests lists the requests userID created, newest first.
func (e *Engine) ListUserRequests(ctx context.Context, userID string) ([]*models.Request, error) {
	reqs, err := e.store.ListUserRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}
	return reqs, nil
}

// ListClaimedBy lists the requests userID has claimed, fulfilled ones
// included, newest first.
func (e *Engine) ListClaimedBy(ctx context.Context, userID string) ([]*models.Request, error) {
	reqs, err := e.store.ListClaimedRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list claimed requests: %w", err)
	}
	return reqs, nil
}

// ExpireOverdue marks open requests whose NeededBy has passed as expired
// and returns how many changed. Claimed requests are left for the claimer
// to fulfill.
func (e *Engine) ExpireOverdue(ctx context.Context) (int, error) {
	var ids []string
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		ids, err = tx.ExpireOpenRequests(ctx, e.clock.Now())
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("expire overdue requests: %w", err)
	}

	if len(ids) > 0 {
		slog.Info("Expired overdue requests", "count", len(ids))
		e.metrics.Expired(len(ids))
	}
	return len(ids), nil
}

func (e *Engine) otherMembers(ctx context.Context, groupID, exclude string) []string {
	members, err := e.store.ListMembers(ctx, groupID)
	if err != nil {
		slog.Warn("Failed to list members for notification", "group_id", groupID, "error", err)
		return nil
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.UserID != exclude {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

func (e *Engine) emit(ctx context.Context, kind notify.Kind, req *models.Request, actorID string, recipients []string) {
	ev := notify.NewEvent(kind, e.clock.Now())
	ev.GroupID = req.GroupID
	ev.RequestID = req.ID
	ev.ActorID = actorID
	ev.Recipients = recipients
	notify.Emit(ctx, e.notifier, ev)
}

func getRequest(ctx context.Context, r storage.Reader, requestID string) (*models.Request, error) {
	req, err := r.GetRequest(ctx, requestID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// translateConflict maps a failed conditional write to the error the caller
// would have seen had it lost the race a moment earlier.
func translateConflict(err error, lost func() error) error {
	if errors.Is(err, storage.ErrConflict) {
		return lost()
	}
	return err
}

func notClaimable() error {
	return apperr.Conflict("request is not available for claiming")
}

func notClaimed() error {
	return apperr.Conflict("request is not claimed")
}

func notEditable() error {
	return apperr.Conflict("only open requests can be edited")
}

func fulfilledImmutable() error {
	return apperr.Conflict("cannot delete a fulfilled request")
}
