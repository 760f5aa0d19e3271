package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
)

const requestColumns = `id, user_id, group_id, item_description, store_preference, needed_by,
	pickup_notes, status, claimed_by, claimed_at, fulfilled_at, created_at`

// CreateRequest persists a new request.
func (c *conn) CreateRequest(ctx context.Context, req *models.Request) error {
	if req.ID == "" {
		req.ID = newID()
	}

	_, err := c.exec(ctx,
		`INSERT INTO requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.UserID, req.GroupID, req.ItemDescription, req.StorePreference,
		toMillis(req.NeededBy), req.PickupNotes, string(req.Status),
		nullString(req.ClaimedBy), nullMillis(req.ClaimedAt), nullMillis(req.FulfilledAt),
		toMillis(req.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// GetRequest retrieves a request by ID.
func (c *conn) GetRequest(ctx context.Context, requestID string) (*models.Request, error) {
	reqs, err := c.listRequests(ctx, `WHERE id = ?`, requestID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("request %s: %w", requestID, storage.ErrNotFound)
	}
	return reqs[0], nil
}

// ListGroupRequests retrieves a group's requests, newest first.
func (c *conn) ListGroupRequests(ctx context.Context, groupID string) ([]*models.Request, error) {
	return c.listRequests(ctx, `WHERE group_id = ? ORDER BY created_at DESC, id DESC`, groupID)
}

// ListUserRequests retrieves the requests a user created, newest first.
func (c *conn) ListUserRequests(ctx context.Context, userID string) ([]*models.Request, error) {
	return c.listRequests(ctx, `WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// ListClaimedRequests retrieves the requests a user has claimed, newest first.
func (c *conn) ListClaimedRequests(ctx context.Context, userID string) ([]*models.Request, error) {
	return c.listRequests(ctx, `WHERE claimed_by = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (c *conn) listRequests(ctx context.Context, where string, args ...any) ([]*models.Request, error) {
	rows, err := c.query(ctx, `SELECT `+requestColumns+` FROM requests `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.Request
	for rows.Next() {
		r := &models.Request{}
		var status string
		var neededBy, createdAt int64
		var claimedBy sql.NullString
		var claimedAt, fulfilledAt sql.NullInt64
		if err := rows.Scan(&r.ID, &r.UserID, &r.GroupID, &r.ItemDescription, &r.StorePreference,
			&neededBy, &r.PickupNotes, &status, &claimedBy, &claimedAt, &fulfilledAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		r.Status = models.RequestStatus(status)
		r.NeededBy = fromMillis(neededBy)
		r.ClaimedBy = claimedBy.String
		r.ClaimedAt = fromNullMillis(claimedAt)
		r.FulfilledAt = fromNullMillis(fulfilledAt)
		r.CreatedAt = fromMillis(createdAt)
		reqs = append(reqs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return reqs, nil
}

// UpdateRequestIf is the compare-and-swap used by every status transition:
// the row is only written if its status and claimer are still what the
// caller read.
func (c *conn) UpdateRequestIf(ctx context.Context, req *models.Request, fromStatus models.RequestStatus, fromClaimer string) error {
	res, err := c.exec(ctx,
		`UPDATE requests
		 SET item_description = ?, store_preference = ?, needed_by = ?, pickup_notes = ?,
		     status = ?, claimed_by = ?, claimed_at = ?, fulfilled_at = ?
		 WHERE id = ? AND status = ? AND COALESCE(claimed_by, '') = ?`,
		req.ItemDescription, req.StorePreference, toMillis(req.NeededBy), req.PickupNotes,
		string(req.Status), nullString(req.ClaimedBy), nullMillis(req.ClaimedAt), nullMillis(req.FulfilledAt),
		req.ID, string(fromStatus), fromClaimer,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	return expectOne(res, fmt.Errorf("request %s changed concurrently: %w", req.ID, storage.ErrConflict))
}

// DeleteRequestIf removes a request whose status is one of allowed.
func (c *conn) DeleteRequestIf(ctx context.Context, requestID string, allowed ...models.RequestStatus) error {
	if len(allowed) == 0 {
		return fmt.Errorf("delete request: no allowed statuses: %w", storage.ErrConflict)
	}
	args := make([]any, 0, len(allowed)+1)
	args = append(args, requestID)
	for _, s := range allowed {
		args = append(args, string(s))
	}

	res, err := c.exec(ctx,
		`DELETE FROM requests WHERE id = ? AND status IN (`+inClause(len(allowed))+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return expectOne(res, fmt.Errorf("request %s changed concurrently: %w", requestID, storage.ErrConflict))
}

// ExpireOpenRequests flips overdue open requests to expired.
func (c *conn) ExpireOpenRequests(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := c.query(ctx,
		`UPDATE requests SET status = 'expired'
		 WHERE status = 'open' AND needed_by < ?
		 RETURNING id`,
		toMillis(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to expire requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expired id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expired ids: %w", err)
	}
	return ids, nil
}
