package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
)

const limitsColumns = `user_id, max_open_requests, max_groups_created, max_groups_joined, created_at, updated_at`

// GetLimits retrieves a user's limits row.
func (c *conn) GetLimits(ctx context.Context, userID string) (*models.UserLimits, error) {
	return c.scanLimits(c.queryRow(ctx, `SELECT `+limitsColumns+` FROM user_limits WHERE user_id = ?`, userID))
}

// EnsureLimits inserts default limits on first access and returns the row,
// locked on PostgreSQL so quota-consuming writes of one user serialize.
func (c *conn) EnsureLimits(ctx context.Context, userID string, defaults models.LimitValues, now time.Time) (*models.UserLimits, error) {
	_, err := c.exec(ctx,
		`INSERT INTO user_limits (`+limitsColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, defaults.MaxOpenRequests, defaults.MaxGroupsCreated, defaults.MaxGroupsJoined,
		toMillis(now), toMillis(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert default limits: %w", err)
	}

	return c.scanLimits(c.queryRow(ctx,
		`SELECT `+limitsColumns+` FROM user_limits WHERE user_id = ?`+c.dialect.forUpdate(),
		userID,
	))
}

// SetLimits upserts a user's limits.
func (c *conn) SetLimits(ctx context.Context, limits *models.UserLimits) error {
	_, err := c.exec(ctx,
		`INSERT INTO user_limits (`+limitsColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     max_open_requests = excluded.max_open_requests,
		     max_groups_created = excluded.max_groups_created,
		     max_groups_joined = excluded.max_groups_joined,
		     updated_at = excluded.updated_at`,
		limits.UserID, limits.MaxOpenRequests, limits.MaxGroupsCreated, limits.MaxGroupsJoined,
		toMillis(limits.CreatedAt), toMillis(limits.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to set limits: %w", err)
	}
	return nil
}

func (c *conn) scanLimits(row *sql.Row) (*models.UserLimits, error) {
	l := &models.UserLimits{}
	var createdAt, updatedAt int64
	err := row.Scan(&l.UserID, &l.MaxOpenRequests, &l.MaxGroupsCreated, &l.MaxGroupsJoined, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("limits: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get limits: %w", err)
	}
	l.CreatedAt = fromMillis(createdAt)
	l.UpdatedAt = fromMillis(updatedAt)
	return l, nil
}

// CountUsage derives quota usage from live rows.
func (c *conn) CountUsage(ctx context.Context, userID string) (models.UsageCounts, error) {
	var counts models.UsageCounts
	err := c.queryRow(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM requests WHERE user_id = ? AND status = 'open'),
		     (SELECT COUNT(*) FROM groups WHERE created_by = ?),
		     (SELECT COUNT(*) FROM group_members WHERE user_id = ?)`,
		userID, userID, userID,
	).Scan(&counts.OpenRequests, &counts.GroupsCreated, &counts.GroupsJoined)
	if err != nil {
		return models.UsageCounts{}, fmt.Errorf("failed to count usage: %w", err)
	}
	return counts, nil
}
