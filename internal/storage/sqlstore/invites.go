package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
)

const inviteColumns = `id, group_id, email, token, invited_by, expires_at, used_at, created_at`

// CreateInvite persists a new invite.
func (c *conn) CreateInvite(ctx context.Context, invite *models.Invite) error {
	if invite.ID == "" {
		invite.ID = newID()
	}

	_, err := c.exec(ctx,
		`INSERT INTO invites (`+inviteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		invite.ID, invite.GroupID, invite.Email, invite.Token, invite.InvitedBy,
		toMillis(invite.ExpiresAt), nullMillis(invite.UsedAt), toMillis(invite.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invite token collision: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetInviteByToken retrieves an invite by its token, used or not.
func (c *conn) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	rows, err := c.query(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token = ?`, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	invites, err := scanInvites(rows)
	if err != nil {
		return nil, err
	}
	if len(invites) == 0 {
		return nil, fmt.Errorf("invite: %w", storage.ErrNotFound)
	}
	return invites[0], nil
}

// ListPendingInvites retrieves the unused, unexpired invites of a group,
// newest first.
func (c *conn) ListPendingInvites(ctx context.Context, groupID string, now time.Time) ([]*models.Invite, error) {
	rows, err := c.query(ctx,
		`SELECT `+inviteColumns+` FROM invites
		 WHERE group_id = ? AND used_at IS NULL AND expires_at >= ?
		 ORDER BY created_at DESC, id DESC`,
		groupID, toMillis(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return scanInvites(rows)
}

// MarkInviteUsed closes the invite if nobody closed it first.
func (c *conn) MarkInviteUsed(ctx context.Context, inviteID string, usedAt time.Time) error {
	res, err := c.exec(ctx,
		"UPDATE invites SET used_at = ? WHERE id = ? AND used_at IS NULL",
		toMillis(usedAt), inviteID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark invite used: %w", err)
	}
	return expectOne(res, fmt.Errorf("invite already used: %w", storage.ErrConflict))
}

func scanInvites(rows *sql.Rows) ([]*models.Invite, error) {
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		inv := &models.Invite{}
		var expiresAt, createdAt int64
		var usedAt sql.NullInt64
		if err := rows.Scan(&inv.ID, &inv.GroupID, &inv.Email, &inv.Token, &inv.InvitedBy,
			&expiresAt, &usedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		inv.ExpiresAt = fromMillis(expiresAt)
		inv.UsedAt = fromNullMillis(usedAt)
		inv.CreatedAt = fromMillis(createdAt)
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invites: %w", err)
	}
	return invites, nil
}
