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

// CreateGroup persists a new group and its owner's membership.
func (c *conn) CreateGroup(ctx context.Context, group *models.Group, ownerJoinedAt time.Time) error {
	if group.ID == "" {
		group.ID = newID()
	}

	_, err := c.exec(ctx,
		"INSERT INTO groups (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CreatedBy, toMillis(group.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	return c.AddMember(ctx, &models.GroupMember{
		GroupID:  group.ID,
		UserID:   group.CreatedBy,
		JoinedAt: ownerJoinedAt,
	})
}

// GetGroup retrieves a group by ID.
func (c *conn) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var createdAt int64
	err := c.queryRow(ctx,
		"SELECT id, name, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedAt = fromMillis(createdAt)
	return group, nil
}

// ListUserGroups retrieves the groups a user belongs to, newest first.
func (c *conn) ListUserGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := c.query(ctx,
		`SELECT g.id, g.name, g.created_by, g.created_at
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		var createdAt int64
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.CreatedAt = fromMillis(createdAt)
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// DeleteGroup removes a group and everything hanging off it. Children are
// deleted explicitly so the result does not depend on foreign key support.
func (c *conn) DeleteGroup(ctx context.Context, groupID string) error {
	for _, stmt := range []string{
		"DELETE FROM requests WHERE group_id = ?",
		"DELETE FROM invites WHERE group_id = ?",
		"DELETE FROM group_members WHERE group_id = ?",
	} {
		if _, err := c.exec(ctx, stmt, groupID); err != nil {
			return fmt.Errorf("failed to delete group children: %w", err)
		}
	}

	res, err := c.exec(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return expectOne(res, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound))
}

// LockGroup takes a row lock on the group for the rest of the transaction.
func (c *conn) LockGroup(ctx context.Context, groupID string) error {
	var id string
	err := c.queryRow(ctx, "SELECT id FROM groups WHERE id = ?"+c.dialect.forUpdate(), groupID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock group: %w", err)
	}
	return nil
}

// AddMember inserts a membership row.
func (c *conn) AddMember(ctx context.Context, member *models.GroupMember) error {
	_, err := c.exec(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		member.GroupID, member.UserID, toMillis(member.JoinedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("already a member: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row.
func (c *conn) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := c.exec(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return expectOne(res, fmt.Errorf("membership: %w", storage.ErrNotFound))
}

// GetMember retrieves one membership.
func (c *conn) GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	member := &models.GroupMember{}
	var joinedAt int64
	err := c.queryRow(ctx,
		"SELECT group_id, user_id, joined_at FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&member.GroupID, &member.UserID, &joinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("membership: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.JoinedAt = fromMillis(joinedAt)
	return member, nil
}

// ListMembers retrieves a group's members with their display fields.
func (c *conn) ListMembers(ctx context.Context, groupID string) ([]*models.MemberProfile, error) {
	rows, err := c.query(ctx,
		`SELECT m.group_id, m.user_id, m.joined_at, COALESCE(u.name, ''), COALESCE(u.email, '')
		 FROM group_members m
		 LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ?
		 ORDER BY m.joined_at, m.user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.MemberProfile
	for rows.Next() {
		m := &models.MemberProfile{}
		var joinedAt int64
		if err := rows.Scan(&m.GroupID, &m.UserID, &joinedAt, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.JoinedAt = fromMillis(joinedAt)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// CountMembers returns the group's current size.
func (c *conn) CountMembers(ctx context.Context, groupID string) (int, error) {
	var n int
	if err := c.queryRow(ctx, "SELECT COUNT(*) FROM group_members WHERE group_id = ?", groupID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}
