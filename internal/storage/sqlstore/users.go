package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage"
)

const userColumns = `id, email, name, phone, general_area, is_admin, password_hash, created_at, updated_at`

// CreateUser inserts a new user into the database.
func (c *conn) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}

	_, err := c.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.Phone,
		user.GeneralArea,
		user.IsAdmin,
		user.PasswordHash,
		toMillis(user.CreatedAt),
		toMillis(user.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("email already registered: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// UpdateUser updates the profile fields of an existing user.
func (c *conn) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := c.exec(ctx,
		`UPDATE users SET name = ?, phone = ?, general_area = ?, is_admin = ?, updated_at = ? WHERE id = ?`,
		user.Name, user.Phone, user.GeneralArea, user.IsAdmin, toMillis(user.UpdatedAt), user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOne(res, fmt.Errorf("user %s: %w", user.ID, storage.ErrNotFound))
}

// GetUser retrieves a user by their ID.
func (c *conn) GetUser(ctx context.Context, id string) (*models.User, error) {
	return c.scanUser(c.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail retrieves a user by their email address.
func (c *conn) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return c.scanUser(c.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		models.NormalizeEmail(email),
	))
}

func (c *conn) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var createdAt, updatedAt int64
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Phone,
		&user.GeneralArea,
		&user.IsAdmin,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}
