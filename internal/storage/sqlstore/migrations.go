package sqlstore

import (
	"database/sql"
	"fmt"
)

// schema sets up the database. Statements run one at a time so the same list
// works on SQLite and PostgreSQL. Timestamps are Unix milliseconds.
// IMPORTANT: groups must be created BEFORE tables that reference it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    general_area TEXT NOT NULL DEFAULT '',
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    password_hash TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at BIGINT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    joined_at BIGINT NOT NULL,
    PRIMARY KEY (group_id, user_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
)`,

	`CREATE TABLE IF NOT EXISTS invites (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    email TEXT NOT NULL,
    token TEXT NOT NULL UNIQUE,
    invited_by TEXT NOT NULL,
    expires_at BIGINT NOT NULL,
    used_at BIGINT,
    created_at BIGINT NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
)`,

	`CREATE TABLE IF NOT EXISTS requests (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    group_id TEXT NOT NULL,
    item_description TEXT NOT NULL,
    store_preference TEXT NOT NULL DEFAULT '',
    needed_by BIGINT NOT NULL,
    pickup_notes TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK (status IN ('open', 'claimed', 'fulfilled', 'expired')),
    claimed_by TEXT,
    claimed_at BIGINT,
    fulfilled_at BIGINT,
    created_at BIGINT NOT NULL,
    CHECK ((claimed_by IS NULL) = (claimed_at IS NULL)),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
)`,

	`CREATE TABLE IF NOT EXISTS user_limits (
    user_id TEXT PRIMARY KEY,
    max_open_requests INTEGER NOT NULL,
    max_groups_created INTEGER NOT NULL,
    max_groups_joined INTEGER NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
)`,

	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_groups_created_by ON groups(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_invites_group_id ON invites(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_group_id ON requests(group_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_user_status ON requests(user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_claimed_by ON requests(claimed_by)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_status_needed_by ON requests(status, needed_by)`,
}

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
