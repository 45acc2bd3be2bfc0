package db

import (
	"context"

	"github.com/unicorn-hrms/backend/internal/model"
)

// EnsureSchema creates the identity tables if they do not exist.
// Uniqueness of usernames, emails, role names and live role assignments is
// enforced with partial unique indexes that ignore soft-deleted rows.
func EnsureSchema(ctx context.Context, pool poolIface) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			last_login_at TIMESTAMPTZ,
			refresh_token TEXT,
			refresh_token_expires_at TIMESTAMPTZ,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_idx
			ON users (LOWER(username)) WHERE is_deleted = FALSE`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx
			ON users (LOWER(email)) WHERE is_deleted = FALSE`,
		`CREATE INDEX IF NOT EXISTS users_refresh_token_idx
			ON users (refresh_token) WHERE refresh_token IS NOT NULL`,
		`
		CREATE TABLE IF NOT EXISTS roles (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE UNIQUE INDEX IF NOT EXISTS roles_name_lower_idx
			ON roles (LOWER(name)) WHERE is_deleted = FALSE`,
		`
		CREATE TABLE IF NOT EXISTS user_roles (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			revoked_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE UNIQUE INDEX IF NOT EXISTS user_roles_active_pair_idx
			ON user_roles (user_id, role_id) WHERE is_deleted = FALSE`,
		`CREATE INDEX IF NOT EXISTS user_roles_user_id_idx ON user_roles (user_id)`,
	}

	for _, query := range queries {
		if _, err := pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// SeedRoles inserts the fixed role set. Re-running is a no-op.
func SeedRoles(ctx context.Context, pool poolIface) error {
	query := `
		INSERT INTO roles (name, description)
		SELECT $1, $2
		WHERE NOT EXISTS (
			SELECT 1 FROM roles WHERE LOWER(name) = LOWER($1) AND is_deleted = FALSE
		)
	`
	for _, role := range model.SeededRoles {
		if _, err := pool.Exec(ctx, query, role.Name, role.Description); err != nil {
			return err
		}
	}
	return nil
}
