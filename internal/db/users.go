package db

import (
	"context"
	"time"

	"github.com/unicorn-hrms/backend/internal/model"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, phone_number,
	is_active, email_confirmed, last_login_at, refresh_token, refresh_token_expires_at,
	created_at, updated_at`

// UserStore persists accounts. Every read filters out soft-deleted rows;
// refresh tokens are stored hashed and rotated with a conditional update.
type UserStore struct {
	pool poolIface
}

func NewUserStore(pool poolIface) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Create(ctx context.Context, u *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, phone_number,
			is_active, email_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.PhoneNumber,
		u.IsActive, u.EmailConfirmed,
	)
	return scanUser(row)
}

func (s *UserStore) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_deleted = FALSE`
	return scanUser(s.pool.QueryRow(ctx, query, userID))
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE LOWER(username) = LOWER($1) AND is_deleted = FALSE`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE LOWER(email) = LOWER($1) AND is_deleted = FALSE`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// FindByRefreshToken looks an account up by the hash of its live refresh token.
func (s *UserStore) FindByRefreshToken(ctx context.Context, tokenHash string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE refresh_token = $1 AND is_deleted = FALSE`
	return scanUser(s.pool.QueryRow(ctx, query, tokenHash))
}

func (s *UserStore) ExistsUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) AND is_deleted = FALSE
	)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *UserStore) ExistsEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND is_deleted = FALSE
	)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// SetRefreshToken overwrites whatever token the account held before.
// Used by login and register, where replacing an existing session is intended.
func (s *UserStore) SetRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $2, refresh_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	_, err := s.pool.Exec(ctx, query, userID, tokenHash, expiresAt)
	return err
}

// RotateRefreshToken replaces the stored token only if it still equals
// currentHash. Returns false when another request rotated first; the caller
// must treat the presented token as spent.
func (s *UserStore) RotateRefreshToken(ctx context.Context, userID int64, currentHash, nextHash string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE users
		SET refresh_token = $3, refresh_token_expires_at = $4, updated_at = NOW()
		WHERE id = $1 AND refresh_token = $2 AND is_deleted = FALSE
	`
	tag, err := s.pool.Exec(ctx, query, userID, currentHash, nextHash, expiresAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *UserStore) ClearRefreshToken(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET refresh_token = NULL, refresh_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	_, err := s.pool.Exec(ctx, query, userID)
	return err
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	_, err := s.pool.Exec(ctx, query, userID, passwordHash)
	return err
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, userID int64, when time.Time) error {
	query := `
		UPDATE users
		SET last_login_at = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	_, err := s.pool.Exec(ctx, query, userID, when)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.IsActive,
		&u.EmailConfirmed,
		&u.LastLoginAt,
		&u.RefreshToken,
		&u.RefreshTokenExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
