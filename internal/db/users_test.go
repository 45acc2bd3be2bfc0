package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicorn-hrms/backend/internal/model"
)

var userCols = []string{
	"id", "username", "email", "password_hash", "first_name", "last_name", "phone_number",
	"is_active", "email_confirmed", "last_login_at", "refresh_token", "refresh_token_expires_at",
	"created_at", "updated_at",
}

func userRow(id int64, username, email string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userCols).AddRow(
		id, username, email, "$2a$10$hash", "", "", "",
		true, false, (*time.Time)(nil), (*string)(nil), (*time.Time)(nil),
		now, now,
	)
}

func TestUserStore_FindByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM users WHERE LOWER\(username\) = LOWER\(\$1\) AND is_deleted = FALSE`).
			WithArgs("alice").
			WillReturnRows(userRow(1, "alice", "alice@x.com"))

		store := NewUserStore(mock)
		user, err := store.FindByUsername(context.Background(), "alice")

		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Nil(t, user.RefreshToken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM users WHERE LOWER\(username\)`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		store := NewUserStore(mock)
		_, err = store.FindByUsername(context.Background(), "ghost")

		require.Error(t, err)
		assert.True(t, IsNoRows(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserStore_ExistsUsername(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
	}{
		{"taken", true},
		{"free", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs("alice").
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			store := NewUserStore(mock)
			got, err := store.ExistsUsername(context.Background(), "alice")

			require.NoError(t, err)
			assert.Equal(t, tt.exists, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserStore_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "alice@x.com", "$2a$10$hash", "", "", "", true, false).
		WillReturnRows(userRow(7, "alice", "alice@x.com"))

	store := NewUserStore(mock)
	created, err := store.Create(context.Background(), &model.User{
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_RotateRefreshToken(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour)

	t.Run("token still current", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET refresh_token = \$3`).
			WithArgs(int64(1), "old-hash", "new-hash", expiresAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		store := NewUserStore(mock)
		rotated, err := store.RotateRefreshToken(context.Background(), 1, "old-hash", "new-hash", expiresAt)

		require.NoError(t, err)
		assert.True(t, rotated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("token already spent", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE users SET refresh_token = \$3`).
			WithArgs(int64(1), "stale-hash", "new-hash", expiresAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		store := NewUserStore(mock)
		rotated, err := store.RotateRefreshToken(context.Background(), 1, "stale-hash", "new-hash", expiresAt)

		require.NoError(t, err)
		assert.False(t, rotated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserStore_ClearRefreshToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE users SET refresh_token = NULL, refresh_token_expires_at = NULL`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewUserStore(mock)
	require.NoError(t, store.ClearRefreshToken(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_FindByRefreshToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE refresh_token = \$1 AND is_deleted = FALSE`).
		WithArgs("token-hash").
		WillReturnRows(userRow(3, "alice", "alice@x.com"))

	store := NewUserStore(mock)
	user, err := store.FindByRefreshToken(context.Background(), "token-hash")

	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
