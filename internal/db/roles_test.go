package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleStore_GetRoleByName(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, name, description FROM roles WHERE LOWER\(name\) = LOWER\(\$1\)`).
			WithArgs("Employee").
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}).
				AddRow(int64(5), "Employee", "Regular employee"))

		store := NewRoleStore(mock)
		role, err := store.GetRoleByName(context.Background(), "Employee")

		require.NoError(t, err)
		assert.Equal(t, int64(5), role.ID)
		assert.Equal(t, "Employee", role.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, name, description FROM roles`).
			WithArgs("Wizard").
			WillReturnError(pgx.ErrNoRows)

		store := NewRoleStore(mock)
		_, err = store.GetRoleByName(context.Background(), "Wizard")

		require.Error(t, err)
		assert.True(t, IsNoRows(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRoleStore_RoleNamesByUserID(t *testing.T) {
	t.Run("with assignments", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT r.name FROM user_roles ur JOIN roles r`).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"name"}).
				AddRow("Employee").
				AddRow("HR"))

		store := NewRoleStore(mock)
		names, err := store.RoleNamesByUserID(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"Employee", "HR"}, names)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no assignments yields empty slice", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT r.name FROM user_roles ur JOIN roles r`).
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows([]string{"name"}))

		store := NewRoleStore(mock)
		names, err := store.RoleNamesByUserID(context.Background(), 2)

		require.NoError(t, err)
		assert.NotNil(t, names)
		assert.Empty(t, names)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRoleStore_HasActiveAssignment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	store := NewRoleStore(mock)
	has, err := store.HasActiveAssignment(context.Background(), 1, 5)

	require.NoError(t, err)
	assert.True(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleStore_AssignRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(int64(1), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewRoleStore(mock)
	require.NoError(t, store.AssignRole(context.Background(), 1, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleStore_RevokeRole(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		revoked bool
	}{
		{"active assignment revoked", 1, true},
		{"nothing to revoke", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`UPDATE user_roles SET is_deleted = TRUE`).
				WithArgs(int64(1), int64(5)).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))

			store := NewRoleStore(mock)
			revoked, err := store.RevokeRole(context.Background(), 1, 5)

			require.NoError(t, err)
			assert.Equal(t, tt.revoked, revoked)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
