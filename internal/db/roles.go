package db

import (
	"context"

	"github.com/unicorn-hrms/backend/internal/model"
)

// RoleStore persists the seeded role set and soft-deletable role assignments.
type RoleStore struct {
	pool poolIface
}

func NewRoleStore(pool poolIface) *RoleStore {
	return &RoleStore{pool: pool}
}

func (s *RoleStore) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	query := `
		SELECT id, name, description FROM roles
		WHERE LOWER(name) = LOWER($1) AND is_deleted = FALSE
	`
	var role model.Role
	err := s.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// RoleNamesByUserID returns the names of all active assignments, unordered.
func (s *RoleStore) RoleNamesByUserID(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT r.name FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 AND ur.is_deleted = FALSE AND r.is_deleted = FALSE
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *RoleStore) HasActiveAssignment(ctx context.Context, userID, roleID int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM user_roles
		WHERE user_id = $1 AND role_id = $2 AND is_deleted = FALSE
	)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, userID, roleID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *RoleStore) AssignRole(ctx context.Context, userID, roleID int64) error {
	query := `
		INSERT INTO user_roles (user_id, role_id, created_at)
		VALUES ($1, $2, NOW())
	`
	_, err := s.pool.Exec(ctx, query, userID, roleID)
	return err
}

// RevokeRole soft-deletes the active assignment so audit history survives.
// Returns false when no active assignment existed.
func (s *RoleStore) RevokeRole(ctx context.Context, userID, roleID int64) (bool, error) {
	query := `
		UPDATE user_roles
		SET is_deleted = TRUE, revoked_at = NOW()
		WHERE user_id = $1 AND role_id = $2 AND is_deleted = FALSE
	`
	tag, err := s.pool.Exec(ctx, query, userID, roleID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
