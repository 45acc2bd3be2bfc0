package service

import (
	"context"
	"fmt"

	"github.com/unicorn-hrms/backend/internal/db"
)

// RoleService grants and revokes role membership. Registration assigns the
// default role through AuthService; everything else goes through here via the
// admin endpoints.
type RoleService struct {
	users CredentialStore
	roles RoleStore
}

func NewRoleService(users CredentialStore, roles RoleStore) *RoleService {
	return &RoleService{users: users, roles: roles}
}

func (s *RoleService) Assign(ctx context.Context, userID int64, roleName string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}

	role, err := s.roles.GetRoleByName(ctx, roleName)
	if err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: role not found", ErrNotFound)
		}
		return err
	}

	exists, err := s.roles.HasActiveAssignment(ctx, userID, role.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: role already assigned", ErrConflict)
	}

	if err := s.roles.AssignRole(ctx, userID, role.ID); err != nil {
		// Two concurrent assigns can both pass the pre-check; the loser
		// trips the partial unique index.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: role already assigned", ErrConflict)
		}
		return err
	}
	return nil
}

func (s *RoleService) Revoke(ctx context.Context, userID int64, roleName string) error {
	role, err := s.roles.GetRoleByName(ctx, roleName)
	if err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("%w: role not found", ErrNotFound)
		}
		return err
	}

	revoked, err := s.roles.RevokeRole(ctx, userID, role.ID)
	if err != nil {
		return err
	}
	if !revoked {
		return fmt.Errorf("%w: no active assignment", ErrNotFound)
	}
	return nil
}

func (s *RoleService) ListRoleNames(ctx context.Context, userID int64) ([]string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if db.IsNoRows(err) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	return s.roles.RoleNamesByUserID(ctx, userID)
}
