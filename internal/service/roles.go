package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
)

type RoleService struct {
	Repo *repo.GormRepo
}

func (s *RoleService) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 64 {
		return nil, fmt.Errorf("role name must be 1 to 64 characters: %w", ErrValidation)
	}

	if _, err := s.Repo.FindRoleByName(ctx, name); err == nil {
		return nil, fmt.Errorf("role %q: %w", name, ErrAlreadyExists)
	} else if !repo.IsNotFound(err) {
		return nil, internal("find role", err)
	}

	role := &models.Role{Name: name}
	if err := s.Repo.CreateRole(ctx, role); err != nil {
		return nil, storeErr("create role", err, ErrRoleNotFound)
	}
	logging.FromContext(ctx).Info("role created", "svc", "roles.create", "role", name)
	return role, nil
}

func (s *RoleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.Repo.ListRoles(ctx)
	if err != nil {
		return nil, internal("list roles", err)
	}
	return roles, nil
}

func (s *RoleService) GetRole(ctx context.Context, id string) (*models.Role, error) {
	role, err := s.Repo.FindRoleByID(ctx, id)
	if err != nil {
		return nil, storeErr("get role", err, ErrRoleNotFound)
	}
	return role, nil
}

func (s *RoleService) AssignRole(ctx context.Context, userID, roleName string) error {
	user, role, err := s.load(ctx, userID, roleName)
	if err != nil {
		return err
	}
	if err := s.Repo.AddUserRole(ctx, user, role); err != nil {
		return internal("assign role", err)
	}
	logging.FromContext(ctx).Info("role assigned", "svc", "roles.assign", "user_id", userID, "role", role.Name)
	return nil
}

// RemoveRole refuses to take the admin role away from the caller themself.
func (s *RoleService) RemoveRole(ctx context.Context, callerID, userID, roleName string) error {
	l := logging.FromContext(ctx).With("svc", "roles.remove", "caller_id", callerID, "user_id", userID)

	user, role, err := s.load(ctx, userID, roleName)
	if err != nil {
		return err
	}
	if callerID == user.ID && role.NormalizedName == models.NormalizeRoleName(models.RoleAdmin) {
		l.Warn("role removal rejected", "reason", "self admin removal")
		return ErrSelfAdminRemoval
	}

	held := false
	for _, r := range user.Roles {
		if r.ID == role.ID {
			held = true
			break
		}
	}
	if !held {
		return fmt.Errorf("%q: %w", role.Name, ErrRoleNotAssigned)
	}

	if err := s.Repo.RemoveUserRole(ctx, user, role); err != nil {
		return internal("remove role", err)
	}
	l.Info("role removed", "role", role.Name)
	return nil
}

func (s *RoleService) load(ctx context.Context, userID, roleName string) (*models.User, *models.Role, error) {
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, nil, storeErr("find user", err, ErrUserNotFound)
	}
	role, err := s.Repo.FindRoleByName(ctx, roleName)
	if err != nil {
		return nil, nil, storeErr("find role", err, ErrRoleNotFound)
	}
	return user, role, nil
}
