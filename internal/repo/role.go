package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/water_backoffice/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateRole(ctx context.Context, role *models.Role) error {
	return r.DB.WithContext(ctx).Create(role).Error
}

func (r *GormRepo) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("normalized_name = ?", models.NormalizeRoleName(name)).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) FindRoleByID(ctx context.Context, id string) (*models.Role, error) {
	return getByID[models.Role](ctx, r.DB, id)
}

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	return listWhere[models.Role](ctx, r.DB, "name ASC", nil)
}

// EnsureRoles returns the roles with the given names, creating the missing ones.
func (r *GormRepo) EnsureRoles(ctx context.Context, names []string) ([]models.Role, error) {
	out := make([]models.Role, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := models.NormalizeRoleName(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		var role models.Role
		err := r.DB.WithContext(ctx).
			Where(models.Role{NormalizedName: key}).
			Attrs(models.Role{Name: strings.TrimSpace(name)}).
			FirstOrCreate(&role).Error
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, nil
}

func (r *GormRepo) AddUserRole(ctx context.Context, user *models.User, role *models.Role) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Association("Roles").Append(role)
	})
}

func (r *GormRepo) RemoveUserRole(ctx context.Context, user *models.User, role *models.Role) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Association("Roles").Delete(role)
	})
}
