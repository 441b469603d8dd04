package repo

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/water_backoffice/internal/hash"
	"github.com/Skotchmaster/water_backoffice/internal/models"
)

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// Seed makes sure the admin role, the report states and, when credentials are
// given, the admin user exist. It is safe to run on every start.
func (r *GormRepo) Seed(ctx context.Context, admin AdminSeed) error {
	return r.Tx(ctx, func(tx *GormRepo) error {
		roles, err := tx.EnsureRoles(ctx, []string{models.RoleAdmin})
		if err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}

		for _, name := range models.ReportStates {
			st := models.State{Name: name}
			if err := tx.DB.WithContext(ctx).Where(models.State{Name: name}).FirstOrCreate(&st).Error; err != nil {
				return fmt.Errorf("seed state %q: %w", name, err)
			}
		}

		if admin.Email == "" || admin.Password == "" {
			return nil
		}

		taken, err := tx.UsernameOrEmailTaken(ctx, admin.Username, admin.Email)
		if err != nil {
			return fmt.Errorf("seed admin lookup: %w", err)
		}
		if taken {
			return nil
		}

		pw, err := hash.HashPassword(admin.Password)
		if err != nil {
			return fmt.Errorf("seed admin hash: %w", err)
		}
		u := &models.User{
			Username:     admin.Username,
			Email:        admin.Email,
			PasswordHash: pw,
			FirstName:    "Admin",
			LastName:     "Admin",
			Status:       models.StatusActive,
			Roles:        roles,
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed admin create: %w", err)
		}
		return nil
	})
}
