package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/water_backoffice/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Roles").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return getByID[models.User](ctx, r.DB, id, "Roles")
}

func (r *GormRepo) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) SetRefreshToken(ctx context.Context, userID, fingerprint string, expiresAt time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"refresh_token_hash":   fingerprint,
			"refresh_token_expiry": expiresAt.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RotateRefreshToken swaps the stored fingerprint only when it still equals
// current and has not expired at now. It reports whether this call won.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, userID, current, next string, expiresAt, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token_hash = ? AND refresh_token_expiry >= ?", userID, current, now.UTC()).
		Updates(map[string]any{
			"refresh_token_hash":   next,
			"refresh_token_expiry": expiresAt.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"refresh_token_hash":   nil,
			"refresh_token_expiry": nil,
		}).Error
}

func (r *GormRepo) SetPasswordResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_reset_token":  token,
			"password_reset_expiry": expiresAt.UTC(),
		}).Error
}

// ResetPassword stores the new hash and clears the reset and refresh state,
// provided the reset token is still the one that was checked.
func (r *GormRepo) ResetPassword(ctx context.Context, userID, token, passwordHash string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND password_reset_token = ?", userID, token).
		Updates(map[string]any{
			"password_hash":         passwordHash,
			"password_reset_token":  nil,
			"password_reset_expiry": nil,
			"refresh_token_hash":    nil,
			"refresh_token_expiry":  nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
