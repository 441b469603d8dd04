package repo

import (
	"context"

	"github.com/Skotchmaster/water_backoffice/internal/models"
)

func (r *GormRepo) CreateCommunique(ctx context.Context, c *models.Communique) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetCommunique(ctx context.Context, id string) (*models.Communique, error) {
	return getByID[models.Communique](ctx, r.DB, id)
}

func (r *GormRepo) ListCommuniques(ctx context.Context) ([]models.Communique, error) {
	return listWhere[models.Communique](ctx, r.DB, "date DESC", nil)
}

func (r *GormRepo) SaveCommunique(ctx context.Context, c *models.Communique) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

func (r *GormRepo) DeleteCommunique(ctx context.Context, id string) error {
	return deleteByID[models.Communique](ctx, r.DB, id)
}
