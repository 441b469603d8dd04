package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/water_backoffice/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) ListRegistrations(ctx context.Context) ([]models.WaterRegistration, error) {
	items := make([]models.WaterRegistration, 0)
	if err := r.DB.WithContext(ctx).Preload("Neighborhoods").Order("date DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetRegistration(ctx context.Context, id string) (*models.WaterRegistration, error) {
	return getByID[models.WaterRegistration](ctx, r.DB, id, "Neighborhoods")
}

// CreateRegistration inserts the schedule and its neighborhood links in one transaction.
func (r *GormRepo) CreateRegistration(ctx context.Context, reg *models.WaterRegistration, neighborhoods []models.NeighborhoodColony) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Neighborhoods").Create(reg).Error; err != nil {
			return err
		}
		if len(neighborhoods) == 0 {
			return nil
		}
		return tx.Model(reg).Association("Neighborhoods").Append(neighborhoods)
	})
}

func (r *GormRepo) UpdateRegistration(ctx context.Context, id string, date time.Time, observations string, neighborhoods []models.NeighborhoodColony) (*models.WaterRegistration, error) {
	var out models.WaterRegistration
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return err
		}
		out.Date = date
		out.Observations = observations
		if err := tx.Omit("Neighborhoods").Save(&out).Error; err != nil {
			return err
		}
		return tx.Model(&out).Association("Neighborhoods").Replace(neighborhoods)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) DeleteRegistration(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg := models.WaterRegistration{Base: models.Base{ID: id}}
		if err := tx.Model(&reg).Association("Neighborhoods").Clear(); err != nil {
			return err
		}
		return deleteByID[models.WaterRegistration](ctx, tx, id)
	})
}
