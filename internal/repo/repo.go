package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/water_backoffice/internal/models"
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

// Tx runs fn inside one transaction. The repo handed to fn is bound to it.
func (r *GormRepo) Tx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func getByID[T any](ctx context.Context, db *gorm.DB, id string, preload ...string) (*T, error) {
	var out T
	q := db.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func listWhere[T any](ctx context.Context, db *gorm.DB, order string, where map[string]any) ([]T, error) {
	items := make([]T, 0)
	q := db.WithContext(ctx).Order(order)
	if len(where) > 0 {
		q = q.Where(where)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id string) error {
	var zero T
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func exists[T any](ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	var zero T
	if err := db.WithContext(ctx).Model(&zero).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func IsForeignKey(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}
