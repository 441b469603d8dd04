package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/water_backoffice/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateReport(ctx context.Context, rep *models.Report) error {
	return r.DB.WithContext(ctx).Omit("State").Create(rep).Error
}

func (r *GormRepo) GetReport(ctx context.Context, id string) (*models.Report, error) {
	return getByID[models.Report](ctx, r.DB, id, "State")
}

func (r *GormRepo) ListReports(ctx context.Context, offset, limit int) (int64, []models.Report, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Report{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Report, 0, limit)
	if err := r.DB.WithContext(ctx).Preload("State").
		Order("date DESC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ReportsByIDs(ctx context.Context, ids []string) ([]models.Report, error) {
	items := make([]models.Report, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Preload("State").Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SearchReports is the database fallback used when no search index is configured.
func (r *GormRepo) SearchReports(ctx context.Context, q string, offset, limit int) (int64, []models.Report, error) {
	like := "%" + strings.ToLower(q) + "%"
	where := "LOWER(name) LIKE ? OR LOWER(report) LIKE ? OR LOWER(direction) LIKE ? OR LOWER(report_key) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Report{}).
		Where(where, like, like, like, like).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Report, 0, limit)
	if err := r.DB.WithContext(ctx).Preload("State").
		Where(where, like, like, like, like).
		Order("date DESC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) SaveReport(ctx context.Context, rep *models.Report) error {
	return r.DB.WithContext(ctx).Omit("State").Save(rep).Error
}

func (r *GormRepo) DeleteReport(ctx context.Context, id string) error {
	return deleteByID[models.Report](ctx, r.DB, id)
}

func (r *GormRepo) SetReportState(ctx context.Context, id, stateID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Update("state_id", stateID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) GetState(ctx context.Context, id string) (*models.State, error) {
	return getByID[models.State](ctx, r.DB, id)
}

func (r *GormRepo) FindStateByName(ctx context.Context, name string) (*models.State, error) {
	var st models.State
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *GormRepo) ListStates(ctx context.Context) ([]models.State, error) {
	return listWhere[models.State](ctx, r.DB, "name ASC", nil)
}
