package repo

import (
	"context"

	"github.com/Skotchmaster/water_backoffice/internal/models"
)

func (r *GormRepo) ListBlocks(ctx context.Context) ([]models.Block, error) {
	return listWhere[models.Block](ctx, r.DB, "name ASC", nil)
}

func (r *GormRepo) GetBlock(ctx context.Context, id string) (*models.Block, error) {
	return getByID[models.Block](ctx, r.DB, id)
}

func (r *GormRepo) BlockExists(ctx context.Context, id string) (bool, error) {
	return exists[models.Block](ctx, r.DB, id)
}

func (r *GormRepo) SaveBlock(ctx context.Context, b *models.Block) error {
	return r.DB.WithContext(ctx).Save(b).Error
}

func (r *GormRepo) DeleteBlock(ctx context.Context, id string) error {
	return deleteByID[models.Block](ctx, r.DB, id)
}

func (r *GormRepo) ListNeighborhoods(ctx context.Context, blockID string) ([]models.NeighborhoodColony, error) {
	where := map[string]any{}
	if blockID != "" {
		where["block_id"] = blockID
	}
	return listWhere[models.NeighborhoodColony](ctx, r.DB, "name ASC", where)
}

func (r *GormRepo) GetNeighborhood(ctx context.Context, id string) (*models.NeighborhoodColony, error) {
	return getByID[models.NeighborhoodColony](ctx, r.DB, id, "Block")
}

func (r *GormRepo) NeighborhoodExists(ctx context.Context, id string) (bool, error) {
	return exists[models.NeighborhoodColony](ctx, r.DB, id)
}

func (r *GormRepo) NeighborhoodsByIDs(ctx context.Context, ids []string) ([]models.NeighborhoodColony, error) {
	items := make([]models.NeighborhoodColony, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) SaveNeighborhood(ctx context.Context, n *models.NeighborhoodColony) error {
	return r.DB.WithContext(ctx).Omit("Block").Save(n).Error
}

func (r *GormRepo) DeleteNeighborhood(ctx context.Context, id string) error {
	return deleteByID[models.NeighborhoodColony](ctx, r.DB, id)
}

func (r *GormRepo) ListLines(ctx context.Context, neighborhoodID string) ([]models.Line, error) {
	where := map[string]any{}
	if neighborhoodID != "" {
		where["neighborhood_colony_id"] = neighborhoodID
	}
	return listWhere[models.Line](ctx, r.DB, "name ASC", where)
}

func (r *GormRepo) GetLine(ctx context.Context, id string) (*models.Line, error) {
	return getByID[models.Line](ctx, r.DB, id, "NeighborhoodColony")
}

func (r *GormRepo) SaveLine(ctx context.Context, l *models.Line) error {
	return r.DB.WithContext(ctx).Omit("NeighborhoodColony").Save(l).Error
}

func (r *GormRepo) DeleteLine(ctx context.Context, id string) error {
	return deleteByID[models.Line](ctx, r.DB, id)
}

func (r *GormRepo) ListDistrictPoints(ctx context.Context, neighborhoodID string) ([]models.DistrictPoint, error) {
	where := map[string]any{}
	if neighborhoodID != "" {
		where["neighborhood_colony_id"] = neighborhoodID
	}
	return listWhere[models.DistrictPoint](ctx, r.DB, "created_at ASC", where)
}

func (r *GormRepo) GetDistrictPoint(ctx context.Context, id string) (*models.DistrictPoint, error) {
	return getByID[models.DistrictPoint](ctx, r.DB, id, "NeighborhoodColony")
}

func (r *GormRepo) SaveDistrictPoint(ctx context.Context, p *models.DistrictPoint) error {
	return r.DB.WithContext(ctx).Omit("NeighborhoodColony").Save(p).Error
}

func (r *GormRepo) DeleteDistrictPoint(ctx context.Context, id string) error {
	return deleteByID[models.DistrictPoint](ctx, r.DB, id)
}
