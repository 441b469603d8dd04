package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
)

// ReferenceService manages the catalogue the rest of the back office points at:
// blocks, the neighborhood colonies inside them, and the lines and district
// points of each colony.
type ReferenceService struct {
	Repo *repo.GormRepo
}

type PointInput struct {
	Latitude             float64
	Longitude            float64
	NeighborhoodColonyID string
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func cleanName(name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || runeLen(name) > maxLen {
		return "", fmt.Errorf("name must be 1 to %d characters: %w", maxLen, ErrValidation)
	}
	return name, nil
}

// Blocks

func (s *ReferenceService) ListBlocks(ctx context.Context) ([]models.Block, error) {
	items, err := s.Repo.ListBlocks(ctx)
	if err != nil {
		return nil, internal("list blocks", err)
	}
	return items, nil
}

func (s *ReferenceService) GetBlock(ctx context.Context, id string) (*models.Block, error) {
	b, err := s.Repo.GetBlock(ctx, id)
	if err != nil {
		return nil, storeErr("get block", err, notFound("block", id))
	}
	return b, nil
}

func (s *ReferenceService) CreateBlock(ctx context.Context, name string) (*models.Block, error) {
	name, err := cleanName(name, 150)
	if err != nil {
		return nil, err
	}
	b := &models.Block{Name: name}
	if err := s.Repo.SaveBlock(ctx, b); err != nil {
		return nil, storeErr("create block", err, ErrNotFound)
	}
	return b, nil
}

func (s *ReferenceService) UpdateBlock(ctx context.Context, id, name string) (*models.Block, error) {
	name, err := cleanName(name, 150)
	if err != nil {
		return nil, err
	}
	b, err := s.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Name = name
	if err := s.Repo.SaveBlock(ctx, b); err != nil {
		return nil, storeErr("update block", err, notFound("block", id))
	}
	return b, nil
}

func (s *ReferenceService) DeleteBlock(ctx context.Context, id string) error {
	return storeErr("delete block", s.Repo.DeleteBlock(ctx, id), notFound("block", id))
}

// Neighborhood colonies

func (s *ReferenceService) ListNeighborhoods(ctx context.Context, blockID string) ([]models.NeighborhoodColony, error) {
	items, err := s.Repo.ListNeighborhoods(ctx, blockID)
	if err != nil {
		return nil, internal("list neighborhoods", err)
	}
	return items, nil
}

func (s *ReferenceService) GetNeighborhood(ctx context.Context, id string) (*models.NeighborhoodColony, error) {
	n, err := s.Repo.GetNeighborhood(ctx, id)
	if err != nil {
		return nil, storeErr("get neighborhood", err, notFound("neighborhood colony", id))
	}
	return n, nil
}

func (s *ReferenceService) CreateNeighborhood(ctx context.Context, name, blockID string) (*models.NeighborhoodColony, error) {
	n := &models.NeighborhoodColony{}
	if err := s.saveNeighborhood(ctx, n, name, blockID); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *ReferenceService) UpdateNeighborhood(ctx context.Context, id, name, blockID string) (*models.NeighborhoodColony, error) {
	n, err := s.GetNeighborhood(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Block = nil
	if err := s.saveNeighborhood(ctx, n, name, blockID); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *ReferenceService) saveNeighborhood(ctx context.Context, n *models.NeighborhoodColony, name, blockID string) error {
	name, err := cleanName(name, 150)
	if err != nil {
		return err
	}
	ok, err := s.Repo.BlockExists(ctx, blockID)
	if err != nil {
		return internal("check block", err)
	}
	if !ok {
		return fmt.Errorf("block %s does not exist: %w", blockID, ErrValidation)
	}
	n.Name = name
	n.BlockID = blockID
	return storeErr("save neighborhood", s.Repo.SaveNeighborhood(ctx, n), ErrNotFound)
}

func (s *ReferenceService) DeleteNeighborhood(ctx context.Context, id string) error {
	return storeErr("delete neighborhood", s.Repo.DeleteNeighborhood(ctx, id), notFound("neighborhood colony", id))
}

// Lines

func (s *ReferenceService) ListLines(ctx context.Context, neighborhoodID string) ([]models.Line, error) {
	items, err := s.Repo.ListLines(ctx, neighborhoodID)
	if err != nil {
		return nil, internal("list lines", err)
	}
	return items, nil
}

func (s *ReferenceService) GetLine(ctx context.Context, id string) (*models.Line, error) {
	l, err := s.Repo.GetLine(ctx, id)
	if err != nil {
		return nil, storeErr("get line", err, notFound("line", id))
	}
	return l, nil
}

func (s *ReferenceService) CreateLine(ctx context.Context, name, neighborhoodID string) (*models.Line, error) {
	l := &models.Line{}
	if err := s.saveLine(ctx, l, name, neighborhoodID); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ReferenceService) UpdateLine(ctx context.Context, id, name, neighborhoodID string) (*models.Line, error) {
	l, err := s.GetLine(ctx, id)
	if err != nil {
		return nil, err
	}
	l.NeighborhoodColony = nil
	if err := s.saveLine(ctx, l, name, neighborhoodID); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ReferenceService) saveLine(ctx context.Context, l *models.Line, name, neighborhoodID string) error {
	name, err := cleanName(name, 150)
	if err != nil {
		return err
	}
	if err := s.requireNeighborhood(ctx, neighborhoodID); err != nil {
		return err
	}
	l.Name = name
	l.NeighborhoodColonyID = neighborhoodID
	return storeErr("save line", s.Repo.SaveLine(ctx, l), ErrNotFound)
}

func (s *ReferenceService) DeleteLine(ctx context.Context, id string) error {
	return storeErr("delete line", s.Repo.DeleteLine(ctx, id), notFound("line", id))
}

// District points

func (s *ReferenceService) ListDistrictPoints(ctx context.Context, neighborhoodID string) ([]models.DistrictPoint, error) {
	items, err := s.Repo.ListDistrictPoints(ctx, neighborhoodID)
	if err != nil {
		return nil, internal("list district points", err)
	}
	return items, nil
}

func (s *ReferenceService) GetDistrictPoint(ctx context.Context, id string) (*models.DistrictPoint, error) {
	p, err := s.Repo.GetDistrictPoint(ctx, id)
	if err != nil {
		return nil, storeErr("get district point", err, notFound("district point", id))
	}
	return p, nil
}

func (s *ReferenceService) CreateDistrictPoint(ctx context.Context, in PointInput) (*models.DistrictPoint, error) {
	p := &models.DistrictPoint{}
	if err := s.savePoint(ctx, p, in); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ReferenceService) UpdateDistrictPoint(ctx context.Context, id string, in PointInput) (*models.DistrictPoint, error) {
	p, err := s.GetDistrictPoint(ctx, id)
	if err != nil {
		return nil, err
	}
	p.NeighborhoodColony = nil
	if err := s.savePoint(ctx, p, in); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ReferenceService) savePoint(ctx context.Context, p *models.DistrictPoint, in PointInput) error {
	switch {
	case in.Latitude < -90 || in.Latitude > 90:
		return fmt.Errorf("latitude %v out of range: %w", in.Latitude, ErrValidation)
	case in.Longitude < -180 || in.Longitude > 180:
		return fmt.Errorf("longitude %v out of range: %w", in.Longitude, ErrValidation)
	}
	if err := s.requireNeighborhood(ctx, in.NeighborhoodColonyID); err != nil {
		return err
	}
	p.Latitude = in.Latitude
	p.Longitude = in.Longitude
	p.NeighborhoodColonyID = in.NeighborhoodColonyID
	return storeErr("save district point", s.Repo.SaveDistrictPoint(ctx, p), ErrNotFound)
}

func (s *ReferenceService) DeleteDistrictPoint(ctx context.Context, id string) error {
	return storeErr("delete district point", s.Repo.DeleteDistrictPoint(ctx, id), notFound("district point", id))
}

func (s *ReferenceService) requireNeighborhood(ctx context.Context, id string) error {
	ok, err := s.Repo.NeighborhoodExists(ctx, id)
	if err != nil {
		return internal("check neighborhood", err)
	}
	if !ok {
		return fmt.Errorf("neighborhood colony %s does not exist: %w", id, ErrValidation)
	}
	return nil
}
