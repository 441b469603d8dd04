package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/repo/repotest"
)

func TestReferenceHierarchy(t *testing.T) {
	t.Parallel()
	svc := &ReferenceService{Repo: repotest.New(t)}
	ctx := context.Background()

	block, err := svc.CreateBlock(ctx, " Bloque Norte ")
	require.NoError(t, err)
	assert.Equal(t, "Bloque Norte", block.Name)

	_, err = svc.CreateNeighborhood(ctx, "Colonia Kennedy", "missing-block")
	assert.ErrorIs(t, err, ErrValidation)

	nb, err := svc.CreateNeighborhood(ctx, "Colonia Kennedy", block.ID)
	require.NoError(t, err)

	other, err := svc.CreateBlock(ctx, "Bloque Sur")
	require.NoError(t, err)
	_, err = svc.CreateNeighborhood(ctx, "Colonia Miraflores", other.ID)
	require.NoError(t, err)

	byBlock, err := svc.ListNeighborhoods(ctx, block.ID)
	require.NoError(t, err)
	require.Len(t, byBlock, 1)
	assert.Equal(t, nb.ID, byBlock[0].ID)

	all, err := svc.ListNeighborhoods(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := svc.GetNeighborhood(ctx, nb.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Block)
	assert.Equal(t, "Bloque Norte", got.Block.Name)

	moved, err := svc.UpdateNeighborhood(ctx, nb.ID, "Colonia Kennedy II", other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.BlockID)

	line, err := svc.CreateLine(ctx, "Linea 1", nb.ID)
	require.NoError(t, err)
	_, err = svc.CreateLine(ctx, "Linea 2", "missing")
	assert.ErrorIs(t, err, ErrValidation)

	lines, err := svc.ListLines(ctx, nb.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, line.ID, lines[0].ID)

	renamed, err := svc.UpdateLine(ctx, line.ID, "Linea Uno", nb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linea Uno", renamed.Name)

	require.NoError(t, svc.DeleteLine(ctx, line.ID))
	assert.ErrorIs(t, svc.DeleteLine(ctx, line.ID), ErrNotFound)
	_, err = svc.GetLine(ctx, line.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReferenceBlocks(t *testing.T) {
	t.Parallel()
	svc := &ReferenceService{Repo: repotest.New(t)}
	ctx := context.Background()

	b, err := svc.CreateBlock(ctx, "B")
	require.NoError(t, err)
	_, err = svc.CreateBlock(ctx, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	upd, err := svc.UpdateBlock(ctx, b.ID, "B2")
	require.NoError(t, err)
	assert.Equal(t, "B2", upd.Name)
	_, err = svc.UpdateBlock(ctx, "missing", "B3")
	assert.ErrorIs(t, err, ErrNotFound)

	blocks, err := svc.ListBlocks(ctx)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)

	require.NoError(t, svc.DeleteBlock(ctx, b.ID))
	_, err = svc.GetBlock(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDistrictPoints(t *testing.T) {
	t.Parallel()
	svc := &ReferenceService{Repo: repotest.New(t)}
	ctx := context.Background()

	b, err := svc.CreateBlock(ctx, "B")
	require.NoError(t, err)
	nb, err := svc.CreateNeighborhood(ctx, "N", b.ID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		lat, lng float64
		ok       bool
	}{
		{"inside", 14.0723, -87.1921, true},
		{"edges", -90, 180, true},
		{"latitude too high", 90.5, 0, false},
		{"longitude too low", 0, -180.01, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.CreateDistrictPoint(ctx, PointInput{Latitude: tt.lat, Longitude: tt.lng, NeighborhoodColonyID: nb.ID})
			if !tt.ok {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, p.Latitude, 1e-9)
		})
	}

	points, err := svc.ListDistrictPoints(ctx, nb.ID)
	require.NoError(t, err)
	require.Len(t, points, 2)

	_, err = svc.UpdateDistrictPoint(ctx, points[0].ID, PointInput{Latitude: 1, Longitude: 1, NeighborhoodColonyID: "missing"})
	assert.ErrorIs(t, err, ErrValidation)
	require.NoError(t, svc.DeleteDistrictPoint(ctx, points[0].ID))
	_, err = svc.GetDistrictPoint(ctx, points[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistrations(t *testing.T) {
	t.Parallel()
	r := repotest.New(t)
	ref := &ReferenceService{Repo: r}
	push := &recordingSender{}
	bg := notify.NewDispatcher(time.Second)
	svc := &RegistrationService{Repo: r, Push: push, Bg: bg}
	ctx := context.Background()

	b, err := ref.CreateBlock(ctx, "B")
	require.NoError(t, err)
	n1, err := ref.CreateNeighborhood(ctx, "Alameda", b.ID)
	require.NoError(t, err)
	n2, err := ref.CreateNeighborhood(ctx, "Bella Vista", b.ID)
	require.NoError(t, err)

	date := time.Date(2024, 5, 1, 6, 30, 0, 0, time.UTC)

	_, err = svc.Create(ctx, RegistrationInput{Date: date, NeighborhoodIDs: []string{n1.ID, "ghost"}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, RegistrationInput{Date: date})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, RegistrationInput{NeighborhoodIDs: []string{n1.ID}})
	assert.ErrorIs(t, err, ErrValidation)

	reg, err := svc.Create(ctx, RegistrationInput{
		Date:            date,
		Observations:    "manana",
		NeighborhoodIDs: []string{n1.ID, n2.ID, n1.ID},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alameda", "Bella Vista"}, reg.NeighborhoodNames())

	waitBackground(t, bg)
	sent := push.all()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.TopicRegistrations, sent[0].Topic)
	assert.Equal(t, "Nuevo registro de agua", sent[0].Title)
	assert.Equal(t, "Se ha registrado agua para: Alameda, Bella Vista", sent[0].Body)
	assert.Equal(t, "agua", sent[0].Data["notificationType"])
	assert.Equal(t, "2024-05-01 06:30", sent[0].Data["date"])

	upd, err := svc.Update(ctx, reg.ID, RegistrationInput{Date: date.Add(24 * time.Hour), NeighborhoodIDs: []string{n2.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bella Vista"}, upd.NeighborhoodNames())

	got, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bella Vista"}, got.NeighborhoodNames())

	_, err = svc.Update(ctx, "missing", RegistrationInput{Date: date, NeighborhoodIDs: []string{n2.ID}})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, reg.ID))
	assert.ErrorIs(t, svc.Delete(ctx, reg.ID), ErrNotFound)
}
