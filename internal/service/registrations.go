package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
)

// RegistrationService schedules water delivery to a set of neighborhood colonies.
type RegistrationService struct {
	Repo *repo.GormRepo
	Push notify.Sender
	Bg   *notify.Dispatcher
}

type RegistrationInput struct {
	Date            time.Time
	Observations    string
	NeighborhoodIDs []string
}

func (s *RegistrationService) List(ctx context.Context) ([]models.WaterRegistration, error) {
	items, err := s.Repo.ListRegistrations(ctx)
	if err != nil {
		return nil, internal("list registrations", err)
	}
	return items, nil
}

func (s *RegistrationService) Get(ctx context.Context, id string) (*models.WaterRegistration, error) {
	reg, err := s.Repo.GetRegistration(ctx, id)
	if err != nil {
		return nil, storeErr("get registration", err, notFound("registration", id))
	}
	return reg, nil
}

func (s *RegistrationService) Create(ctx context.Context, in RegistrationInput) (*models.WaterRegistration, error) {
	l := logging.FromContext(ctx).With("svc", "registrations.create")

	nbs, err := s.resolve(ctx, &in)
	if err != nil {
		return nil, err
	}

	reg := &models.WaterRegistration{Date: in.Date.UTC(), Observations: in.Observations}
	if err := s.Repo.CreateRegistration(ctx, reg, nbs); err != nil {
		l.Error("create registration failed", "error", err)
		return nil, storeErr("create registration", err, ErrNotFound)
	}
	reg.Neighborhoods = nbs

	names := strings.Join(reg.NeighborhoodNames(), ", ")
	pushAsync(ctx, s.Bg, s.Push, notify.Notification{
		Topic: notify.TopicRegistrations,
		Title: "Nuevo registro de agua",
		Body:  "Se ha registrado agua para: " + names,
		Data: map[string]string{
			"id":               reg.ID,
			"date":             reg.Date.Format(notify.DateLayout),
			"observations":     reg.Observations,
			"neighborhoods":    names,
			"notificationType": "agua",
		},
	})
	l.Info("registration created", "registration_id", reg.ID, "neighborhoods", len(nbs))
	return reg, nil
}

// Update replaces the fields and the whole neighborhood set.
func (s *RegistrationService) Update(ctx context.Context, id string, in RegistrationInput) (*models.WaterRegistration, error) {
	nbs, err := s.resolve(ctx, &in)
	if err != nil {
		return nil, err
	}
	reg, err := s.Repo.UpdateRegistration(ctx, id, in.Date.UTC(), in.Observations, nbs)
	if err != nil {
		return nil, storeErr("update registration", err, notFound("registration", id))
	}
	reg.Neighborhoods = nbs
	return reg, nil
}

func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	return storeErr("delete registration", s.Repo.DeleteRegistration(ctx, id), notFound("registration", id))
}

func (s *RegistrationService) resolve(ctx context.Context, in *RegistrationInput) ([]models.NeighborhoodColony, error) {
	in.Observations = strings.TrimSpace(in.Observations)
	switch {
	case in.Date.IsZero():
		return nil, fmt.Errorf("date is required: %w", ErrValidation)
	case runeLen(in.Observations) > 1000:
		return nil, fmt.Errorf("observations must be at most 1000 characters: %w", ErrValidation)
	}

	ids := dedupe(in.NeighborhoodIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one neighborhood colony is required: %w", ErrValidation)
	}
	nbs, err := s.Repo.NeighborhoodsByIDs(ctx, ids)
	if err != nil {
		return nil, internal("load neighborhoods", err)
	}
	if len(nbs) != len(ids) {
		return nil, fmt.Errorf("unknown neighborhood colony: %w", ErrValidation)
	}
	return nbs, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
