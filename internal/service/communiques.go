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

const NotificationQueued = "queued"

type CommuniqueService struct {
	Repo *repo.GormRepo
	Push notify.Sender
	Bg   *notify.Dispatcher
	Now  func() time.Time
}

type CommuniqueInput struct {
	Title         string
	Content       string
	TypeStatement string
}

func (s *CommuniqueService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create stores the communique authored by authorID and queues the push
// notification. A failing push never fails the request.
func (s *CommuniqueService) Create(ctx context.Context, authorID string, in CommuniqueInput) (*models.Communique, error) {
	if err := validateCommunique(&in); err != nil {
		return nil, err
	}

	c := &models.Communique{
		Title:         in.Title,
		Content:       in.Content,
		TypeStatement: in.TypeStatement,
		Date:          s.now(),
		UserID:        authorID,
	}
	if err := s.Repo.CreateCommunique(ctx, c); err != nil {
		logging.FromContext(ctx).Error("create communique failed", "svc", "communiques.create", "error", err)
		return nil, storeErr("create communique", err, ErrNotFound)
	}

	pushAsync(ctx, s.Bg, s.Push, notify.Notification{
		Topic: notify.TopicCommuniques,
		Title: c.Title,
		Body:  "Nuevo comunicado: " + c.TypeStatement,
		Data: map[string]string{
			"id":               c.ID,
			"date":             c.Date.Format(notify.DateLayout),
			"type":             c.TypeStatement,
			"content":          c.Content,
			"notificationType": "comunicado",
		},
	})
	logging.FromContext(ctx).Info("communique created", "svc", "communiques.create", "communique_id", c.ID, "user_id", authorID)
	return c, nil
}

func (s *CommuniqueService) List(ctx context.Context) ([]models.Communique, error) {
	items, err := s.Repo.ListCommuniques(ctx)
	if err != nil {
		return nil, internal("list communiques", err)
	}
	return items, nil
}

func (s *CommuniqueService) Get(ctx context.Context, id string) (*models.Communique, error) {
	c, err := s.Repo.GetCommunique(ctx, id)
	if err != nil {
		return nil, storeErr("get communique", err, fmt.Errorf("communique %s: %w", id, ErrNotFound))
	}
	return c, nil
}

func (s *CommuniqueService) Update(ctx context.Context, id string, in CommuniqueInput) (*models.Communique, error) {
	if err := validateCommunique(&in); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Title = in.Title
	c.Content = in.Content
	c.TypeStatement = in.TypeStatement
	c.Date = s.now()
	if err := s.Repo.SaveCommunique(ctx, c); err != nil {
		return nil, storeErr("update communique", err, ErrNotFound)
	}
	return c, nil
}

func (s *CommuniqueService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.DeleteCommunique(ctx, id); err != nil {
		return storeErr("delete communique", err, fmt.Errorf("communique %s: %w", id, ErrNotFound))
	}
	return nil
}

func validateCommunique(in *CommuniqueInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.TypeStatement = strings.TrimSpace(in.TypeStatement)
	switch {
	case in.Title == "" || runeLen(in.Title) > 200:
		return fmt.Errorf("title must be 1 to 200 characters: %w", ErrValidation)
	case in.Content == "":
		return fmt.Errorf("content is required: %w", ErrValidation)
	case in.TypeStatement == "" || runeLen(in.TypeStatement) > 100:
		return fmt.Errorf("type must be 1 to 100 characters: %w", ErrValidation)
	}
	return nil
}
