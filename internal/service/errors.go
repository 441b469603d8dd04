package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrRoleNotFound       = fmt.Errorf("role %w", ErrNotFound)
	ErrRoleNotAssigned    = fmt.Errorf("role assignment %w", ErrNotFound)
	ErrAlreadyExists      = errors.New("already exists")
	ErrConflict           = errors.New("conflict")
	ErrSelfAdminRemoval   = errors.New("cannot remove the admin role from yourself")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("validation")
	ErrInternal           = errors.New("internal error")
)

// EventPublisher is the message broker side of the service layer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

// storeErr maps repository failures onto the service taxonomy.
func storeErr(op string, err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case repo.IsNotFound(err):
		return notFound
	case repo.IsDuplicate(err):
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	case repo.IsForeignKey(err):
		return fmt.Errorf("%s: still referenced: %w", op, ErrConflict)
	default:
		return internal(op, err)
	}
}

func publishAsync(ctx context.Context, bg *notify.Dispatcher, p EventPublisher, topic, key string, event any) {
	if p == nil || bg == nil || topic == "" {
		return
	}
	bg.Go(ctx, "publish."+topic, func(ctx context.Context) error {
		return p.PublishEvent(ctx, topic, key, event)
	})
}

func pushAsync(ctx context.Context, bg *notify.Dispatcher, s notify.Sender, n notify.Notification) {
	if s == nil || bg == nil {
		return
	}
	bg.Go(ctx, "push."+n.Topic, func(ctx context.Context) error {
		return s.Send(ctx, n)
	})
}

var domainErrors = []error{
	ErrInvalidCredentials, ErrUnauthorized, ErrNotFound, ErrAlreadyExists, ErrConflict,
	ErrSelfAdminRemoval, ErrInvalidToken, ErrValidation, ErrInternal,
}

func isDomain(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
