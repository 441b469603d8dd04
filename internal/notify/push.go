package notify

import (
	"context"
	"log/slog"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
)

const (
	TopicCommuniques   = "comunicados"
	TopicRegistrations = "agua_registros"

	DateLayout = "2006-01-02 15:04"
)

type Notification struct {
	Topic string
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender only records the notification. It stands in when no push
// provider is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, n Notification) error {
	logging.FromContext(ctx).Info("push notification skipped, no provider configured",
		slog.String("topic", n.Topic),
		slog.String("title", n.Title),
	)
	return nil
}
