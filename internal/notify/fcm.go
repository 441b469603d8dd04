package notify

import (
	"context"
	"errors"
	"fmt"

	fcm "google.golang.org/api/fcm/v1"
	"google.golang.org/api/option"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
)

// FCMSender delivers notifications through the Firebase Cloud Messaging v1 API.
type FCMSender struct {
	svc    *fcm.Service
	parent string
}

func NewFCMSender(ctx context.Context, projectID, credentialsFile string, opts ...option.ClientOption) (*FCMSender, error) {
	if projectID == "" {
		return nil, errors.New("fcm: empty project id")
	}
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	svc, err := fcm.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("fcm.NewService: %w", err)
	}
	return &FCMSender{svc: svc, parent: "projects/" + projectID}, nil
}

func (s *FCMSender) Send(ctx context.Context, n Notification) error {
	if n.Topic == "" && n.Token == "" {
		return errors.New("fcm: notification needs a topic or a device token")
	}

	msg := &fcm.Message{
		Topic: n.Topic,
		Token: n.Token,
		Notification: &fcm.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
	}

	resp, err := s.svc.Projects.Messages.Send(s.parent, &fcm.SendMessageRequest{Message: msg}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("fcm send to %q: %w", n.Topic, err)
	}
	logging.FromContext(ctx).Info("push notification sent", "topic", n.Topic, "message", resp.Name)
	return nil
}
