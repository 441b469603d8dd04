package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
	"github.com/Skotchmaster/water_backoffice/internal/repo/repotest"
	"github.com/Skotchmaster/water_backoffice/pkg/tokens"
)

// clock is a settable time source shared by the issuer and the services.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Now().UTC().Truncate(time.Second)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Topic string
	Key   string
	Event any
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.Notification
	fail bool
}

func (s *recordingSender) Send(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	if s.fail {
		return errors.New("push provider unavailable")
	}
	return nil
}

func (s *recordingSender) all() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.sent...)
}

type authFixture struct {
	repo   *repo.GormRepo
	clock  *clock
	events *recordingPublisher
	bg     *notify.Dispatcher
	svc    *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	iss, err := tokens.NewIssuer(tokens.Config{
		Secret:     []byte("test-jwt-secret-test-jwt-secret!"),
		Issuer:     "water-backoffice",
		Audience:   "water-backoffice-clients",
		AccessTTL:  60 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	f := &authFixture{
		repo:   repotest.New(t),
		clock:  newClock(),
		events: &recordingPublisher{},
		bg:     notify.NewDispatcher(time.Second),
	}
	f.svc = &AuthService{
		Repo:      f.repo,
		Tokens:    iss.WithClock(f.clock.Now),
		Events:    f.events,
		Bg:        f.bg,
		MailTopic: "mail_events",
	}
	return f
}

func (f *authFixture) register(t *testing.T, username, password string, roles ...string) string {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
		Roles:     roles,
	})
	require.NoError(t, err)
	return u.ID
}

func waitBackground(t *testing.T, bg *notify.Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bg.Wait(ctx))
}
