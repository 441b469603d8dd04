package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
	"github.com/Skotchmaster/water_backoffice/internal/repo/repotest"
	"github.com/Skotchmaster/water_backoffice/internal/service"
	"github.com/Skotchmaster/water_backoffice/internal/storage"
	authmw "github.com/Skotchmaster/water_backoffice/pkg/middleware/auth"
	"github.com/Skotchmaster/water_backoffice/pkg/subscriberclient"
	"github.com/Skotchmaster/water_backoffice/pkg/tokens"
)

const (
	adminUser     = "admin"
	adminPassword = "Adm1n!Secret"
)

type capturedEvent struct {
	Topic string
	Event any
}

type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturePublisher) PublishEvent(_ context.Context, topic, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Topic: topic, Event: event})
	return nil
}

func (p *capturePublisher) all() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.events...)
}

type captureSender struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (s *captureSender) Send(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *captureSender) all() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.sent...)
}

type bucket struct {
	mu sync.Mutex
	n  int
}

func (b *bucket) Upload(_ context.Context, f storage.File, _ string) (storage.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.n++
	id := fmt.Sprintf("reports/2024/05/%d-%s", b.n, f.Name)
	return storage.Object{ID: id, URL: b.URL(id)}, nil
}

func (b *bucket) Delete(context.Context, string) error { return nil }

func (b *bucket) URL(id string) string { return "https://cdn.example.com/" + id }

type stubSubscribers struct {
	records map[string]string
}

func (s stubSubscribers) Subscriber(_ context.Context, clave string) ([]byte, error) {
	rec, found := s.records[clave]
	if !found {
		return nil, subscriberclient.ErrNotFound
	}
	return []byte(rec), nil
}

func (s stubSubscribers) Comments(context.Context, string) ([]byte, error) {
	return []byte(`[{"comentario":"lectura estimada"}]`), nil
}

func (s stubSubscribers) History(context.Context, string) ([]byte, error) {
	return nil, errors.New("upstream timeout")
}

type testServer struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	bg     *notify.Dispatcher
	events *capturePublisher
	push   *captureSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	r := repotest.New(t)
	require.NoError(t, r.Seed(ctx, repo.AdminSeed{Username: adminUser, Email: "admin@example.com", Password: adminPassword}))

	iss, err := tokens.NewIssuer(tokens.Config{
		Secret:     []byte("http-test-secret-http-test-secret"),
		Issuer:     "water-backoffice",
		Audience:   "water-backoffice-clients",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	ts := &testServer{
		e:      echo.New(),
		repo:   r,
		bg:     notify.NewDispatcher(time.Second),
		events: &capturePublisher{},
		push:   &captureSender{},
	}

	Register(ts.e, &Deps{
		DB:   r.DB,
		Auth: authmw.NewAuth(iss),
		Account: &AccountHTTP{
			Auth:  &service.AuthService{Repo: r, Tokens: iss, Events: ts.events, Bg: ts.bg, MailTopic: "mail_events"},
			Roles: &service.RoleService{Repo: r},
		},
		Reports: &ReportHTTP{Svc: &service.ReportService{
			Repo:      r,
			Files:     &bucket{},
			Validator: storage.NewFileValidator([]string{".png"}, []string{"image/png"}, 1),
			Bg:        ts.bg,
		}},
		Communiques:   &CommuniqueHTTP{Svc: &service.CommuniqueService{Repo: r, Push: ts.push, Bg: ts.bg}},
		Reference:     &ReferenceHTTP{Svc: &service.ReferenceService{Repo: r}},
		Registrations: &RegistrationHTTP{Svc: &service.RegistrationService{Repo: r, Push: ts.push, Bg: ts.bg}},
		Subscribers: &SubscriberHTTP{Svc: &service.SubscriberService{API: stubSubscribers{records: map[string]string{
			"1001": `{"clave":"1001","nombreabonado":"JUAN PEREZ","totalMora":12.5}`,
		}}}},
	})
	return ts
}

func (ts *testServer) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ts.bg.Wait(ctx))
}

// do sends body as JSON unless it is already an io.Reader.
func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		rd = b
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

type envelopeOf[T any] struct {
	Status     bool   `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelopeOf[T] {
	t.Helper()
	var env envelopeOf[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

type loginData struct {
	Username     string    `json:"username"`
	Token        string    `json:"token"`
	TokenExp     time.Time `json:"tokenExpiration"`
	RefreshToken string    `json:"refreshToken"`
	Roles        []string  `json:"roles"`
}

func (ts *testServer) login(t *testing.T, username, password string) loginData {
	t.Helper()
	rec := ts.do(http.MethodPost, "/api/account/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[loginData](t, rec).Data
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	return ts.login(t, adminUser, adminPassword).Token
}

func (ts *testServer) registerUser(t *testing.T, adminTok, username string, roles ...string) {
	t.Helper()
	rec := ts.do(http.MethodPost, "/api/account/register", adminTok, map[string]any{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "Str0ng!Pass",
		"firstName": "Test",
		"lastName":  "User",
		"roles":     roles,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
