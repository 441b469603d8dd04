package subscriberclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsAuthHeaders(t *testing.T) {
	t.Parallel()

	var gotPath, gotID, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotID = r.Header.Get("x-auth-id")
		gotKey = r.Header.Get("x-auth-key")
		_, _ = w.Write([]byte(`{"clave":"123"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/abonados/", AuthID: "id-1", AuthKey: "key-1"})
	body, err := c.Subscriber(context.Background(), " 123 ")
	require.NoError(t, err)

	assert.JSONEq(t, `{"clave":"123"}`, string(body))
	assert.Equal(t, "/abonados/123", gotPath)
	assert.Equal(t, "id-1", gotID)
	assert.Equal(t, "key-1", gotKey)
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/c/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream exploded"))
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/c", CommentBaseURL: srv.URL + "/c"})

	_, err := c.Subscriber(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Comments(context.Background(), "x")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)

	_, err = c.History(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotConfigured)
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("redis down")
	}
	b, ok := m.data[key]
	if !ok {
		return nil, errMiss
	}
	return b, nil
}

func (m *memStore) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("redis down")
	}
	m.data[key] = val
	return nil
}

type countingAPI struct {
	calls int
}

func (a *countingAPI) Subscriber(_ context.Context, clave string) ([]byte, error) {
	a.calls++
	return []byte(`{"clave":"` + clave + `"}`), nil
}

func (a *countingAPI) Comments(context.Context, string) ([]byte, error) {
	a.calls++
	return nil, ErrNotFound
}

func (a *countingAPI) History(context.Context, string) ([]byte, error) {
	a.calls++
	return []byte(`[]`), nil
}

func TestCached(t *testing.T) {
	t.Parallel()

	api := &countingAPI{}
	c := &Cached{next: api, store: &memStore{data: map[string][]byte{}}, ttl: time.Minute}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b, err := c.Subscriber(ctx, "42")
		require.NoError(t, err)
		assert.JSONEq(t, `{"clave":"42"}`, string(b))
	}
	assert.Equal(t, 1, api.calls)

	_, err := c.Comments(ctx, "42")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.Comments(ctx, "42")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, api.calls, "errors are not cached")
}

func TestCached_StoreFailureFallsThrough(t *testing.T) {
	t.Parallel()

	api := &countingAPI{}
	c := &Cached{next: api, store: &memStore{data: map[string][]byte{}, fail: true}, ttl: time.Minute}

	b, err := c.History(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
	assert.Equal(t, 1, api.calls)
}
