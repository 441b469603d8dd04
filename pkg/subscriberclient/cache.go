package subscriberclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
)

var errMiss = errors.New("cache miss")

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type redisStore struct {
	rdb redis.Cmdable
}

func (s redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errMiss
	}
	return b, err
}

func (s redisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, val, ttl).Err()
}

// Cached serves repeated lookups for the same clave from redis. Cache
// failures fall through to the upstream API.
type Cached struct {
	next  API
	store store
	ttl   time.Duration
}

func NewCached(next API, rdb redis.Cmdable, ttl time.Duration) *Cached {
	return &Cached{next: next, store: redisStore{rdb: rdb}, ttl: ttl}
}

func (c *Cached) Subscriber(ctx context.Context, clave string) ([]byte, error) {
	return c.through(ctx, "subscriber", clave, c.next.Subscriber)
}

func (c *Cached) Comments(ctx context.Context, clave string) ([]byte, error) {
	return c.through(ctx, "comments", clave, c.next.Comments)
}

func (c *Cached) History(ctx context.Context, clave string) ([]byte, error) {
	return c.through(ctx, "history", clave, c.next.History)
}

func (c *Cached) through(ctx context.Context, kind, clave string, fetch func(context.Context, string) ([]byte, error)) ([]byte, error) {
	l := logging.FromContext(ctx).With("component", "subscriber_cache", "kind", kind)
	key := "subscribers:" + kind + ":" + clave

	b, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		return b, nil
	case !errors.Is(err, errMiss):
		l.Warn("cache get failed", "error", err)
	}

	b, err = fetch(ctx, clave)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		l.Warn("cache set failed", "error", err)
	}
	return b, nil
}
