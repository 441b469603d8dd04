package subscriberclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("subscriber api: not found")
	ErrNotConfigured = errors.New("subscriber api: endpoint not configured")
)

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("subscriber api: status %d: %s", e.Code, e.Body)
}

type API interface {
	Subscriber(ctx context.Context, clave string) ([]byte, error)
	Comments(ctx context.Context, clave string) ([]byte, error)
	History(ctx context.Context, clave string) ([]byte, error)
}

type Config struct {
	BaseURL        string
	CommentBaseURL string
	HistoryBaseURL string
	AuthID         string
	AuthKey        string
	Timeout        time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) Subscriber(ctx context.Context, clave string) ([]byte, error) {
	return c.get(ctx, c.cfg.BaseURL, clave)
}

func (c *Client) Comments(ctx context.Context, clave string) ([]byte, error) {
	return c.get(ctx, c.cfg.CommentBaseURL, clave)
}

func (c *Client) History(ctx context.Context, clave string) ([]byte, error) {
	return c.get(ctx, c.cfg.HistoryBaseURL, clave)
}

func (c *Client) get(ctx context.Context, base, clave string) ([]byte, error) {
	if base == "" {
		return nil, ErrNotConfigured
	}
	endpoint := strings.TrimRight(base, "/") + "/" + url.PathEscape(strings.TrimSpace(clave))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-auth-id", c.cfg.AuthID)
	req.Header.Set("x-auth-key", c.cfg.AuthKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 512)}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
