package tokens

import (
	"errors"
	"time"
)

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformedToken   = errors.New("token is malformed")
	ErrExpiredToken     = errors.New("token is expired")
	ErrInvalidToken     = errors.New("token is invalid")
)

// Config is everything the issuer needs to sign and verify tokens.
type Config struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Issuer struct {
	cfg Config
	now func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("tokens: empty signing secret")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("tokens: ttl must be positive")
	}
	return &Issuer{cfg: cfg, now: time.Now}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

func (i *Issuer) Now() time.Time { return i.now() }

func (i *Issuer) RefreshExpiry() time.Time { return i.now().Add(i.cfg.RefreshTTL) }
