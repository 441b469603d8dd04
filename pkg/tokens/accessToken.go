package tokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	Name   string   `json:"name"`
	UserID string   `json:"uid,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs claims with a fresh jti and the configured issuer, audience and ttl.
func (i *Issuer) IssueAccessToken(claims Claims) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.cfg.AccessTTL)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.Name,
		Issuer:    i.cfg.Issuer,
		Audience:  jwt.ClaimStrings{i.cfg.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// ParseAccessToken performs full validation: signature, expiry, issuer and audience.
func (i *Issuer) ParseAccessToken(tokenStr string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithAudience(i.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	return &claims, nil
}

// ExtractClaimsIgnoringExpiry checks only the signature. An expired token is accepted.
func (i *Issuer) ExtractClaimsIgnoringExpiry(tokenStr string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, classify(err)
	}
	return &claims, nil
}

func (i *Issuer) keyFunc(*jwt.Token) (any, error) {
	return i.cfg.Secret, nil
}

// classify maps a jwt error onto one of the package sentinels. jwt errors
// already lead with the same text, so only the remaining detail is kept.
func classify(err error) error {
	sentinel := ErrInvalidToken
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		sentinel = ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		sentinel = ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		sentinel = ErrExpiredToken
	}

	detail := err.Error()
	for _, prefix := range []string{sentinel.Error(), jwt.ErrTokenInvalidClaims.Error()} {
		detail = strings.TrimPrefix(detail, prefix+": ")
	}
	if detail == "" || detail == sentinel.Error() {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, detail)
}
