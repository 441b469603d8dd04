package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Skotchmaster/water_backoffice/internal/hash"
	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
)

const ResetTokenTTL = 15 * time.Minute

var resetTokenSpace = big.NewInt(100_000_000)

// PasswordResetRequested is handed to the mail collaborator over the broker.
type PasswordResetRequested struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newResetToken() (string, error) {
	n, err := rand.Int(rand.Reader, resetTokenSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%08d", n.Int64()), nil
}

// GeneratePasswordResetToken never reveals whether the email belongs to a user.
func (s *AuthService) GeneratePasswordResetToken(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_token")

	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Info("reset requested for unknown email")
			return nil
		}
		l.Error("reset token failed", "error", err)
		return internal("find user", err)
	}

	token, err := newResetToken()
	if err != nil {
		return internal("generate reset token", err)
	}
	exp := s.Tokens.Now().Add(ResetTokenTTL)
	if err := s.Repo.SetPasswordResetToken(ctx, user.ID, token, exp); err != nil {
		l.Error("reset token failed", "user_id", user.ID, "error", err)
		return internal("store reset token", err)
	}

	publishAsync(ctx, s.Bg, s.Events, s.MailTopic, user.ID, PasswordResetRequested{
		Type:      "password_reset_requested",
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: exp,
	})
	l.Info("reset token issued", "user_id", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	user, err := s.Repo.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrInvalidToken
		}
		l.Error("reset failed", "error", err)
		return internal("find user", err)
	}

	switch {
	case user.PasswordResetToken == nil || user.PasswordResetExpiry == nil:
		return ErrInvalidToken
	case subtle.ConstantTimeCompare([]byte(*user.PasswordResetToken), []byte(token)) != 1:
		l.Warn("reset rejected", "reason", "token mismatch", "user_id", user.ID)
		return ErrInvalidToken
	case user.PasswordResetExpiry.Before(s.Tokens.Now()):
		l.Warn("reset rejected", "reason", "token expired", "user_id", user.ID)
		return ErrInvalidToken
	}

	if err := hash.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%v: %w", err, ErrValidation)
	}
	pw, err := hash.HashPassword(newPassword)
	if err != nil {
		return internal("hash password", err)
	}

	ok, err := s.Repo.ResetPassword(ctx, user.ID, token, pw)
	if err != nil {
		l.Error("reset failed", "user_id", user.ID, "error", err)
		return internal("reset password", err)
	}
	if !ok {
		return ErrInvalidToken
	}
	l.Info("password reset", "user_id", user.ID)
	return nil
}
