package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Skotchmaster/water_backoffice/internal/hash"
	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
	"github.com/Skotchmaster/water_backoffice/pkg/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	Tokens    *tokens.Issuer
	Events    EventPublisher
	Bg        *notify.Dispatcher
	MailTopic string
}

type LoginResult struct {
	UserID       string
	Username     string
	Email        string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	Roles        []string
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []string
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if repo.IsNotFound(err) {
			hash.BurnCompare(password)
			l.Warn("login failed", "reason", "invalid credentials")
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "error", err)
		return nil, internal("find user", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) || user.Status != models.StatusActive {
		l.Warn("login failed", "reason", "invalid credentials", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(ctx, user, "")
	if err != nil {
		l.Error("login failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	l.Info("login ok", "user_id", user.ID)
	return res, nil
}

// Refresh trades an access token, expired or not, plus the current refresh
// token for a new pair. The stored refresh token is rotated.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if accessToken == "" || refreshToken == "" {
		return nil, fmt.Errorf("missing tokens: %w", ErrUnauthorized)
	}

	claims, err := s.Tokens.ExtractClaimsIgnoringExpiry(accessToken)
	if err != nil {
		l.Warn("refresh rejected", "reason", "bad access token", "error", err)
		return nil, fmt.Errorf("bad access token: %w", ErrUnauthorized)
	}
	if claims.UserID == "" {
		l.Warn("refresh rejected", "reason", "missing user id claim")
		return nil, fmt.Errorf("missing user id claim: %w", ErrUnauthorized)
	}

	user, err := s.Repo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("refresh rejected", "reason", "unknown user", "user_id", claims.UserID)
			return nil, fmt.Errorf("unknown user: %w", ErrUnauthorized)
		}
		l.Error("refresh failed", "error", err)
		return nil, internal("find user", err)
	}

	presented := tokens.Fingerprint(refreshToken)
	switch {
	case user.Status != models.StatusActive:
		l.Warn("refresh rejected", "reason", "user disabled", "user_id", user.ID)
		return nil, fmt.Errorf("user disabled: %w", ErrUnauthorized)
	case user.RefreshTokenHash == nil || user.RefreshTokenExpiry == nil:
		l.Warn("refresh rejected", "reason", "no active refresh token", "user_id", user.ID)
		return nil, fmt.Errorf("no active refresh token: %w", ErrUnauthorized)
	case subtle.ConstantTimeCompare([]byte(*user.RefreshTokenHash), []byte(presented)) != 1:
		l.Warn("refresh rejected", "reason", "refresh token mismatch", "user_id", user.ID)
		return nil, fmt.Errorf("refresh token mismatch: %w", ErrUnauthorized)
	case user.RefreshTokenExpiry.Before(s.Tokens.Now()):
		l.Warn("refresh rejected", "reason", "refresh token expired", "user_id", user.ID)
		return nil, fmt.Errorf("refresh token expired: %w", ErrUnauthorized)
	}

	res, err := s.issue(ctx, user, presented)
	if err != nil {
		l.Warn("refresh failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	l.Info("refresh ok", "user_id", user.ID)
	return res, nil
}

// LogOut drops the caller's refresh token. Access tokens stay valid until they expire.
func (s *AuthService) LogOut(ctx context.Context, callerID string) error {
	if err := s.Repo.ClearRefreshToken(ctx, callerID); err != nil {
		logging.FromContext(ctx).Error("logout failed", "svc", "auth.logout", "error", err)
		return internal("clear refresh token", err)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	pw, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register failed", "reason", "cannot hash the password", "error", err)
		return nil, internal("hash password", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pw,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Status:       models.StatusActive,
	}

	err = s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		taken, err := tx.UsernameOrEmailTaken(ctx, user.Username, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("username or email: %w", ErrAlreadyExists)
		}
		roles, err := tx.EnsureRoles(ctx, in.Roles)
		if err != nil {
			return err
		}
		user.Roles = roles
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		if isDomain(err) {
			l.Warn("register rejected", "error", err)
			return nil, err
		}
		l.Error("register failed", "error", err)
		return nil, storeErr("create user", err, ErrNotFound)
	}

	l.Info("user registered", "user_id", user.ID, "roles", user.RoleNames())
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User, current string) (*LoginResult, error) {
	roles := user.RoleNames()
	access, accessExp, err := s.Tokens.IssueAccessToken(tokens.Claims{
		Name:   user.Username,
		UserID: user.ID,
		Roles:  roles,
	})
	if err != nil {
		return nil, internal("issue access token", err)
	}

	refresh, err := s.Tokens.IssueRefreshToken()
	if err != nil {
		return nil, internal("issue refresh token", err)
	}
	refreshExp := s.Tokens.RefreshExpiry()
	next := tokens.Fingerprint(refresh)

	if current == "" {
		if err := s.Repo.SetRefreshToken(ctx, user.ID, next, refreshExp); err != nil {
			return nil, internal("store refresh token", err)
		}
	} else {
		ok, err := s.Repo.RotateRefreshToken(ctx, user.ID, current, next, refreshExp, s.Tokens.Now())
		if err != nil {
			return nil, internal("rotate refresh token", err)
		}
		if !ok {
			return nil, fmt.Errorf("refresh token already rotated: %w", ErrUnauthorized)
		}
	}

	return &LoginResult{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
		Roles:        roles,
	}, nil
}

func validateRegister(in RegisterInput) error {
	switch {
	case in.Username == "" || len([]rune(in.Username)) > 50:
		return fmt.Errorf("username must be 1 to 50 characters: %w", ErrValidation)
	case strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "":
		return fmt.Errorf("first and last name are required: %w", ErrValidation)
	case len(in.Roles) == 0:
		return fmt.Errorf("at least one role is required: %w", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("invalid email: %w", ErrValidation)
	}
	for _, r := range in.Roles {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("role names must not be empty: %w", ErrValidation)
		}
	}
	if err := hash.ValidatePassword(in.Password); err != nil {
		return fmt.Errorf("%v: %w", err, ErrValidation)
	}
	return nil
}
