package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/pkg/tokens"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxRoles    = "roles"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID   string
	Username string
	Roles    []string
}

func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

type Auth struct {
	Tokens *tokens.Issuer
}

func NewAuth(iss *tokens.Issuer) *Auth {
	return &Auth{Tokens: iss}
}

// RequireAuth accepts a valid bearer access token and stores the caller on the context.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Tokens.ParseAccessToken(raw)
		if err != nil || claims.UserID == "" {
			logging.FromContext(c.Request().Context()).Warn("access token rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Name)
		c.Set(ctxRoles, claims.Roles)

		l := logging.FromContext(c.Request().Context()).With("user_id", claims.UserID)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			if !caller.HasRole(role) {
				return echo.NewHTTPError(http.StatusForbidden, role+" role required")
			}
			return next(c)
		}
	}
}

func CallerFrom(c echo.Context) (Caller, bool) {
	id, _ := c.Get(ctxUserID).(string)
	if id == "" {
		return Caller{}, false
	}
	name, _ := c.Get(ctxUsername).(string)
	roles, _ := c.Get(ctxRoles).([]string)
	return Caller{UserID: id, Username: name, Roles: roles}, true
}

func bearer(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
