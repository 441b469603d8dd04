package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/internal/service"
	"github.com/Skotchmaster/water_backoffice/internal/transport"
	authmw "github.com/Skotchmaster/water_backoffice/pkg/middleware/auth"
)

type AccountHTTP struct {
	Auth  *service.AuthService
	Roles *service.RoleService
}

func loginResponse(res *service.LoginResult) transport.LoginResponse {
	return transport.LoginResponse{
		Username:          res.Username,
		Email:             res.Email,
		Token:             res.AccessToken,
		TokenExpiration:   res.AccessExp,
		RefreshToken:      res.RefreshToken,
		RefreshExpiration: res.RefreshExp,
		Roles:             res.Roles,
	}
}

func userResponse(u *models.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.RoleNames(),
	}
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_login")

	var req transport.LoginRequest
	if err := bind(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(l, err)
	}
	l.Info("login_successful", "user_id", res.UserID)
	return ok(c, "login successful", loginResponse(res))
}

func (h *AccountHTTP) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_refresh")

	var req transport.RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.Auth.Refresh(ctx, req.Token, req.RefreshToken)
	if err != nil {
		return fail(l, err)
	}
	return ok(c, "token refreshed", loginResponse(res))
}

func (h *AccountHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_logout")

	caller, found := authmw.CallerFrom(c)
	if !found {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	if err := h.Auth.LogOut(ctx, caller.UserID); err != nil {
		return fail(l, err)
	}
	l.Info("successful_logout")
	return ok(c, "logged out", nil)
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_register")

	var req transport.RegisterRequest
	if err := bind(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	u, err := h.Auth.Register(ctx, service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
	})
	if err != nil {
		return fail(l, err)
	}
	return created(c, "user registered", userResponse(u))
}

func (h *AccountHTTP) CreateRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_create_role")

	var req transport.CreateRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.Roles.CreateRole(ctx, req.Name)
	if err != nil {
		return fail(l, err)
	}
	return created(c, "role created", role)
}

func (h *AccountHTTP) GetRoles(c echo.Context) error {
	ctx := c.Request().Context()
	roles, err := h.Roles.ListRoles(ctx)
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "account_get_roles"), err)
	}
	return ok(c, "roles", roles)
}

func (h *AccountHTTP) GetRole(c echo.Context) error {
	ctx := c.Request().Context()
	role, err := h.Roles.GetRole(ctx, c.Param("id"))
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "account_get_role"), err)
	}
	return ok(c, "role", role)
}

func (h *AccountHTTP) AssignRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_assign_role")

	var req transport.AssignRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Roles.AssignRole(ctx, c.Param("userId"), req.RoleName); err != nil {
		return fail(l, err)
	}
	return ok(c, "role assigned", nil)
}

func (h *AccountHTTP) RemoveRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_remove_role")

	caller, found := authmw.CallerFrom(c)
	if !found {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	roleName, err := url.PathUnescape(c.Param("roleName"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role name")
	}

	if err := h.Roles.RemoveRole(ctx, caller.UserID, c.Param("userId"), roleName); err != nil {
		return fail(l, err)
	}
	return ok(c, "role removed", nil)
}

// GeneratePasswordResetToken answers the same way whether or not the email is known.
func (h *AccountHTTP) GeneratePasswordResetToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_reset_token")

	var req transport.ResetTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Auth.GeneratePasswordResetToken(ctx, req.Email); err != nil {
		l.Error("reset token generation failed", "error", err)
	}
	return ok(c, "if the email is registered a reset code has been sent", nil)
}

func (h *AccountHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_reset_password")

	var req transport.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := h.Auth.ResetPassword(ctx, req.Email, req.Token, req.NewPassword)
	switch {
	case err == nil:
		return ok(c, "password reset", nil)
	case errors.Is(err, service.ErrInvalidToken):
		l.Warn("reset rejected", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, failure{Message: "invalid or expired token", Code: "InvalidToken"})
	default:
		return fail(l, err)
	}
}
