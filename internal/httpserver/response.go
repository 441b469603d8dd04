package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/service"
)

// Envelope wraps every response body, successful or not.
type Envelope struct {
	Status     bool   `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// failure is an HTTPError message that also carries a machine readable code.
type failure struct {
	Message string
	Code    string
}

func respond(c echo.Context, code int, msg string, data any) error {
	return c.JSON(code, Envelope{Status: code < 400, StatusCode: code, Message: msg, Data: data})
}

func ok(c echo.Context, msg string, data any) error {
	return respond(c, http.StatusOK, msg, data)
}

func created(c echo.Context, msg string, data any) error {
	return respond(c, http.StatusCreated, msg, data)
}

// ErrorHandler renders errors inside the envelope. 5xx details are logged and
// replaced by a generic message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var data any

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case failure:
			msg = m.Message
			data = map[string]string{"code": m.Code}
		default:
			msg = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request failed", slog.Int("status", code), slog.Any("error", err))
		msg = "internal error"
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = respond(c, code, msg, data)
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSelfAdminRemoval),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail turns a service error into an echo.HTTPError and logs it at a level
// matching its status.
func fail(l *slog.Logger, err error) error {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		l.Error("handler failed", "status", code, "error", err)
		return echo.NewHTTPError(code, "internal error").SetInternal(err)
	}
	l.Warn("request rejected", "status", code, "error", err)
	msg := err.Error()
	if code == http.StatusUnauthorized {
		msg = service.ErrUnauthorized.Error()
	}
	return echo.NewHTTPError(code, msg).SetInternal(err)
}
