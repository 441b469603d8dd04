package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/models"
	"github.com/Skotchmaster/water_backoffice/internal/service"
	"github.com/Skotchmaster/water_backoffice/internal/transport"
	authmw "github.com/Skotchmaster/water_backoffice/pkg/middleware/auth"
)

type CommuniqueHTTP struct {
	Svc *service.CommuniqueService
}

type communiqueCreated struct {
	Communique         *models.Communique `json:"communique"`
	NotificationStatus string             `json:"notificationStatus"`
}

func communiqueInput(req transport.CommuniqueRequest) service.CommuniqueInput {
	return service.CommuniqueInput{Title: req.Title, Content: req.Content, TypeStatement: req.TypeStatement}
}

func (h *CommuniqueHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "communique_create")

	caller, found := authmw.CallerFrom(c)
	if !found {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	var req transport.CommuniqueRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cm, err := h.Svc.Create(ctx, caller.UserID, communiqueInput(req))
	if err != nil {
		return fail(l, err)
	}
	return created(c, "communique created", communiqueCreated{Communique: cm, NotificationStatus: service.NotificationQueued})
}

func (h *CommuniqueHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "communique_list"), err)
	}
	return ok(c, "communiques", items)
}

func (h *CommuniqueHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	cm, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "communique_get"), err)
	}
	return ok(c, "communique", cm)
}

func (h *CommuniqueHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	var req transport.CommuniqueRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cm, err := h.Svc.Update(ctx, c.Param("id"), communiqueInput(req))
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "communique_update"), err)
	}
	return ok(c, "communique updated", cm)
}

func (h *CommuniqueHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Svc.Delete(ctx, c.Param("id")); err != nil {
		return fail(logging.FromContext(ctx).With("handler", "communique_delete"), err)
	}
	return ok(c, "communique deleted", nil)
}
