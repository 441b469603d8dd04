package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/water_backoffice/internal/service"
)

// SubscriberHTTP proxies the billing system's subscriber lookups.
type SubscriberHTTP struct {
	Svc *service.SubscriberService
}

func (h *SubscriberHTTP) Lookup(c echo.Context) error {
	out, err := h.Svc.Lookup(c.Request().Context(), c.Param("clave"))
	return reply(c, "subscriber_lookup", "subscriber", out, err)
}

func (h *SubscriberHTTP) LookupFull(c echo.Context) error {
	out, err := h.Svc.LookupFull(c.Request().Context(), c.Param("clave"))
	return reply(c, "subscriber_lookup_full", "subscriber", out, err)
}

func (h *SubscriberHTTP) Comments(c echo.Context) error {
	out, err := h.Svc.Comments(c.Request().Context(), c.Param("clave"))
	return reply(c, "subscriber_comments", "comments", out, err)
}

func (h *SubscriberHTTP) History(c echo.Context) error {
	out, err := h.Svc.History(c.Request().Context(), c.Param("clave"))
	return reply(c, "subscriber_history", "payment history", out, err)
}
