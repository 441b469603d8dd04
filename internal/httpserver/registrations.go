package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/water_backoffice/internal/service"
	"github.com/Skotchmaster/water_backoffice/internal/transport"
)

type RegistrationHTTP struct {
	Svc *service.RegistrationService
}

func registrationInput(req transport.RegistrationRequest) service.RegistrationInput {
	return service.RegistrationInput{
		Date:            req.Date,
		Observations:    req.Observations,
		NeighborhoodIDs: req.NeighborhoodIDs,
	}
}

func (h *RegistrationHTTP) List(c echo.Context) error {
	out, err := h.Svc.List(c.Request().Context())
	return reply(c, "registration_list", "water registrations", out, err)
}

func (h *RegistrationHTTP) Get(c echo.Context) error {
	out, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	return reply(c, "registration_get", "water registration", out, err)
}

func (h *RegistrationHTTP) Create(c echo.Context) error {
	var req transport.RegistrationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.Create(c.Request().Context(), registrationInput(req))
	return replyCreated(c, "registration_create", "water registration created", out, err)
}

func (h *RegistrationHTTP) Update(c echo.Context) error {
	var req transport.RegistrationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.Update(c.Request().Context(), c.Param("id"), registrationInput(req))
	return reply(c, "registration_update", "water registration updated", out, err)
}

func (h *RegistrationHTTP) Delete(c echo.Context) error {
	err := h.Svc.Delete(c.Request().Context(), c.Param("id"))
	return reply(c, "registration_delete", "water registration deleted", nil, err)
}
