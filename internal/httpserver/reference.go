package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/service"
	"github.com/Skotchmaster/water_backoffice/internal/transport"
)

// ReferenceHTTP serves blocks, neighborhood colonies, lines and district points.
type ReferenceHTTP struct {
	Svc *service.ReferenceService
}

// reply renders a lookup result or maps its error.
func reply(c echo.Context, handler, msg string, data any, err error) error {
	if err != nil {
		return fail(logging.FromContext(c.Request().Context()).With("handler", handler), err)
	}
	return ok(c, msg, data)
}

func replyCreated(c echo.Context, handler, msg string, data any, err error) error {
	if err != nil {
		return fail(logging.FromContext(c.Request().Context()).With("handler", handler), err)
	}
	return created(c, msg, data)
}

func (h *ReferenceHTTP) ListBlocks(c echo.Context) error {
	out, err := h.Svc.ListBlocks(c.Request().Context())
	return reply(c, "block_list", "blocks", out, err)
}

func (h *ReferenceHTTP) GetBlock(c echo.Context) error {
	out, err := h.Svc.GetBlock(c.Request().Context(), c.Param("id"))
	return reply(c, "block_get", "block", out, err)
}

func (h *ReferenceHTTP) CreateBlock(c echo.Context) error {
	var req transport.NameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.CreateBlock(c.Request().Context(), req.Name)
	return replyCreated(c, "block_create", "block created", out, err)
}

func (h *ReferenceHTTP) UpdateBlock(c echo.Context) error {
	var req transport.NameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.UpdateBlock(c.Request().Context(), c.Param("id"), req.Name)
	return reply(c, "block_update", "block updated", out, err)
}

func (h *ReferenceHTTP) DeleteBlock(c echo.Context) error {
	err := h.Svc.DeleteBlock(c.Request().Context(), c.Param("id"))
	return reply(c, "block_delete", "block deleted", nil, err)
}

func (h *ReferenceHTTP) ListNeighborhoods(c echo.Context) error {
	out, err := h.Svc.ListNeighborhoods(c.Request().Context(), "")
	return reply(c, "neighborhood_list", "neighborhood colonies", out, err)
}

func (h *ReferenceHTTP) NeighborhoodsByBlock(c echo.Context) error {
	out, err := h.Svc.ListNeighborhoods(c.Request().Context(), c.Param("blockId"))
	return reply(c, "neighborhood_by_block", "neighborhood colonies", out, err)
}

func (h *ReferenceHTTP) GetNeighborhood(c echo.Context) error {
	out, err := h.Svc.GetNeighborhood(c.Request().Context(), c.Param("id"))
	return reply(c, "neighborhood_get", "neighborhood colony", out, err)
}

func (h *ReferenceHTTP) CreateNeighborhood(c echo.Context) error {
	var req transport.NeighborhoodRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.CreateNeighborhood(c.Request().Context(), req.Name, req.BlockID)
	return replyCreated(c, "neighborhood_create", "neighborhood colony created", out, err)
}

func (h *ReferenceHTTP) UpdateNeighborhood(c echo.Context) error {
	var req transport.NeighborhoodRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.UpdateNeighborhood(c.Request().Context(), c.Param("id"), req.Name, req.BlockID)
	return reply(c, "neighborhood_update", "neighborhood colony updated", out, err)
}

func (h *ReferenceHTTP) DeleteNeighborhood(c echo.Context) error {
	err := h.Svc.DeleteNeighborhood(c.Request().Context(), c.Param("id"))
	return reply(c, "neighborhood_delete", "neighborhood colony deleted", nil, err)
}

func (h *ReferenceHTTP) ListLines(c echo.Context) error {
	out, err := h.Svc.ListLines(c.Request().Context(), "")
	return reply(c, "line_list", "lines", out, err)
}

func (h *ReferenceHTTP) LinesByNeighborhood(c echo.Context) error {
	out, err := h.Svc.ListLines(c.Request().Context(), c.Param("id"))
	return reply(c, "line_by_neighborhood", "lines", out, err)
}

func (h *ReferenceHTTP) GetLine(c echo.Context) error {
	out, err := h.Svc.GetLine(c.Request().Context(), c.Param("id"))
	return reply(c, "line_get", "line", out, err)
}

func (h *ReferenceHTTP) CreateLine(c echo.Context) error {
	var req transport.LineRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.CreateLine(c.Request().Context(), req.Name, req.NeighborhoodColonyID)
	return replyCreated(c, "line_create", "line created", out, err)
}

func (h *ReferenceHTTP) UpdateLine(c echo.Context) error {
	var req transport.LineRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.UpdateLine(c.Request().Context(), c.Param("id"), req.Name, req.NeighborhoodColonyID)
	return reply(c, "line_update", "line updated", out, err)
}

func (h *ReferenceHTTP) DeleteLine(c echo.Context) error {
	err := h.Svc.DeleteLine(c.Request().Context(), c.Param("id"))
	return reply(c, "line_delete", "line deleted", nil, err)
}

func pointInput(req transport.DistrictPointRequest) service.PointInput {
	return service.PointInput{
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		NeighborhoodColonyID: req.NeighborhoodColonyID,
	}
}

func (h *ReferenceHTTP) ListDistrictPoints(c echo.Context) error {
	out, err := h.Svc.ListDistrictPoints(c.Request().Context(), "")
	return reply(c, "point_list", "district points", out, err)
}

func (h *ReferenceHTTP) DistrictPointsByNeighborhood(c echo.Context) error {
	out, err := h.Svc.ListDistrictPoints(c.Request().Context(), c.Param("id"))
	return reply(c, "point_by_neighborhood", "district points", out, err)
}

func (h *ReferenceHTTP) GetDistrictPoint(c echo.Context) error {
	out, err := h.Svc.GetDistrictPoint(c.Request().Context(), c.Param("id"))
	return reply(c, "point_get", "district point", out, err)
}

func (h *ReferenceHTTP) CreateDistrictPoint(c echo.Context) error {
	var req transport.DistrictPointRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.CreateDistrictPoint(c.Request().Context(), pointInput(req))
	return replyCreated(c, "point_create", "district point created", out, err)
}

func (h *ReferenceHTTP) UpdateDistrictPoint(c echo.Context) error {
	var req transport.DistrictPointRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.Svc.UpdateDistrictPoint(c.Request().Context(), c.Param("id"), pointInput(req))
	return reply(c, "point_update", "district point updated", out, err)
}

func (h *ReferenceHTTP) DeleteDistrictPoint(c echo.Context) error {
	err := h.Svc.DeleteDistrictPoint(c.Request().Context(), c.Param("id"))
	return reply(c, "point_delete", "district point deleted", nil, err)
}
