package httpserver

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/service"
	"github.com/Skotchmaster/water_backoffice/internal/storage"
	"github.com/Skotchmaster/water_backoffice/internal/transport"
	"github.com/Skotchmaster/water_backoffice/internal/util"
)

const filesField = "files"

var reportDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

type ReportHTTP struct {
	Svc *service.ReportService
}

// reportInput binds the multipart fields and opens the uploaded files. The
// returned closer must be called once the files are no longer needed.
func reportInput(c echo.Context) (service.ReportInput, []storage.File, func(), error) {
	noop := func() {}

	var form transport.ReportForm
	if err := bind(c, &form); err != nil {
		return service.ReportInput{}, nil, noop, err
	}

	in := service.ReportInput{
		Key:         form.Key,
		Name:        form.Name,
		DNI:         form.DNI,
		Cellphone:   form.Cellphone,
		Report:      form.Report,
		Direction:   form.Direction,
		Observation: form.Observation,
	}
	if d := strings.TrimSpace(form.Date); d != "" {
		parsed, err := parseReportDate(d)
		if err != nil {
			return service.ReportInput{}, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "field 'date' is not a valid date")
		}
		in.Date = parsed
	}

	mf, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return in, nil, noop, nil
		}
		return service.ReportInput{}, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form").SetInternal(err)
	}

	files, closeAll, err := openFiles(mf.File[filesField])
	if err != nil {
		return service.ReportInput{}, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file").SetInternal(err)
	}
	return in, files, closeAll, nil
}

func openFiles(headers []*multipart.FileHeader) ([]storage.File, func(), error) {
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		files = append(files, storage.File{Name: fh.Filename, Size: fh.Size, Body: f})
	}
	return files, closeAll, nil
}

func parseReportDate(s string) (time.Time, error) {
	var err error
	for _, layout := range reportDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

func pageParams(c echo.Context) (int, int) {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	return page, size
}

func (h *ReportHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report_create")

	in, files, closeFiles, err := reportInput(c)
	if err != nil {
		l.Warn("report_error", "status", 400, "error", err)
		return err
	}
	defer closeFiles()

	rep, err := h.Svc.Create(ctx, in, files)
	if err != nil {
		return fail(l, err)
	}
	return created(c, "report created", rep)
}

func (h *ReportHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	page, size := pageParams(c)
	res, err := h.Svc.List(ctx, page, size)
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "report_list"), err)
	}
	return ok(c, "reports", res)
}

func (h *ReportHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	page, size := pageParams(c)
	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "report_search"), err)
	}
	return ok(c, "reports", res)
}

func (h *ReportHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	rep, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "report_get"), err)
	}
	return ok(c, "report", rep)
}

func (h *ReportHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report_update")

	in, files, closeFiles, err := reportInput(c)
	if err != nil {
		return err
	}
	defer closeFiles()

	rep, err := h.Svc.Update(ctx, c.Param("id"), in, files)
	if err != nil {
		return fail(l, err)
	}
	return ok(c, "report updated", rep)
}

func (h *ReportHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.Svc.Delete(ctx, c.Param("id")); err != nil {
		return fail(logging.FromContext(ctx).With("handler", "report_delete"), err)
	}
	return ok(c, "report deleted", nil)
}

// Image resolves a stored object key. Keys contain slashes, so clients send
// them path-escaped.
func (h *ReportHTTP) Image(c echo.Context) error {
	ctx := c.Request().Context()
	publicID, err := url.PathUnescape(c.Param("publicId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid public id")
	}
	u, err := h.Svc.ImageURL(publicID)
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "report_image"), err)
	}
	return ok(c, "image", storage.Object{ID: publicID, URL: u})
}

func (h *ReportHTTP) ChangeState(c echo.Context) error {
	ctx := c.Request().Context()
	rep, err := h.Svc.ChangeState(ctx, c.Param("id"), c.Param("stateId"))
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "report_change_state"), err)
	}
	return ok(c, "report state changed", rep)
}

func (h *ReportHTTP) ListStates(c echo.Context) error {
	ctx := c.Request().Context()
	states, err := h.Svc.ListStates(ctx)
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "state_list"), err)
	}
	return ok(c, "states", states)
}

func (h *ReportHTTP) GetState(c echo.Context) error {
	ctx := c.Request().Context()
	st, err := h.Svc.GetState(ctx, c.Param("id"))
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "state_get"), err)
	}
	return ok(c, "state", st)
}
