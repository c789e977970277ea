package scans

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfscan/shelfscan/pkg/errcodes"
	"github.com/shelfscan/shelfscan/pkg/isbn"
)

type handler struct {
	scanService *Service
}

func (h *handler) submit(c echo.Context) error {
	ctx := c.Request().Context()

	var payload SubmitScanPayload
	if err := c.Bind(&payload); err != nil {
		return errors.WithStack(err)
	}

	if payload.ISBN == "" {
		return errcodes.MissingISBN()
	}

	validate := isbn.Validate
	if h.scanService.policy.StrictChecksum {
		validate = isbn.ValidateStrict
	}
	code, err := validate(payload.ISBN)
	if err != nil {
		return errcodes.InvalidISBN(payload.ISBN)
	}

	result, err := h.scanService.Submit(ctx, code, payload.ScannerID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := map[string]any{
		"success": true,
		"scan_id": result.ScanID,
		"book":    result.Book,
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	var query ListScansQuery
	if err := c.Bind(&query); err != nil {
		return errors.WithStack(err)
	}

	opts := ListScanEventsOptions{
		Limit:     &query.Limit,
		Offset:    &query.Offset,
		ScannerID: query.ScannerID,
	}
	if query.ISBN != nil {
		code, err := isbn.Validate(*query.ISBN)
		if err != nil {
			return errcodes.InvalidISBN(*query.ISBN)
		}
		opts.ISBN = &code
	}

	events, total, err := h.scanService.ListScanEvents(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"scans": events,
		"total": total,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	event, err := h.scanService.RetrieveScanEvent(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, event))
}
