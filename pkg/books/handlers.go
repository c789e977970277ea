package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfscan/shelfscan/pkg/errcodes"
	"github.com/shelfscan/shelfscan/pkg/isbn"
	"github.com/shelfscan/shelfscan/pkg/scans"
)

type handler struct {
	bookService *Service
	scanService *scans.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	var query ListBooksQuery
	if err := c.Bind(&query); err != nil {
		return errors.WithStack(err)
	}

	opts := ListBooksOptions{
		Limit:    &query.Limit,
		Offset:   &query.Offset,
		Search:   query.Search,
		Enriched: query.Enriched,
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"books": books,
		"total": total,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	code, err := isbn.Validate(c.Param("isbn"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ISBN: &code})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) listScans(c echo.Context) error {
	ctx := c.Request().Context()

	code, err := isbn.Validate(c.Param("isbn"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	// 404 for unknown books rather than an empty list.
	if _, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ISBN: &code}); err != nil {
		return errors.WithStack(err)
	}

	var query ListBookScansQuery
	if err := c.Bind(&query); err != nil {
		return errors.WithStack(err)
	}

	events, total, err := h.scanService.ListScanEvents(ctx, scans.ListScanEventsOptions{
		Limit:  &query.Limit,
		Offset: &query.Offset,
		ISBN:   &code,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"scans": events,
		"total": total,
	}))
}
