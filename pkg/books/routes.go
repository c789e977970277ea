package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfscan/shelfscan/pkg/scans"
	"github.com/uptrace/bun"
)

func RegisterRoutes(g *echo.Group, db *bun.DB, scanService *scans.Service) {
	h := &handler{
		bookService: NewService(db),
		scanService: scanService,
	}

	g.GET("/books", h.list)
	g.GET("/books/:isbn", h.retrieve)
	g.GET("/books/:isbn/scans", h.listScans)
}
