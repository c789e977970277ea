package scans

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(g *echo.Group, svc *Service) {
	h := &handler{
		scanService: svc,
	}

	g.POST("/scan", h.submit)
	g.GET("/scans", h.list)
	g.GET("/scans/:id", h.retrieve)
}
