package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"polyglot/backend/internal/service"
)

type ExportHandler struct {
	service service.ExportService
}

func NewExportHandler(service service.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

func (h *ExportHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/export", h.Export)
}

func (h *ExportHandler) Export(c echo.Context) error {
	docs, err := h.service.Export(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}
