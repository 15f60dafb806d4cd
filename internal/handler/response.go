package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"polyglot/backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrDuplicateTranslation):
		return c.JSON(http.StatusConflict, errorResponse{Error: "translation already exists for key and locale"})
	case errors.Is(err, service.ErrDuplicateName):
		return c.JSON(http.StatusConflict, errorResponse{Error: "tag name already exists"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
