package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// queryString returns nil for absent or empty query params so that empty
// filters stay no-ops.
func queryString(c echo.Context, name string) *string {
	value := c.QueryParam(name)
	if value == "" {
		return nil
	}
	return &value
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
