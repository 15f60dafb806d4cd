package http

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"polyglot/backend/internal/handler"
)

type Server struct {
	echo *echo.Echo
}

func NewServer(translations *handler.TranslationHandler, tags *handler.TagHandler, exports *handler.ExportHandler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	api := e.Group("/api")
	translations.RegisterRoutes(api)
	tags.RegisterRoutes(api)
	exports.RegisterRoutes(api)

	return &Server{echo: e}
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
