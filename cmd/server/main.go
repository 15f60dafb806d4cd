package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"polyglot/backend/internal/cache"
	"polyglot/backend/internal/config"
	"polyglot/backend/internal/db"
	"polyglot/backend/internal/handler"
	httpserver "polyglot/backend/internal/http"
	"polyglot/backend/internal/identifier"
	"polyglot/backend/internal/logger"
	"polyglot/backend/internal/repository"
	"polyglot/backend/internal/scheduler"
	"polyglot/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))
	logger.Info("starting", "app", config.AppName, "version", config.AppVersion)

	if err := identifier.Init(0); err != nil {
		logger.Error("init identifier", "error", err)
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer database.Close()

	translationRepo := repository.NewTranslationRepository(database)
	tagRepo := repository.NewTagRepository(database)

	store := cache.NewMemory(cfg.ExportCacheTTL)
	exportSvc := service.NewExportService(translationRepo, store, cfg.ExportMaxKeys, cfg.ExportBatchSize)
	translationSvc := service.NewTranslationService(translationRepo, exportSvc)
	tagSvc := service.NewTagService(tagRepo, exportSvc)

	server := httpserver.NewServer(
		handler.NewTranslationHandler(translationSvc),
		handler.NewTagHandler(tagSvc),
		handler.NewExportHandler(exportSvc),
	)

	warmer := scheduler.New(exportSvc, cfg.ExportWarmInterval)
	warmer.Start()

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := server.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	warmer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
