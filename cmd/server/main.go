package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/spacesedan/moodboard/config"
	"github.com/spacesedan/moodboard/internal/analyzer"
	"github.com/spacesedan/moodboard/internal/api"
	"github.com/spacesedan/moodboard/internal/cache"
	"github.com/spacesedan/moodboard/internal/clients"
	"github.com/spacesedan/moodboard/internal/db"
	"github.com/spacesedan/moodboard/internal/logging"
	"github.com/spacesedan/moodboard/internal/pipeline"
	"github.com/spacesedan/moodboard/internal/session"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	cfg := config.FromEnv()

	var backend analyzer.Analyzer
	switch cfg.AnalyzerBackend {
	case config.BackendVader:
		slog.Info("[Main] Using local VADER analyzer")
		backend = analyzer.NewVaderAnalyzer()
	default:
		backend = analyzer.NewOpenAIAnalyzer(clients.GetOpenAIClient(), cfg.OpenAIModel)
	}

	var resultCache *cache.ResultCache
	if valkeyClient := clients.InitValkey(); valkeyClient != nil {
		resultCache = cache.NewResultCache(valkeyClient)
	}
	defer clients.CloseValkey()

	newID := func() string { return uuid.NewString() }

	sessions := session.NewManager()
	handlers := &api.Handlers{
		Pipeline: pipeline.NewService(backend, resultCache, sessions, newID),
		Sessions: sessions,
		History:  db.NewDynamoStore(clients.GetDynamoDBClient(), cfg.AnalysesTable, cfg.ItemsTable, newID),
	}

	e := echo.New()
	e.HideBanner = true
	api.RegisterRoutes(e, handlers)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()
	slog.Info("[Main] Dashboard API listening", slog.String("addr", cfg.HTTPAddr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("[Main] Shutdown failed", slog.String("error", err.Error()))
	}
}
