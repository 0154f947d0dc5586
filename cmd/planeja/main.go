package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"planeja/internal/cache"
	"planeja/internal/cli"
	"planeja/internal/core"
	apphttp "planeja/internal/http"
	"planeja/internal/insights"
	applog "planeja/internal/log"
	"planeja/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	ctx := context.Background()

	stores, err := cli.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open stores", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	analyzer, err := cli.NewAnalyzer(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}

	// Without a broker, insight refreshes run in this process
	var publisher services.InsightPublisher
	broker, err := cli.ConnectBroker(cfg)
	switch {
	case err != nil:
		logger.Warn("Failed to initialize AMQP client, refreshing insights in-process", "error", err)
	case broker != nil:
		publisher = broker
		logger.Info("AMQP client initialized - insight refreshes go to planeja-worker")
	}

	insightSvc := services.NewInsightService(stores.Planner, stores.Settings, analyzer,
		insights.NewBoard(stores.Backend.Store), publisher, cfg.AMQPInsightsQueue)

	drafts := cache.NewLRUCache[core.ListDraft](cfg.DraftCapacity, cfg.DraftTTL)
	caches := cache.NewManager()
	caches.Register(drafts)
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Planner:  stores.Planner,
		Settings: stores.Settings,
		Insights: insightSvc,
		Drafts:   services.NewDraftService(analyzer, stores.Planner, drafts, cfg.DraftTTL),
		Ready:    stores.Backend.Ping,
		Logger:   logger,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if broker != nil {
			_ = broker.Close()
		}
		if err := stores.Close(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	})

	logger.Info("Starting planeja server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"lists", stores.Planner.Len(),
		"ai", analyzer.Enabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
