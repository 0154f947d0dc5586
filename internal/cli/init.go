// Package cli provides the initialization shared by cmd/planeja,
// cmd/planeja-worker and cmd/planeja-cli.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"planeja/internal/backend"
	"planeja/internal/config"
	applog "planeja/internal/log"
	"planeja/internal/planner"
	"planeja/internal/settings"
)

// SetupLogger builds the process logger at level and sets it as the default.
func SetupLogger(level, component string) *applog.Logger {
	logger := applog.NewWithLevel(applog.ParseLevel(level), component)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Stores bundles the persistence backend with the two stores built on it.
type Stores struct {
	Backend  *backend.BackendResult
	Planner  *planner.Store
	Settings *settings.Store
}

// Close releases the backend.
func (s *Stores) Close() error {
	return s.Backend.Close()
}

// OpenStores creates the configured backend and loads lists and settings
// from it. Clearing settings also resets the planner.
func OpenStores(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*Stores, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	p, err := planner.New(ctx, result.Store, planner.WithLogger(logger.WithComponent(applog.ComponentPlanner)))
	if err != nil {
		_ = result.Close()
		return nil, err
	}
	prefs, err := settings.New(ctx, result.Store, settings.OnClear(p.Wipe))
	if err != nil {
		_ = result.Close()
		return nil, err
	}

	return &Stores{Backend: result, Planner: p, Settings: prefs}, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete. cleanup gets its
// own context bounded by timeout.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
