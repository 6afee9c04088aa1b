// Package cli holds the startup plumbing shared by the server and worker
// binaries: env file loading, logging, and validated configuration.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendsight/internal/config"
	applog "spendsight/internal/log"
)

// Setup loads the optional .env file, configures component-tagged logging,
// and returns a validated configuration. Exits the process on invalid config.
func Setup(component string) (*applog.Logger, *config.Config) {
	// .env is for local development only, absence is fine
	_ = godotenv.Load()

	logger := applog.New(applog.ConfigFromEnv(component))
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return logger, cfg
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
