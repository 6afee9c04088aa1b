package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendsight/internal/backend"
	"spendsight/internal/cli"
	apphttp "spendsight/internal/http"
	applog "spendsight/internal/log"
	"spendsight/internal/services"
)

func main() {
	logger, cfg := cli.Setup(applog.ComponentApp)

	result, err := backend.Open(cfg)
	if err != nil {
		logger.Error("Failed to open data backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(
		apphttp.Options{
			Addr:         ":" + cfg.Port,
			CacheTTL:     cfg.CacheTTL,
			CacheMaxSize: cfg.CacheMaxSize,
			RewarmDelay:  cfg.SyncDebounce,
		},
		services.NewExpenseService(result.Store, result.Publisher),
		services.NewAnalyticsService(result.Store),
		result.Store,
	)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.SignalContext()
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spendsight server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
