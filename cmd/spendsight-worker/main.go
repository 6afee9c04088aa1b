package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"spendsight/internal/amqp"
	"spendsight/internal/cli"
	"spendsight/internal/export"
	applog "spendsight/internal/log"
	"spendsight/internal/services"
	"spendsight/internal/storage"
)

func main() {
	logger, cfg := cli.Setup(applog.ComponentWorker)
	logger.Info("Starting spendsight-worker")

	if cfg.SheetSpreadsheetID == "" {
		logger.Error("SHEET_SPREADSHEET_ID is required for the sync worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	sheet, err := export.NewSheetsClient(ctx, cfg.SheetSpreadsheetID, cfg.SheetName)
	if err != nil {
		logger.Error("Failed to initialize sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	if err := sheet.EnsureHeader(ctx); err != nil {
		logger.Warn("Failed to ensure sheet header", applog.FieldError, err)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncer := services.NewSheetSyncer(repo, sheet)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeExpenseEvents(ctx, func(event *amqp.ExpenseEvent) error {
			return syncer.HandleEvent(ctx, event)
		})
	})

	logger.Info("Worker consuming expense events",
		"queue", cfg.AMQPQueue,
		"spreadsheet_id", cfg.SheetSpreadsheetID,
		"sheet", cfg.SheetName)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
