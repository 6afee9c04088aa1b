package backend

import (
	"fmt"
	"log/slog"

	"spendsight/internal/amqp"
	"spendsight/internal/config"
	"spendsight/internal/memory"
	"spendsight/internal/storage"
)

// Open builds the storage backend named by the configuration. The SQLite
// backend also dials AMQP when a URL is configured; a broker that is down
// degrades to local-only operation instead of failing startup.
func Open(cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown data backend: %q", cfg.DataBackend)
	}

	switch t {
	case Memory:
		slog.Info("Using in-memory backend")
		return &Result{
			Store:   memory.New(),
			Cleanup: func() error { return nil },
		}, nil

	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}

		result := &Result{
			Store:   repo,
			Cleanup: repo.Close,
		}

		if cfg.AMQPURL != "" {
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				slog.Warn("AMQP unavailable, sheet sync disabled", "error", err)
			} else {
				result.Publisher = client
				result.Cleanup = func() error {
					client.Close()
					return repo.Close()
				}
			}
		}

		slog.Info("Using SQLite backend",
			"db_path", cfg.SQLiteDBPath,
			"amqp", result.Publisher != nil)
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %q", t)
	}
}
