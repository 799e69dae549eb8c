package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/invoicepro/internal/storage/file"
	"github.com/xenking/invoicepro/internal/storage/postgres"
	"github.com/xenking/invoicepro/internal/store"
)

// OpenKV opens the configured key-value backend. The returned close
// function releases it.
func OpenKV(ctx context.Context, lg *zap.Logger, cfg *Config) (store.KV, func(), error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		lg.Warn("Using in-memory storage, documents are lost on exit")
		return store.NewMemoryKV(), func() {}, nil
	case DriverFile:
		kv, err := file.New(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open data dir")
		}
		lg.Info("Using file storage", zap.String("dir", cfg.Storage.DataDir))
		return kv, func() {}, nil
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		lg.Info("Using postgres storage")
		return postgres.NewKV(pool), pool.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
