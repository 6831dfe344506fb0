package main

import (
	"context"
	"fmt"

	"github.com/saminkc999/coinledger/internal/config"
	"github.com/saminkc999/coinledger/internal/infra/pgutils"
	"github.com/saminkc999/coinledger/internal/infra/redisutil"
	"github.com/saminkc999/coinledger/internal/repos/document"
	"github.com/saminkc999/coinledger/internal/repos/document/file"
	"github.com/saminkc999/coinledger/internal/repos/document/memory"
	"github.com/saminkc999/coinledger/internal/repos/document/postgres"
	redisstore "github.com/saminkc999/coinledger/internal/repos/document/redis"
	"github.com/saminkc999/coinledger/internal/repos/document/sqlite"
)

// openStore builds the document backend selected by cfg.Driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (document.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverFile:
		s, err := file.New(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}

		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.SQLitePath, cfg.Document)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}

		return s, nil
	case config.DriverPostgres:
		db, err := pgutils.OpenDB(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}

		return postgres.New(db, cfg.Document), nil
	case config.DriverRedis:
		rdb, err := redisutil.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}

		return redisstore.New(rdb, cfg.Document), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
