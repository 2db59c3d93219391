// Package store opens the food repository selected by configuration.
package store

import (
	"context"
	"fmt"

	"foodflow/pkg/config"
	"foodflow/pkg/food"
	"foodflow/pkg/food/cosmos"
	"foodflow/pkg/food/memory"
	"foodflow/pkg/food/postgres"
	"foodflow/pkg/logger"
)

// Open builds the repository once for the process. The returned close
// function releases its connections and is never nil.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (food.Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Type {
	case config.StoreCosmos:
		repo, err := cosmos.Open(ctx, cosmos.Config{
			ConnectionString: cfg.Cosmos.ConnectionString,
			Endpoint:         cfg.Cosmos.Endpoint,
			Key:              cfg.Cosmos.Key,
			Database:         cfg.Cosmos.Database,
			Container:        cfg.Cosmos.Container,
			PartitionKeyPath: cfg.Cosmos.PartitionKeyPath,
		}, log)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil
	case config.StorePostgres:
		repo, err := postgres.Open(ctx, cfg.Postgres.DSN, log)
		if err != nil {
			return nil, noop, err
		}
		return repo, repo.Close, nil
	case config.StoreMemory:
		return memory.New(log), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store type %q", cfg.Type)
}
