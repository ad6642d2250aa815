// Package result picks the result batch store named by the database config.
package result

import (
	"context"
	"fmt"

	"github.com/bloops-games/wordlebot/internal/cache"
	"github.com/bloops-games/wordlebot/internal/database"
	boltResult "github.com/bloops-games/wordlebot/internal/database/result/database"
	"github.com/bloops-games/wordlebot/internal/database/result/sqldb"
	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/wordle"
)

type Store interface {
	FetchAll(ctx context.Context) ([]wordle.Batch, error)
	FetchByDate(ctx context.Context, date string) ([]wordle.Batch, error)
	Insert(ctx context.Context, batch wordle.Batch) (bool, error)
}

var (
	_ Store = (*boltResult.DB)(nil)
	_ Store = (*sqldb.DB)(nil)
)

// Open returns the store for config.Driver and a func releasing it. The bolt
// store shares db and caches through c.
func Open(ctx context.Context, config *database.Config, db *database.DB, c cache.Cache) (Store, func() error, error) {
	logger := logging.FromContext(ctx).Named("result.Open")

	switch config.Driver {
	case database.DriverBolt, "":
		return boltResult.New(db, c), func() error { return nil }, nil
	case database.DriverSQLite, database.DriverPostgres:
		gdb, err := sqldb.Open(ctx, config)
		if err != nil {
			return nil, nil, fmt.Errorf("open sql store: %w", err)
		}
		logger.Infof("results are stored in %s", config.Driver)
		store := sqldb.New(gdb)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", config.Driver)
	}
}
