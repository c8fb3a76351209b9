package postgres

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"trade_engine/internal/modules/config"
	"trade_engine/pkg/db"
	"trade_engine/pkg/logger"
)

// Module provides the transaction manager for the trade journal. The DSN is
// optional: without one the engine runs with journaling disabled rather than
// refusing to start.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					logger.Info("no database configured, trade journal disabled")
					return nil, nil
				}

				pool, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, errors.Wrap(err, "create pool")
				}

				if err := pool.Ping(ctx); err != nil {
					return nil, errors.Wrap(err, "ping database")
				}

				return db.NewPgTxManager(pool), nil
			},
		),
	)
}
