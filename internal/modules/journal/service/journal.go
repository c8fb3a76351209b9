package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
	tradersvc "trade_engine/internal/modules/trader/service"
	"trade_engine/pkg/db"
	"trade_engine/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id          BIGSERIAL PRIMARY KEY,
	instrument  TEXT        NOT NULL,
	action      TEXT        NOT NULL,
	side        TEXT        NOT NULL,
	quantity    NUMERIC     NOT NULL,
	price       NUMERIC     NOT NULL,
	order_id    TEXT        NOT NULL,
	reason      TEXT        NOT NULL,
	executed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS reconciliations (
	id            BIGSERIAL PRIMARY KEY,
	instrument    TEXT        NOT NULL,
	side          TEXT        NOT NULL,
	size          NUMERIC     NOT NULL,
	entry_price   NUMERIC     NOT NULL,
	position_mode TEXT        NOT NULL,
	observed_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Journal persists executed trades and reconciliation snapshots. Write
// failures are logged and swallowed: the journal is an audit trail, never a
// reason to stop trading. A nil manager turns every call into a no-op.
type Journal struct {
	txm        *db.PgTxManager
	instrument string
}

func NewJournal(ctx context.Context, cfg *config.Config, txm *db.PgTxManager) (*Journal, error) {
	j := &Journal{txm: txm, instrument: cfg.Trading.Instrument}
	if txm == nil {
		return j, nil
	}
	err := txm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, schema)
		return err
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) RecordTrade(ctx context.Context, rec tradersvc.TradeRecord) {
	if j.txm == nil {
		return
	}
	err := j.txm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO trades (instrument, action, side, quantity, price, order_id, reason, executed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.Instrument, string(rec.Action), string(rec.Side),
			rec.Quantity.String(), rec.Price.String(), rec.OrderID, rec.Reason, rec.At,
		)
		return err
	})
	if err != nil {
		logger.Error("journal: trade insert failed: %v", err)
	}
}

func (j *Journal) RecordReconciliation(ctx context.Context, pos models.Position, mode models.PositionMode) {
	if j.txm == nil {
		return
	}
	err := j.txm.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO reconciliations (instrument, side, size, entry_price, position_mode)
			 VALUES ($1, $2, $3, $4, $5)`,
			j.instrument, string(pos.Side), pos.Size.String(), pos.EntryPrice.String(), string(mode),
		)
		return err
	})
	if err != nil {
		logger.Error("journal: reconciliation insert failed: %v", err)
	}
}
