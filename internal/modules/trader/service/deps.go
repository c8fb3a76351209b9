package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
)

// TradeRecord — one executed order for the journal.
type TradeRecord struct {
	Instrument string
	Action     models.Action
	Side       models.OrderSide
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	OrderID    string
	Reason     string
	At         time.Time
}

// Journal persists trade and reconciliation history. Failures must never
// block a tick; implementations log and move on.
type Journal interface {
	RecordTrade(ctx context.Context, rec TradeRecord)
	RecordReconciliation(ctx context.Context, pos models.Position, mode models.PositionMode)
}

// Status — immutable snapshot published at tick boundaries for read-only
// consumers (health endpoint, /status command).
type Status struct {
	Position   models.Position
	Budget     models.RiskBudget
	Halted     bool
	HaltReason HaltReason
	Stuck      bool
	Tick       uint64
	At         time.Time
}

// StatusSink receives the per-tick snapshot. Consumers must treat it as
// read-only.
type StatusSink interface {
	ObserveTick(Status)
}
