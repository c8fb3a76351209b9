package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideFlat  Side = "FLAT"
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Position — engine's belief about current exposure on the traded instrument.
// Invariant: Size > 0 iff Side != FLAT.
type Position struct {
	Side       Side
	Size       decimal.Decimal
	EntryPrice decimal.Decimal
	Updated    time.Time
}

func FlatPosition() Position {
	return Position{Side: SideFlat, Size: decimal.Zero, EntryPrice: decimal.Zero}
}

func (p Position) IsFlat() bool {
	return p.Side == SideFlat || p.Size.IsZero()
}

// AccountPosition — one open exposure as reported by the exchange.
type AccountPosition struct {
	Instrument string
	Side       Side
	Size       decimal.Decimal
	EntryPrice decimal.Decimal
}

type PositionMode string

const (
	PositionModeSingleSided PositionMode = "single_sided"
	PositionModeHedge       PositionMode = "hedge"
)
