package models

import "github.com/shopspring/decimal"

type Action string

const (
	ActionHold      Action = "HOLD"
	ActionOpenLong  Action = "OPEN_LONG"
	ActionOpenShort Action = "OPEN_SHORT"
	ActionClose     Action = "CLOSE"
)

// TradeIntent — transient decision produced by the risk controller for one
// tick; raw values are quantized before submission and the intent is
// discarded after the tick.
type TradeIntent struct {
	Action      Action
	RawQuantity decimal.Decimal
	RawPrice    decimal.Decimal
	Reason      string
}

func HoldIntent(reason string) TradeIntent {
	return TradeIntent{Action: ActionHold, Reason: reason}
}
