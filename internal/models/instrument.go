package models

import "github.com/shopspring/decimal"

// InstrumentFilter — exchange increment rules for one instrument.
// Fetched once and cached for the process lifetime unless invalidated.
type InstrumentFilter struct {
	Instrument   string
	QuantityStep decimal.Decimal
	PriceTick    decimal.Decimal
	MinQuantity  decimal.Decimal
}
