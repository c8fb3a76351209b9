package models

import "github.com/shopspring/decimal"

type OrderSide string

const (
	OrderBuy  OrderSide = "BUY"
	OrderSell OrderSide = "SELL"
)

type OrderResult struct {
	OrderID string
	Status  string
}

// CandleTick — one closed candle from the market data stream.
type CandleTick struct {
	Instrument string
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	Volume     decimal.Decimal
	ClosedAt   int64 // unix ms
}
