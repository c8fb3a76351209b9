package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction int

const (
	DirectionNone  Direction = 0
	DirectionLong  Direction = 1
	DirectionShort Direction = -1
)

// Signal — normalized strategy output: direction plus strength in [0,1].
type Signal struct {
	Instrument string
	Direction  Direction
	Strength   float64
	Price      decimal.Decimal
	At         time.Time
	Reason     string
}

func (s Signal) IsZero() bool { return s.Direction == DirectionNone }
