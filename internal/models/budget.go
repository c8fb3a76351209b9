package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskBudget — balance bookkeeping behind the daily-loss and drawdown limits.
// DayStartBalance resets at each UTC day boundary; PeakBalance is
// monotonically non-decreasing until reset.
type RiskBudget struct {
	DayStartBalance decimal.Decimal
	PeakBalance     decimal.Decimal
	CurrentBalance  decimal.Decimal
	LastEntry       time.Time
	Day             time.Time // UTC midnight of the current trading day
}
