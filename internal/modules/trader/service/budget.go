package service

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
)

// Budget tracks the balances behind the daily-loss and drawdown limits.
// DayStartBalance resets at each UTC day boundary; PeakBalance only ever
// grows for the process lifetime.
type Budget struct {
	mu          sync.RWMutex
	b           models.RiskBudget
	initialized bool
}

func NewBudget() *Budget {
	return &Budget{}
}

// Observe folds a fresh wallet balance into the budget, rolling the trading
// day over when the UTC date changes.
func (g *Budget) Observe(balance decimal.Decimal, now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.initialized {
		g.b = models.RiskBudget{
			DayStartBalance: balance,
			PeakBalance:     balance,
			CurrentBalance:  balance,
			Day:             day,
		}
		g.initialized = true
		return
	}

	if day.After(g.b.Day) {
		g.b.Day = day
		g.b.DayStartBalance = balance
	}

	g.b.CurrentBalance = balance
	if balance.GreaterThan(g.b.PeakBalance) {
		g.b.PeakBalance = balance
	}
}

func (g *Budget) MarkEntry(now time.Time) {
	g.mu.Lock()
	g.b.LastEntry = now
	g.mu.Unlock()
}

func (g *Budget) Snapshot() models.RiskBudget {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.b
}

func (g *Budget) Initialized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.initialized
}
