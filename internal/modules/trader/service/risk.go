package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
)

type HaltReason string

const (
	HaltNone      HaltReason = ""
	HaltDailyLoss HaltReason = "daily_loss"
	HaltDrawdown  HaltReason = "drawdown"
)

// EvalInput — everything one transition decision needs, captured as
// snapshots at the top of the tick.
type EvalInput struct {
	Tick     uint64
	Now      time.Time
	Price    decimal.Decimal
	Signal   models.Signal
	Position models.Position
	Budget   models.RiskBudget
}

// Controller — the risk state machine. States mirror Position.Side
// (FLAT/LONG/SHORT) with a HALTED sub-state on budget breach and a STUCK
// flag when a close could not be confirmed. It only ever reads position
// state; the loop and reconciler own the mutations.
type Controller struct {
	mu sync.Mutex

	cfg config.Trading

	one       decimal.Decimal
	slPct     decimal.Decimal
	tpPct     decimal.Decimal
	dailyPct  decimal.Decimal
	ddPct     decimal.Decimal
	fraction  decimal.Decimal
	threshold decimal.Decimal

	haltReason HaltReason
	haltDay    time.Time
	stuck      bool

	lastExitTick uint64
}

func NewController(cfg *config.Config) *Controller {
	t := cfg.Trading
	return &Controller{
		cfg:       t,
		one:       decimal.NewFromInt(1),
		slPct:     decimal.NewFromFloat(t.StopLossPct),
		tpPct:     decimal.NewFromFloat(t.TakeProfitPct),
		dailyPct:  decimal.NewFromFloat(t.MaxDailyLossPct),
		ddPct:     decimal.NewFromFloat(t.MaxDrawdownPct),
		fraction:  decimal.NewFromFloat(t.BalanceFraction),
		threshold: decimal.NewFromFloat(t.OpenThreshold),
	}
}

// Evaluate runs one transition. Called exactly once per tick.
func (c *Controller) Evaluate(in EvalInput) models.TradeIntent {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updateHalt(in.Budget)

	if !in.Position.IsFlat() {
		return c.evaluateOpenPosition(in)
	}
	return c.evaluateFlat(in)
}

func (c *Controller) evaluateOpenPosition(in EvalInput) models.TradeIntent {
	if c.haltReason != HaltNone {
		c.lastExitTick = in.Tick
		return models.TradeIntent{Action: models.ActionClose, Reason: "risk budget breached: " + string(c.haltReason)}
	}

	entry := in.Position.EntryPrice
	long := in.Position.Side == models.SideLong

	var stopLine, takeLine decimal.Decimal
	if long {
		stopLine = entry.Mul(c.one.Sub(c.slPct))
		takeLine = entry.Mul(c.one.Add(c.tpPct))
	} else {
		stopLine = entry.Mul(c.one.Add(c.slPct))
		takeLine = entry.Mul(c.one.Sub(c.tpPct))
	}

	switch {
	case long && in.Price.LessThanOrEqual(stopLine),
		!long && in.Price.GreaterThanOrEqual(stopLine):
		c.lastExitTick = in.Tick
		return models.TradeIntent{Action: models.ActionClose, Reason: fmt.Sprintf("stop-loss at %s (entry %s)", in.Price, entry)}

	case long && in.Price.GreaterThanOrEqual(takeLine),
		!long && in.Price.LessThanOrEqual(takeLine):
		c.lastExitTick = in.Tick
		return models.TradeIntent{Action: models.ActionClose, Reason: fmt.Sprintf("take-profit at %s (entry %s)", in.Price, entry)}
	}

	if c.isReversal(in.Signal, in.Position.Side) {
		// close now; re-entry is evaluated no earlier than the next tick,
		// after the position has been reconciled
		c.lastExitTick = in.Tick
		return models.TradeIntent{Action: models.ActionClose, Reason: "signal reversal"}
	}

	return models.HoldIntent("holding " + string(in.Position.Side))
}

func (c *Controller) evaluateFlat(in EvalInput) models.TradeIntent {
	if c.haltReason != HaltNone {
		return models.HoldIntent("halted: " + string(c.haltReason))
	}
	if c.stuck {
		return models.HoldIntent("position stuck, entries suppressed")
	}
	if in.Tick <= c.lastExitTick {
		return models.HoldIntent("exited this tick")
	}

	sig := in.Signal
	if !c.actionable(sig) {
		return models.HoldIntent("no actionable signal")
	}

	// exits are never cooldown-gated; entries are
	if !in.Budget.LastEntry.IsZero() && in.Now.Sub(in.Budget.LastEntry) < c.cfg.Cooldown() {
		return models.HoldIntent("entry cooldown")
	}

	qty := c.sizeFor(sig.Strength, in.Budget.CurrentBalance, in.Price)
	if qty.Sign() <= 0 {
		return models.HoldIntent("computed size is zero")
	}

	action := models.ActionOpenLong
	if sig.Direction == models.DirectionShort {
		action = models.ActionOpenShort
	}
	return models.TradeIntent{
		Action:      action,
		RawQuantity: qty,
		RawPrice:    in.Price,
		Reason:      sig.Reason,
	}
}

var (
	weakStrength   = decimal.RequireFromString("0.3")
	strongStrength = decimal.RequireFromString("0.7")
	weakFactor     = decimal.RequireFromString("0.5")
	strongFactor   = decimal.RequireFromString("1.2")
)

// sizeFor — balance fraction scaled by signal strength: weak signals halve
// the stake, strong ones add 20%.
func (c *Controller) sizeFor(strength float64, balance, price decimal.Decimal) decimal.Decimal {
	if price.Sign() <= 0 || balance.Sign() <= 0 {
		return decimal.Zero
	}

	str := decimal.NewFromFloat(strength)
	value := balance.Mul(c.fraction).Mul(str)
	if str.LessThan(weakStrength) {
		value = value.Mul(weakFactor)
	} else if str.GreaterThan(strongStrength) {
		value = value.Mul(strongFactor)
	}
	return value.Div(price)
}

// actionable — strength meets the open threshold; compared in decimal like
// every other limit.
func (c *Controller) actionable(sig models.Signal) bool {
	return sig.Direction != models.DirectionNone &&
		decimal.NewFromFloat(sig.Strength).GreaterThanOrEqual(c.threshold)
}

func (c *Controller) isReversal(sig models.Signal, side models.Side) bool {
	if !c.actionable(sig) {
		return false
	}
	return (side == models.SideLong && sig.Direction == models.DirectionShort) ||
		(side == models.SideShort && sig.Direction == models.DirectionLong)
}

func (c *Controller) updateHalt(b models.RiskBudget) {
	if b.CurrentBalance.Sign() <= 0 && b.DayStartBalance.Sign() <= 0 {
		return // budget not observed yet
	}

	dailyLine := b.DayStartBalance.Mul(c.one.Sub(c.dailyPct))
	ddLine := b.PeakBalance.Mul(c.one.Sub(c.ddPct))
	dailyBreach := b.CurrentBalance.LessThanOrEqual(dailyLine)
	ddBreach := b.CurrentBalance.LessThanOrEqual(ddLine)

	switch c.haltReason {
	case HaltNone:
		if dailyBreach {
			c.haltReason = HaltDailyLoss
			c.haltDay = b.Day
		} else if ddBreach {
			c.haltReason = HaltDrawdown
			c.haltDay = b.Day
		}
	case HaltDailyLoss:
		// cleared at the next day boundary, unless the fresh day is already
		// breached again
		if b.Day.After(c.haltDay) && !dailyBreach {
			c.haltReason = HaltNone
			if ddBreach {
				c.haltReason = HaltDrawdown
				c.haltDay = b.Day
			}
		}
	case HaltDrawdown:
		// cleared only when the balance climbs back above the drawdown line
		if !ddBreach {
			c.haltReason = HaltNone
			if dailyBreach {
				c.haltReason = HaltDailyLoss
				c.haltDay = b.Day
			}
		}
	}
}

func (c *Controller) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.haltReason != HaltNone
}

func (c *Controller) HaltedReason() HaltReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.haltReason
}

func (c *Controller) Stuck() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stuck
}

func (c *Controller) MarkStuck() {
	c.mu.Lock()
	c.stuck = true
	c.mu.Unlock()
}

// ClearStuck — called by the reconciler once the exchange confirms FLAT.
func (c *Controller) ClearStuck() {
	c.mu.Lock()
	c.stuck = false
	c.mu.Unlock()
}
