package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
	signal "trade_engine/internal/modules/signal/service"
	"trade_engine/internal/notify"
	"trade_engine/internal/quant"
	"trade_engine/pkg/logger"
)

// Loop drives one polling cycle end to end: price, signal, risk transition,
// quantized order, optimistic update, scheduled reconciliation, wait.
// Exactly one goroutine runs ticks; no tick begins before the previous one
// fully completes.
type Loop struct {
	cfg      config.Trading
	gw       Gateway
	src      signal.Source
	resolver *quant.Resolver
	book     *PositionBook
	budget   *Budget
	ctrl     *Controller
	rec      *Reconciler
	notifier notify.Notifier
	journal  Journal
	sink     StatusSink

	ioRetry    RetryPolicy
	closeRetry RetryPolicy

	tick uint64

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

func NewLoop(
	cfg *config.Config,
	gw Gateway,
	src signal.Source,
	resolver *quant.Resolver,
	book *PositionBook,
	budget *Budget,
	ctrl *Controller,
	rec *Reconciler,
	notifier notify.Notifier,
	journal Journal,
	sink StatusSink,
) *Loop {
	t := cfg.Trading
	return &Loop{
		cfg:      t,
		gw:       gw,
		src:      src,
		resolver: resolver,
		book:     book,
		budget:   budget,
		ctrl:     ctrl,
		rec:      rec,
		notifier: notifier,
		journal:  journal,
		sink:     sink,

		ioRetry:    RetryPolicy{MaxAttempts: 3, Base: 250 * time.Millisecond},
		closeRetry: RetryPolicy{MaxAttempts: uint64(t.CloseRetryMax), Base: t.CloseRetryBase()},
	}
}

// Run blocks until Stop, ctx cancellation, or a fatal condition
// (ModeConflict). The inter-tick wait is interruptible; cancellation is
// observed at the top of every tick and during the wait.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	stopped := l.stopped
	l.mu.Unlock()
	if stopped {
		cancel()
		return nil
	}
	defer cancel()

	logger.Info("trading loop started: %s every %s", l.cfg.Instrument, l.cfg.PollInterval())
	l.notifier.Sendf("▶️ Engine started: %s, poll %s", l.cfg.Instrument, l.cfg.PollInterval())

	// position mode and pre-existing exposure must be known before any
	// order can go out
	if err := l.rec.Run(ctx); err != nil {
		if errors.Is(err, ErrModeConflict) {
			l.notifier.Sendf("⛔️ Engine stopped: %v", err)
			return err
		}
		logger.Warn("startup reconciliation failed: %v", err)
	}

	for {
		if ctx.Err() != nil {
			logger.Info("trading loop stopped")
			return nil
		}

		if err := l.runTick(ctx); err != nil {
			l.notifier.Sendf("⛔️ Engine stopped: %v", err)
			return err
		}

		select {
		case <-ctx.Done():
			logger.Info("trading loop stopped during wait")
			return nil
		case <-time.After(l.cfg.PollInterval()):
		}
	}
}

// Stop requests cooperative cancellation and is safe to call at any point,
// including before Run. An order already submitted is not revocable; only
// the next tick is prevented.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (l *Loop) runTick(ctx context.Context) error {
	l.tick++

	sp := opentracing.StartSpan("trader.tick")
	sp.SetTag("tick", l.tick)
	defer sp.Finish()

	var price decimal.Decimal
	err := l.ioRetry.Do(ctx, func() error {
		p, err := l.gw.LastPrice(ctx, l.cfg.Instrument)
		if err == nil {
			price = p
		}
		return err
	})
	if err != nil {
		// transient gateway failure degrades this tick to a no-op
		logger.Warn("tick %d degraded, price unavailable: %v", l.tick, err)
		l.publishStatus()
		return nil
	}

	if bal, err := l.gw.WalletBalance(ctx, l.quoteAsset()); err != nil {
		logger.Warn("balance refresh failed: %v", err)
	} else {
		l.budget.Observe(bal, time.Now())
	}

	haltedBefore := l.ctrl.Halted()

	intent := l.ctrl.Evaluate(EvalInput{
		Tick:     l.tick,
		Now:      time.Now(),
		Price:    price,
		Signal:   l.src.Latest(),
		Position: l.book.Snapshot(),
		Budget:   l.budget.Snapshot(),
	})
	sp.SetTag("action", string(intent.Action))

	if !haltedBefore && l.ctrl.Halted() {
		logger.Warn("risk budget breached: %s, entries halted", l.ctrl.HaltedReason())
		l.notifier.Sendf("🛑 Risk budget breached (%s). Entries halted.", l.ctrl.HaltedReason())
	}

	submitted := false
	switch intent.Action {
	case models.ActionOpenLong, models.ActionOpenShort:
		submitted = l.openPosition(ctx, intent, price)
	case models.ActionClose:
		submitted = l.closePosition(ctx, intent, price)
	}

	if submitted || l.tick%uint64(l.cfg.ReconcileEvery) == 0 {
		if err := l.rec.Run(ctx); err != nil {
			if errors.Is(err, ErrModeConflict) {
				return err
			}
			logger.Warn("reconciliation skipped: %v", err)
		}
	}

	l.publishStatus()
	return nil
}

func (l *Loop) openPosition(ctx context.Context, intent models.TradeIntent, price decimal.Decimal) bool {
	filter, exact := l.resolver.Filter(ctx, l.cfg.Instrument)
	if !exact {
		logger.Warn("opening with degraded precision rules for %s", l.cfg.Instrument)
	}

	qty := quant.ResolveQuantity(intent.RawQuantity, filter)
	if qty.IsZero() {
		logger.Info("entry skipped: size %s below instrument minimum", intent.RawQuantity)
		return false
	}

	side := models.OrderBuy
	posSide := models.SideLong
	if intent.Action == models.ActionOpenShort {
		side = models.OrderSell
		posSide = models.SideShort
	}

	var res models.OrderResult
	err := l.ioRetry.Do(ctx, func() error {
		r, err := l.gw.PlaceMarket(ctx, l.cfg.Instrument, side, qty, false)
		if err == nil {
			res = r
		}
		return err
	})
	if err != nil {
		logger.Warn("entry order failed: %v", err)
		return true // an attempt went out; reconcile to learn what happened
	}

	l.book.ApplyFill(posSide, qty, price)
	l.budget.MarkEntry(time.Now())

	logger.Info("opened %s %s %s @ %s (order %s)", posSide, qty, l.cfg.Instrument, price, res.OrderID)
	l.notifier.Sendf("✅ OPEN %s %s %s @ %s | %s", posSide, qty, l.cfg.Instrument, price, intent.Reason)
	l.journal.RecordTrade(ctx, TradeRecord{
		Instrument: l.cfg.Instrument,
		Action:     intent.Action,
		Side:       side,
		Quantity:   qty,
		Price:      price,
		OrderID:    res.OrderID,
		Reason:     intent.Reason,
		At:         time.Now(),
	})
	return true
}

func (l *Loop) closePosition(ctx context.Context, intent models.TradeIntent, price decimal.Decimal) bool {
	pos := l.book.Snapshot()
	if pos.IsFlat() {
		return false
	}

	side := models.OrderSell
	if pos.Side == models.SideShort {
		side = models.OrderBuy
	}

	var res models.OrderResult
	err := l.closeRetry.Do(ctx, func() error {
		r, err := l.gw.PlaceMarket(ctx, l.cfg.Instrument, side, pos.Size, true)
		if err == nil {
			res = r
		}
		return err
	})
	if err != nil {
		l.ctrl.MarkStuck()
		logger.Error("%v: %v", ErrStuckPosition, err)
		l.notifier.Sendf("🚨 STUCK: close of %s %s failed after retries: %v. Entries suppressed until reconciliation confirms FLAT.",
			pos.Side, l.cfg.Instrument, err)
		return true
	}

	l.book.Flatten()

	logger.Info("closed %s %s %s @ %s: %s (order %s)", pos.Side, pos.Size, l.cfg.Instrument, price, intent.Reason, res.OrderID)
	l.notifier.Sendf("✅ CLOSE %s %s %s @ %s | %s", pos.Side, pos.Size, l.cfg.Instrument, price, intent.Reason)
	l.journal.RecordTrade(ctx, TradeRecord{
		Instrument: l.cfg.Instrument,
		Action:     models.ActionClose,
		Side:       side,
		Quantity:   pos.Size,
		Price:      price,
		OrderID:    res.OrderID,
		Reason:     intent.Reason,
		At:         time.Now(),
	})
	return true
}

func (l *Loop) publishStatus() {
	if l.sink == nil {
		return
	}
	l.sink.ObserveTick(Status{
		Position:   l.book.Snapshot(),
		Budget:     l.budget.Snapshot(),
		Halted:     l.ctrl.Halted(),
		HaltReason: l.ctrl.HaltedReason(),
		Stuck:      l.ctrl.Stuck(),
		Tick:       l.tick,
		At:         time.Now(),
	})
}

func (l *Loop) quoteAsset() string {
	for _, q := range []string{"USDT", "USDC", "BUSD"} {
		if strings.HasSuffix(l.cfg.Instrument, q) {
			return q
		}
	}
	return "USDT"
}
