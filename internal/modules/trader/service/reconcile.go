package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
	"trade_engine/internal/notify"
	"trade_engine/pkg/logger"
)

const remediationTimeout = 2 * time.Minute

// Reconciler forces the local position belief to match the exchange's
// authoritative report, and repairs an incompatible dual-sided account mode
// (with explicit operator confirmation only).
type Reconciler struct {
	gw       Gateway
	cfg      config.Trading
	book     *PositionBook
	ctrl     *Controller
	notifier notify.Notifier
	journal  Journal
}

func NewReconciler(
	cfg *config.Config,
	gw Gateway,
	book *PositionBook,
	ctrl *Controller,
	notifier notify.Notifier,
	journal Journal,
) *Reconciler {
	return &Reconciler{
		gw:       gw,
		cfg:      cfg.Trading,
		book:     book,
		ctrl:     ctrl,
		notifier: notifier,
		journal:  journal,
	}
}

// Run performs one reconciliation pass. A returned ErrModeConflict is fatal;
// any other error is transient and the caller may continue.
func (r *Reconciler) Run(ctx context.Context) error {
	mode, err := r.gw.PositionMode(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch position mode")
	}

	if mode == models.PositionModeHedge {
		if err := r.remediateHedgeMode(ctx); err != nil {
			return err
		}
		mode = models.PositionModeSingleSided
	}

	positions, err := r.gw.OpenPositions(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch positions")
	}

	truth := models.FlatPosition()
	for _, p := range positions {
		if p.Instrument != r.cfg.Instrument {
			continue
		}
		truth = models.Position{Side: p.Side, Size: p.Size, EntryPrice: p.EntryPrice}
		break
	}

	prior := r.book.Snapshot()
	if prior.Side != truth.Side || !prior.Size.Equal(truth.Size) {
		logger.Warn("position belief corrected: local %s %s -> exchange %s %s",
			prior.Side, prior.Size, truth.Side, truth.Size)
	}

	r.book.SetFromExchange(truth)
	if truth.IsFlat() && r.ctrl.Stuck() {
		logger.Info("exchange confirms FLAT, clearing stuck flag")
		r.ctrl.ClearStuck()
	}

	r.journal.RecordReconciliation(ctx, truth, mode)
	return nil
}

// remediateHedgeMode — the account allows simultaneous long and short on one
// instrument, which the engine cannot operate against. Every open exposure
// is reported; the operator must explicitly confirm before the engine
// force-closes them and switches the account to one-way mode. A decline or
// timeout is a hard stop, never retried and never skipped.
func (r *Reconciler) remediateHedgeMode(ctx context.Context) error {
	exposures, err := r.gw.OpenPositions(ctx)
	if err != nil {
		return errors.Wrap(err, "enumerate hedge exposures")
	}

	var b strings.Builder
	b.WriteString("⚠️ Account is in hedge position mode, the engine requires one-way mode.\n")
	if len(exposures) == 0 {
		b.WriteString("No open exposures.\n")
	} else {
		b.WriteString("Open exposures to be force-closed:\n")
		for _, e := range exposures {
			fmt.Fprintf(&b, "- %s %s %s @ %s\n", e.Instrument, e.Side, e.Size, e.EntryPrice)
		}
	}
	b.WriteString("Close all exposures and switch the account to one-way mode?")

	if !r.notifier.Confirm(ctx, b.String(), remediationTimeout) {
		return ErrModeConflict
	}

	for _, e := range exposures {
		side := models.OrderSell
		if e.Side == models.SideShort {
			side = models.OrderBuy
		}
		if _, err := r.gw.PlaceMarket(ctx, e.Instrument, side, e.Size, true); err != nil {
			return errors.Wrapf(err, "force-close %s %s", e.Instrument, e.Side)
		}
		logger.Info("force-closed %s %s %s", e.Instrument, e.Side, e.Size)
	}

	if err := r.gw.SetPositionMode(ctx, models.PositionModeSingleSided); err != nil {
		return errors.Wrap(err, "switch to one-way mode")
	}

	r.notifier.Send("✅ Account switched to one-way position mode.")
	return nil
}
