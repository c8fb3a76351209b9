package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_engine/internal/models"
)

func newTestReconciler(gw *fakeGateway, n *fakeNotifier) (*Reconciler, *PositionBook, *Controller, *fakeJournal) {
	cfg := testConfig()
	book := NewPositionBook()
	ctrl := NewController(cfg)
	j := &fakeJournal{}
	return NewReconciler(cfg, gw, book, ctrl, n, j), book, ctrl, j
}

func TestReconcileOverwritesBelief(t *testing.T) {
	gw := newFakeGateway()
	gw.positions = []models.AccountPosition{
		{Instrument: "ETHUSDT", Side: models.SideLong, Size: d("0.4"), EntryPrice: d("1990")},
	}
	rec, book, _, j := newTestReconciler(gw, &fakeNotifier{})

	// diverging local belief
	book.ApplyFill(models.SideLong, d("0.5"), d("2000"))

	require.NoError(t, rec.Run(context.Background()))

	pos := book.Snapshot()
	assert.Equal(t, models.SideLong, pos.Side)
	assert.True(t, pos.Size.Equal(d("0.4")), "exchange size wins")
	assert.True(t, pos.EntryPrice.Equal(d("1990")))
	assert.Equal(t, 1, j.reconciliations)
}

func TestReconcileIgnoresOtherInstruments(t *testing.T) {
	gw := newFakeGateway()
	gw.positions = []models.AccountPosition{
		{Instrument: "BTCUSDT", Side: models.SideShort, Size: d("0.1"), EntryPrice: d("60000")},
	}
	rec, book, _, _ := newTestReconciler(gw, &fakeNotifier{})

	book.ApplyFill(models.SideLong, d("0.5"), d("2000"))
	require.NoError(t, rec.Run(context.Background()))

	assert.True(t, book.Snapshot().IsFlat(), "no exposure on the traded instrument means FLAT")
}

func TestReconcileClearsStuckOnConfirmedFlat(t *testing.T) {
	gw := newFakeGateway()
	rec, _, ctrl, _ := newTestReconciler(gw, &fakeNotifier{})

	ctrl.MarkStuck()
	require.NoError(t, rec.Run(context.Background()))
	assert.False(t, ctrl.Stuck())
}

func TestReconcileKeepsStuckWhileExposed(t *testing.T) {
	gw := newFakeGateway()
	gw.positions = []models.AccountPosition{
		{Instrument: "ETHUSDT", Side: models.SideLong, Size: d("0.5"), EntryPrice: d("2000")},
	}
	rec, _, ctrl, _ := newTestReconciler(gw, &fakeNotifier{})

	ctrl.MarkStuck()
	require.NoError(t, rec.Run(context.Background()))
	assert.True(t, ctrl.Stuck(), "stuck clears only on confirmed FLAT")
}

func TestReconcileTransientErrorIsNotFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.positionsErr = errors.New("502 bad gateway")
	rec, _, _, _ := newTestReconciler(gw, &fakeNotifier{})

	err := rec.Run(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrModeConflict))
}

func TestHedgeModeDeclinedIsFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.mode = models.PositionModeHedge
	n := &fakeNotifier{answer: false}
	rec, _, _, _ := newTestReconciler(gw, n)

	err := rec.Run(context.Background())
	assert.True(t, errors.Is(err, ErrModeConflict))
	assert.Len(t, n.confirms, 1, "operator must have been asked")
	assert.Empty(t, gw.placedOrders(), "nothing is closed without confirmation")
	assert.Empty(t, gw.setModeCalls)
}

func TestHedgeModeConfirmedRemediates(t *testing.T) {
	gw := newFakeGateway()
	gw.mode = models.PositionModeHedge
	gw.positions = []models.AccountPosition{
		{Instrument: "ETHUSDT", Side: models.SideLong, Size: d("0.5"), EntryPrice: d("2000")},
		{Instrument: "ETHUSDT", Side: models.SideShort, Size: d("0.3"), EntryPrice: d("2050")},
	}
	n := &fakeNotifier{answer: true}
	rec, _, _, _ := newTestReconciler(gw, n)

	require.NoError(t, rec.Run(context.Background()))

	orders := gw.placedOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, models.OrderSell, orders[0].Side)
	assert.True(t, orders[0].ReduceOnly)
	assert.Equal(t, models.OrderBuy, orders[1].Side)
	assert.True(t, orders[1].ReduceOnly)

	require.Len(t, gw.setModeCalls, 1)
	assert.Equal(t, models.PositionModeSingleSided, gw.setModeCalls[0])
}
