package service

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
)

// PositionBook — single in-process source of truth for the engine's exposure.
// Mutated only by the reconciler (exchange overwrite) and the optimistic
// post-fill update; everyone else reads snapshots.
type PositionBook struct {
	mu  sync.RWMutex
	pos models.Position
}

func NewPositionBook() *PositionBook {
	return &PositionBook{pos: models.FlatPosition()}
}

// Snapshot — a copy valid only until the next reconciliation.
func (b *PositionBook) Snapshot() models.Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pos
}

// SetFromExchange overwrites the belief with the exchange-reported truth.
func (b *PositionBook) SetFromExchange(p models.Position) {
	p.Updated = time.Now()
	b.mu.Lock()
	b.pos = p
	b.mu.Unlock()
}

// ApplyFill — optimistic update after a locally-confirmed entry order.
// Always superseded by the next reconciliation.
func (b *PositionBook) ApplyFill(side models.Side, size, entryPrice decimal.Decimal) {
	b.mu.Lock()
	b.pos = models.Position{
		Side:       side,
		Size:       size,
		EntryPrice: entryPrice,
		Updated:    time.Now(),
	}
	b.mu.Unlock()
}

// Flatten — optimistic update after a locally-confirmed close.
func (b *PositionBook) Flatten() {
	b.mu.Lock()
	b.pos = models.FlatPosition()
	b.pos.Updated = time.Now()
	b.mu.Unlock()
}
