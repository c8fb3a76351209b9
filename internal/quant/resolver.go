package quant

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
)

// FilterSource fetches increment rules from the exchange.
type FilterSource interface {
	InstrumentFilter(ctx context.Context, instrument string) (models.InstrumentFilter, error)
}

// Resolver caches per-instrument increment rules with refresh-on-miss. When
// the exchange cannot be reached it falls back to a coarse built-in default
// so the tick degrades instead of failing.
type Resolver struct {
	src FilterSource

	mu    sync.Mutex
	cache map[string]models.InstrumentFilter
}

func NewResolver(src FilterSource) *Resolver {
	return &Resolver{
		src:   src,
		cache: make(map[string]models.InstrumentFilter),
	}
}

// Filter returns the cached rules for the instrument, fetching on first use.
// The second return reports whether the rules are exchange-authoritative
// (false means the conservative default is in effect).
func (r *Resolver) Filter(ctx context.Context, instrument string) (models.InstrumentFilter, bool) {
	r.mu.Lock()
	if f, ok := r.cache[instrument]; ok {
		r.mu.Unlock()
		return f, true
	}
	r.mu.Unlock()

	f, err := r.src.InstrumentFilter(ctx, instrument)
	if err != nil {
		logger.Warn("instrument filter fetch failed for %s, degraded precision in effect: %v", instrument, err)
		return defaultFilter(instrument), false
	}

	r.mu.Lock()
	r.cache[instrument] = f
	r.mu.Unlock()
	return f, true
}

// Invalidate drops the cached rules so the next call refetches.
func (r *Resolver) Invalidate(instrument string) {
	r.mu.Lock()
	delete(r.cache, instrument)
	r.mu.Unlock()
}

// Coarse per-instrument fallbacks. Whole-unit quantity steps are always a
// legal multiple of the real step, so a degraded order can be truncated more
// than necessary but never rejected for precision.
var builtinFilters = map[string]models.InstrumentFilter{
	"BTCUSDT": {QuantityStep: dec("0.001"), PriceTick: dec("0.1"), MinQuantity: dec("0.001")},
	"ETHUSDT": {QuantityStep: dec("0.01"), PriceTick: dec("0.01"), MinQuantity: dec("0.01")},
}

func defaultFilter(instrument string) models.InstrumentFilter {
	if f, ok := builtinFilters[instrument]; ok {
		f.Instrument = instrument
		return f
	}
	return models.InstrumentFilter{
		Instrument:   instrument,
		QuantityStep: decimal.NewFromInt(1),
		PriceTick:    dec("0.01"),
		MinQuantity:  decimal.NewFromInt(1),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
