package service

import (
	"fmt"
	"sync"
	"time"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
)

// EMARSI — EMA crossover filtered by RSI, collapsed to one instrument.
// Direction holds while the condition holds; strength grows with RSI depth
// beyond the configured band.
type EMARSI struct {
	mu sync.Mutex

	cfg config.Trading

	emaShort float64
	emaLong  float64
	rsi      rsiState
	samples  int

	latest models.Signal
}

type rsiState struct {
	prev        float64
	avgGain     float64
	avgLoss     float64
	initialized bool
}

func NewEMARSI(cfg *config.Config) *EMARSI {
	return &EMARSI{
		cfg:    cfg.Trading,
		latest: models.Signal{Instrument: cfg.Trading.Instrument},
	}
}

// Latest returns the signal snapshot computed from the last closed candle.
func (e *EMARSI) Latest() models.Signal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest
}

func (e *EMARSI) OnCandle(c models.CandleTick) {
	price, _ := c.Close.Float64()
	if price <= 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	direction, strength, ok := e.update(price)

	sig := models.Signal{
		Instrument: c.Instrument,
		Price:      c.Close,
		At:         time.Now(),
	}
	if ok {
		sig.Direction = direction
		sig.Strength = strength
		sig.Reason = fmt.Sprintf("EMA/RSI %d @ %.5f strength=%.2f", direction, price, strength)
	}
	e.latest = sig
}

func (e *EMARSI) update(price float64) (models.Direction, float64, bool) {
	kShort := 2.0 / float64(e.cfg.EMAShort+1)
	kLong := 2.0 / float64(e.cfg.EMALong+1)
	e.emaShort = e.emaShort + kShort*(price-e.emaShort)
	e.emaLong = e.emaLong + kLong*(price-e.emaLong)

	st := &e.rsi
	if !st.initialized {
		st.prev = price
		st.initialized = true
		return models.DirectionNone, 0, false
	}

	change := price - st.prev
	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	alpha := 1.0 / float64(e.cfg.RSIPeriod)
	if st.avgGain == 0 && st.avgLoss == 0 {
		st.avgGain, st.avgLoss = gain, loss
	} else {
		st.avgGain = (1-alpha)*st.avgGain + alpha*gain
		st.avgLoss = (1-alpha)*st.avgLoss + alpha*loss
	}
	st.prev = price

	rs := 0.0
	if st.avgLoss != 0 {
		rs = st.avgGain / st.avgLoss
	}
	rsi := 100 - (100 / (1 + rs))

	// warmup: wait for enough closed candles
	e.samples++
	warmup := e.cfg.EMALong
	if e.cfg.RSIPeriod+1 > warmup {
		warmup = e.cfg.RSIPeriod + 1
	}
	if e.samples < warmup {
		return models.DirectionNone, 0, false
	}

	ob, os := e.cfg.RSIOverbought, e.cfg.RSIOversold

	if e.emaShort > e.emaLong && rsi < os {
		return models.DirectionLong, clamp01((os-rsi)/os + 0.3), true
	}
	if e.emaShort < e.emaLong && rsi > ob {
		return models.DirectionShort, clamp01((rsi-ob)/(100-ob) + 0.3), true
	}
	return models.DirectionNone, 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (e *EMARSI) Dump() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("EMA_S=%.4f EMA_L=%.4f", e.emaShort, e.emaLong)
}
