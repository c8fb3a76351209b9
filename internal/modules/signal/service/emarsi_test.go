package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Trading = config.Trading{
		Instrument:    "ETHUSDT",
		Timeframe:     "1m",
		EMAShort:      9,
		EMALong:       21,
		RSIPeriod:     14,
		RSIOverbought: 70,
		RSIOversold:   30,
	}
	return cfg
}

func candle(close string) models.CandleTick {
	return models.CandleTick{
		Instrument: "ETHUSDT",
		Close:      decimal.RequireFromString(close),
	}
}

func feed(e *EMARSI, close string, n int) {
	for i := 0; i < n; i++ {
		e.OnCandle(candle(close))
	}
}

func TestWarmupProducesNoDirection(t *testing.T) {
	e := NewEMARSI(testConfig())

	feed(e, "100", 10)
	sig := e.Latest()
	assert.Equal(t, models.DirectionNone, sig.Direction)
	assert.Zero(t, sig.Strength)
}

func TestSignalAfterWarmup(t *testing.T) {
	e := NewEMARSI(testConfig())

	// flat price series: RSI bottoms out while the short EMA converges
	// faster than the long one
	feed(e, "100", 30)

	sig := e.Latest()
	assert.Equal(t, models.DirectionLong, sig.Direction)
	assert.Greater(t, sig.Strength, 0.0)
	assert.LessOrEqual(t, sig.Strength, 1.0)
	assert.True(t, sig.Price.Equal(decimal.RequireFromString("100")))
	assert.NotEmpty(t, sig.Reason)
}

func TestNonPositiveCloseIgnored(t *testing.T) {
	e := NewEMARSI(testConfig())

	feed(e, "100", 30)
	before := e.Latest()

	e.OnCandle(candle("0"))
	after := e.Latest()
	assert.Equal(t, before.Direction, after.Direction, "zero closes must not reset the signal")
}

func TestSignalCarriesInstrument(t *testing.T) {
	e := NewEMARSI(testConfig())
	assert.Equal(t, "ETHUSDT", e.Latest().Instrument)

	feed(e, "100", 1)
	assert.Equal(t, "ETHUSDT", e.Latest().Instrument)
}
