package config

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Exchange.BaseURL = "https://fapi.binance.com"
	cfg.Exchange.APIKey = "key"
	cfg.Exchange.SecretKey = "secret"
	cfg.Trading = Trading{
		Instrument:      "ETHUSDT",
		Timeframe:       "1m",
		BalanceFraction: 0.1,
		OpenThreshold:   0.3,
		StopLossPct:     0.05,
		TakeProfitPct:   0.1,
		MaxDailyLossPct: 0.1,
		MaxDrawdownPct:  0.2,
		CooldownSeconds: 300,
		PollSeconds:     60,
		ReconcileEvery:  5,
		CloseRetryMax:   5,
		EMAShort:        9,
		EMALong:         21,
		RSIPeriod:       14,
	}
	return cfg
}

func TestValidateAccepts(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Exchange.APIKey = ""
	cfg.Trading.Instrument = ""
	cfg.Trading.StopLossPct = 1.5

	err := cfg.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3, "every failure reported in one pass")

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "exchange.api_key")
	assert.Contains(t, fields, "trading.instrument")
	assert.Contains(t, fields, "trading.stop_loss_pct")
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"balance fraction above one", func(c *Config) { c.Trading.BalanceFraction = 1.5 }},
		{"zero open threshold", func(c *Config) { c.Trading.OpenThreshold = 0 }},
		{"negative cooldown", func(c *Config) { c.Trading.CooldownSeconds = -1 }},
		{"zero poll interval", func(c *Config) { c.Trading.PollSeconds = 0 }},
		{"zero reconcile cadence", func(c *Config) { c.Trading.ReconcileEvery = 0 }},
		{"ema short above long", func(c *Config) { c.Trading.EMAShort = 30 }},
		{"zero rsi period", func(c *Config) { c.Trading.RSIPeriod = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	tr := Trading{CooldownSeconds: 300, PollSeconds: 60, CloseRetryBaseMS: 500}
	assert.Equal(t, 5*time.Minute, tr.Cooldown())
	assert.Equal(t, time.Minute, tr.PollInterval())
	assert.Equal(t, 500*time.Millisecond, tr.CloseRetryBase())
}
