package config

import (
	"fmt"
	"strings"
)

// FieldError — one invalid or missing configuration field.
type FieldError struct {
	Field string
	Msg   string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Msg }

// ValidationError aggregates every field error found in one pass, so the
// operator can fix the whole file at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Validate checks every required field for presence and range. An error here
// is startup-fatal: the trading loop never starts on a bad config.
func (c *Config) Validate() error {
	var fields []FieldError

	add := func(field, format string, args ...any) {
		fields = append(fields, FieldError{Field: field, Msg: fmt.Sprintf(format, args...)})
	}

	if c.Exchange.BaseURL == "" {
		add("exchange.base_url", "required")
	}
	if c.Exchange.APIKey == "" {
		add("exchange.api_key", "required (or env %s)", apiKeyENV)
	}
	if c.Exchange.SecretKey == "" {
		add("exchange.secret_key", "required (or env %s)", secretKeyENV)
	}

	t := c.Trading
	if t.Instrument == "" {
		add("trading.instrument", "required")
	}
	if t.BalanceFraction <= 0 || t.BalanceFraction > 1 {
		add("trading.balance_fraction", "must be in (0, 1], got %v", t.BalanceFraction)
	}
	if t.OpenThreshold <= 0 || t.OpenThreshold > 1 {
		add("trading.open_threshold", "must be in (0, 1], got %v", t.OpenThreshold)
	}
	if t.StopLossPct <= 0 || t.StopLossPct >= 1 {
		add("trading.stop_loss_pct", "must be in (0, 1), got %v", t.StopLossPct)
	}
	if t.TakeProfitPct <= 0 || t.TakeProfitPct >= 1 {
		add("trading.take_profit_pct", "must be in (0, 1), got %v", t.TakeProfitPct)
	}
	if t.MaxDailyLossPct <= 0 || t.MaxDailyLossPct >= 1 {
		add("trading.max_daily_loss_pct", "must be in (0, 1), got %v", t.MaxDailyLossPct)
	}
	if t.MaxDrawdownPct <= 0 || t.MaxDrawdownPct >= 1 {
		add("trading.max_drawdown_pct", "must be in (0, 1), got %v", t.MaxDrawdownPct)
	}
	if t.CooldownSeconds < 0 {
		add("trading.cooldown_seconds", "must be >= 0, got %d", t.CooldownSeconds)
	}
	if t.PollSeconds <= 0 {
		add("trading.poll_interval_seconds", "must be > 0, got %d", t.PollSeconds)
	}
	if t.ReconcileEvery <= 0 {
		add("trading.reconcile_every", "must be > 0, got %d", t.ReconcileEvery)
	}
	if t.CloseRetryMax <= 0 {
		add("trading.close_retry_max", "must be > 0, got %d", t.CloseRetryMax)
	}
	if t.EMAShort <= 0 || t.EMALong <= 0 || t.EMAShort >= t.EMALong {
		add("trading.ema_short", "must satisfy 0 < ema_short < ema_long, got %d/%d", t.EMAShort, t.EMALong)
	}
	if t.RSIPeriod <= 0 {
		add("trading.rsi_period", "must be > 0, got %d", t.RSIPeriod)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
