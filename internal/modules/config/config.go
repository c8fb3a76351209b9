package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	apiKeyENV         = "BINANCE_API_KEY"
	secretKeyENV      = "BINANCE_SECRET_KEY"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Exchange struct {
		BaseURL   string `yaml:"base_url"`
		WSBaseURL string `yaml:"ws_base_url"`
		APIKey    string `yaml:"api_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"exchange"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	DB string `yaml:"db_dsn"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Health struct {
		Addr string `yaml:"addr"`
	} `yaml:"health"`

	Trading Trading `yaml:"trading"`
}

// Trading — the engine's own knobs. Percentages are fractions: 0.05 => 5%.
type Trading struct {
	Instrument      string  `yaml:"instrument"`
	Timeframe       string  `yaml:"timeframe"`
	BalanceFraction float64 `yaml:"balance_fraction"`
	OpenThreshold   float64 `yaml:"open_threshold"`
	StopLossPct     float64 `yaml:"stop_loss_pct"`
	TakeProfitPct   float64 `yaml:"take_profit_pct"`
	MaxDailyLossPct float64 `yaml:"max_daily_loss_pct"`
	MaxDrawdownPct  float64 `yaml:"max_drawdown_pct"`
	CooldownSeconds int     `yaml:"cooldown_seconds"`
	PollSeconds     int     `yaml:"poll_interval_seconds"`
	ReconcileEvery  int     `yaml:"reconcile_every"`

	CloseRetryMax    int `yaml:"close_retry_max"`
	CloseRetryBaseMS int `yaml:"close_retry_base_ms"`

	// EMA/RSI signal defaults
	EMAShort      int     `yaml:"ema_short"`
	EMALong       int     `yaml:"ema_long"`
	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
}

func (t Trading) Cooldown() time.Duration     { return time.Duration(t.CooldownSeconds) * time.Second }
func (t Trading) PollInterval() time.Duration { return time.Duration(t.PollSeconds) * time.Second }
func (t Trading) CloseRetryBase() time.Duration {
	return time.Duration(t.CloseRetryBaseMS) * time.Millisecond
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Trading: Trading{
			Timeframe:        getenvDefault("TIMEFRAME", "1m"),
			BalanceFraction:  floatFromEnv("BALANCE_FRACTION", 0.1),
			OpenThreshold:    floatFromEnv("OPEN_THRESHOLD", 0.3),
			StopLossPct:      0.05,
			TakeProfitPct:    0.1,
			MaxDailyLossPct:  0.1,
			MaxDrawdownPct:   0.2,
			CooldownSeconds:  intFromEnv("COOLDOWN_SECONDS", 300),
			PollSeconds:      intFromEnv("POLL_INTERVAL_SECONDS", 60),
			ReconcileEvery:   intFromEnv("RECONCILE_EVERY", 5),
			CloseRetryMax:    intFromEnv("CLOSE_RETRY_MAX", 5),
			CloseRetryBaseMS: intFromEnv("CLOSE_RETRY_BASE_MS", 500),

			EMAShort:      intFromEnv("EMA_SHORT", 9),
			EMALong:       intFromEnv("EMA_LONG", 21),
			RSIPeriod:     intFromEnv("RSI_PERIOD", 14),
			RSIOverbought: floatFromEnv("RSI_OVERBOUGHT", 70),
			RSIOversold:   floatFromEnv("RSI_OVERSOLD", 30),
		},
	}
	err = decoder.Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	if key := os.Getenv(apiKeyENV); key != "" {
		config.Exchange.APIKey = key
	}
	if secret := os.Getenv(secretKeyENV); secret != "" {
		config.Exchange.SecretKey = secret
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if config.Exchange.BaseURL == "" {
		config.Exchange.BaseURL = "https://fapi.binance.com"
	}
	if config.Exchange.WSBaseURL == "" {
		config.Exchange.WSBaseURL = "wss://fstream.binance.com/ws"
	}
	if config.Health.Addr == "" {
		config.Health.Addr = ":8080"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
