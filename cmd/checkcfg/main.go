// checkcfg loads a config file the same way the engine does, prints the
// effective settings and reports every validation failure at once. Run it
// before deploying a config change.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"trade_engine/internal/modules/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "checkcfg: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	name := os.Getenv("CONFIG_FILE")
	if name == "" {
		name = "values_local.yaml"
	}
	path := "configs/" + name

	if err := printSettings(path); err != nil {
		return err
	}

	cfg, err := config.NewConfig()
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Println("\nINVALID:")
			for _, f := range verr.Fields {
				fmt.Printf("  %s: %s\n", f.Field, f.Msg)
			}
			return errors.New("config rejected")
		}
		return err
	}

	fmt.Printf("\nOK: %s %s, poll %s, reconcile every %d ticks\n",
		cfg.Trading.Instrument, cfg.Trading.Timeframe,
		cfg.Trading.PollInterval(), cfg.Trading.ReconcileEvery)
	return nil
}

func printSettings(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "read config")
	}

	keys := v.AllKeys()
	sort.Strings(keys)

	fmt.Printf("%s:\n", path)
	for _, k := range keys {
		val := v.Get(k)
		if isSecretKey(k) && fmt.Sprint(val) != "" {
			val = "***"
		}
		fmt.Printf("  %-32s %v\n", k, val)
	}
	return nil
}

func isSecretKey(k string) bool {
	switch k {
	case "exchange.api_key", "exchange.secret_key", "telegram.token", "db_dsn":
		return true
	}
	return false
}
