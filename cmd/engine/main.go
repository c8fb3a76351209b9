package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"trade_engine/internal/modules/binance_client"
	"trade_engine/internal/modules/config"
	"trade_engine/internal/modules/health"
	"trade_engine/internal/modules/journal"
	"trade_engine/internal/modules/notifier"
	"trade_engine/internal/modules/postgres"
	signalmod "trade_engine/internal/modules/signal"
	"trade_engine/internal/modules/trader"
	"trade_engine/pkg/logger"
	"trade_engine/pkg/tracing"
)

const serviceName = "trade_engine"

func main() {
	logger.SetServiceName(serviceName)
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := fx.New(
		fx.Provide(
			func() context.Context { return ctx },
		),
		config.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) {
			tracing.SetServiceName(serviceName)
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				logger.Warn("jaeger unavailable, tracing disabled: %v", err)
				return
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					closeTracer()
					return nil
				},
			})
		}),
		postgres.Module(),
		journal.Module(),
		binance_client.Module(),
		health.Module(),
		notifier.Module(),
		signalmod.Module(),
		trader.Module(),
	)

	app.Run()

	if err := app.Err(); err != nil {
		logger.Error("engine exited with error: %v", err)
		os.Exit(1)
	}
}
