package trader

import (
	"context"

	"go.uber.org/fx"

	binancesvc "trade_engine/internal/modules/binance_client/service"
	"trade_engine/internal/modules/trader/service"
	"trade_engine/internal/quant"
	"trade_engine/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("trader",
		fx.Provide(
			func(c *binancesvc.Client) service.Gateway { return c },
			func(c *binancesvc.Client) quant.FilterSource { return c },
			quant.NewResolver,
			service.NewPositionBook,
			service.NewBudget,
			service.NewController,
			service.NewReconciler,
			service.NewLoop,
		),

		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, loop *service.Loop, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						if err := loop.Run(ctx); err != nil {
							logger.Error("trading loop terminated: %v", err)
							_ = sd.Shutdown()
						}
					}()
					return nil
				},
				OnStop: func(_ context.Context) error {
					loop.Stop()
					return nil
				},
			})
		}),
	)
}
