package signal

import (
	"context"

	"go.uber.org/fx"

	"trade_engine/internal/modules/signal/service"
	"trade_engine/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("signal",
		fx.Provide(
			service.NewEMARSI,
			service.NewStream,
			func(e *service.EMARSI) service.Source { return e },
		),

		fx.Invoke(func(lc fx.Lifecycle, engine *service.EMARSI, stream *service.Stream, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					candles := stream.Candles(ctx)
					go func() {
						logger.Info("signal feed started")
						for {
							select {
							case <-ctx.Done():
								logger.Info("signal feed stopped")
								return
							case c, ok := <-candles:
								if !ok {
									logger.Info("candle stream closed")
									return
								}
								engine.OnCandle(c)
							}
						}
					}()
					return nil
				},
			})
		}),
	)
}
