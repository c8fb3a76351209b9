package binance_client

import (
	"go.uber.org/fx"

	"trade_engine/internal/modules/binance_client/service"
)

func Module() fx.Option {
	return fx.Module("binance_client",
		fx.Provide(
			service.NewClient,
		),
	)
}
