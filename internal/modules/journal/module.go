package journal

import (
	"go.uber.org/fx"

	"trade_engine/internal/modules/journal/service"
	tradersvc "trade_engine/internal/modules/trader/service"
)

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			service.NewJournal,
			func(j *service.Journal) tradersvc.Journal { return j },
		),
	)
}
