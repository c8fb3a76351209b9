package notifier

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"trade_engine/internal/modules/config"
	healthsvc "trade_engine/internal/modules/health/service"
	"trade_engine/internal/notify"
	"trade_engine/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("notifier",
		fx.Provide(
			func(cfg *config.Config, state *healthsvc.State) (notify.Notifier, error) {
				if cfg.Telegram.Token == "" {
					logger.Info("telegram not configured, using stdout notifier")
					return notify.NewStdout(), nil
				}
				return notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, renderStatus(state))
			},
		),

		fx.Invoke(func(lc fx.Lifecycle, n notify.Notifier, ctx context.Context) {
			tg, ok := n.(*notify.Telegram)
			if !ok {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					return tg.Start(ctx)
				},
			})
		}),
	)
}

func renderStatus(state *healthsvc.State) notify.StatusFunc {
	return func() string {
		st, seen := state.Last()
		if !seen {
			return "⏳ No ticks yet"
		}
		halt := "no"
		if st.Halted {
			halt = string(st.HaltReason)
		}
		return fmt.Sprintf(
			"📊 tick %d\nposition: %s %s @ %s\nbalance: %s (peak %s)\nhalted: %s\nstuck: %v",
			st.Tick,
			st.Position.Side, st.Position.Size, st.Position.EntryPrice,
			st.Budget.CurrentBalance, st.Budget.PeakBalance,
			halt, st.Stuck,
		)
	}
}
