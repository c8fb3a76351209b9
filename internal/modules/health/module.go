package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"trade_engine/internal/modules/config"
	"trade_engine/internal/modules/health/service"
	tradersvc "trade_engine/internal/modules/trader/service"
)

func NewMux(state *service.State) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/statusz", func(w http.ResponseWriter, r *http.Request) {
		st, seen := state.Last()
		resp := map[string]any{
			"ready":     seen,
			"uptimeSec": int64(state.Uptime().Seconds()),
		}
		if seen {
			resp["tick"] = st.Tick
			resp["position"] = map[string]any{
				"side":       string(st.Position.Side),
				"size":       st.Position.Size.String(),
				"entryPrice": st.Position.EntryPrice.String(),
			}
			resp["balance"] = st.Budget.CurrentBalance.String()
			resp["peakBalance"] = st.Budget.PeakBalance.String()
			resp["halted"] = st.Halted
			resp["haltReason"] = string(st.HaltReason)
			resp["stuck"] = st.Stuck
			resp["lastTickUnix"] = st.At.Unix()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, mux *http.ServeMux) {
	srv := &http.Server{
		Addr:              cfg.Health.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Health.Addr)
			if err != nil {
				return err
			}
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			func(s *service.State) tradersvc.StatusSink { return s },
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
