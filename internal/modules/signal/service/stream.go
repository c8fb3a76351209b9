package service

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
	"trade_engine/pkg/logger"
)

// Stream delivers closed candles for one instrument over the futures
// websocket, reconnecting forever until ctx is cancelled.
type Stream struct {
	baseURL    string
	instrument string
	timeframe  string
	dialer     *websocket.Dialer
}

func NewStream(cfg *config.Config) *Stream {
	return &Stream{
		baseURL:    strings.TrimRight(cfg.Exchange.WSBaseURL, "/"),
		instrument: cfg.Trading.Instrument,
		timeframe:  cfg.Trading.Timeframe,
		dialer:     websocket.DefaultDialer,
	}
}

type klineEvent struct {
	EventType string `json:"e"`
	Kline     struct {
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Volume   string `json:"v"`
		CloseMS  int64  `json:"T"`
		IsClosed bool   `json:"x"`
	} `json:"k"`
}

// Candles returns a channel of closed candles. The channel closes only when
// ctx is cancelled; transient connection failures reconnect with a short
// pause.
func (s *Stream) Candles(ctx context.Context) <-chan models.CandleTick {
	ch := make(chan models.CandleTick)

	url := s.baseURL + "/" + strings.ToLower(s.instrument) + "@kline_" + s.timeframe

	go func() {
		defer close(ch)

		for {
			if ctx.Err() != nil {
				return
			}

			logger.Info("ws connect %s", url)
			conn, _, err := s.dialer.DialContext(ctx, url, nil)
			if err != nil {
				logger.Warn("ws dial error: %v", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			// drop the connection on cancel so ReadMessage unblocks
			done := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					_ = conn.Close()
				case <-done:
				}
			}()

			s.readLoop(ctx, conn, ch)
			close(done)
			_ = conn.Close()
		}
	}()

	return ch
}

func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn, ch chan<- models.CandleTick) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("ws read error: %v", err)
			}
			return
		}

		var ev klineEvent
		if err := sonic.Unmarshal(msg, &ev); err != nil || ev.EventType != "kline" {
			continue
		}
		if !ev.Kline.IsClosed {
			continue
		}

		tick, ok := s.toTick(ev)
		if !ok {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case ch <- tick:
		}
	}
}

func (s *Stream) toTick(ev klineEvent) (models.CandleTick, bool) {
	parse := func(v string) (decimal.Decimal, bool) {
		d, err := decimal.NewFromString(v)
		return d, err == nil
	}

	o, ok1 := parse(ev.Kline.Open)
	h, ok2 := parse(ev.Kline.High)
	l, ok3 := parse(ev.Kline.Low)
	c, ok4 := parse(ev.Kline.Close)
	v, ok5 := parse(ev.Kline.Volume)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return models.CandleTick{}, false
	}

	return models.CandleTick{
		Instrument: s.instrument,
		Open:       o,
		High:       h,
		Low:        l,
		Close:      c,
		Volume:     v,
		ClosedAt:   ev.Kline.CloseMS,
	}, true
}
