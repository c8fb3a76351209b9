package service

import "trade_engine/internal/models"

// Source is what the trading loop sees: the most recent normalized signal,
// valid as a snapshot until the next candle closes. The strategy behind it is
// opaque to the engine.
type Source interface {
	Latest() models.Signal
}
