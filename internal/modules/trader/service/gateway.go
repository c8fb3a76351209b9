package service

import (
	"context"

	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
)

// Gateway is the slice of the exchange client the engine depends on. The
// exchange is authoritative for everything it reports; local state is only a
// belief between reconciliations.
type Gateway interface {
	LastPrice(ctx context.Context, instrument string) (decimal.Decimal, error)
	InstrumentFilter(ctx context.Context, instrument string) (models.InstrumentFilter, error)
	OpenPositions(ctx context.Context) ([]models.AccountPosition, error)
	PositionMode(ctx context.Context) (models.PositionMode, error)
	SetPositionMode(ctx context.Context, mode models.PositionMode) error
	PlaceMarket(ctx context.Context, instrument string, side models.OrderSide, quantity decimal.Decimal, reduceOnly bool) (models.OrderResult, error)
	WalletBalance(ctx context.Context, asset string) (decimal.Decimal, error)
}
