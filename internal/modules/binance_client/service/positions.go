package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
)

// OpenPositions returns every non-zero exposure on the account. A negative
// positionAmt is a short; hedge-mode accounts additionally tag entries with
// LONG/SHORT positionSide.
func (c *Client) OpenPositions(ctx context.Context) ([]models.AccountPosition, error) {
	body, err := c.doSigned(ctx, http.MethodGet, "/fapi/v2/positionRisk", nil)
	if err != nil {
		return nil, err
	}

	var entries []positionRiskEntry
	if err := sonic.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	res := make([]models.AccountPosition, 0, len(entries))
	for _, e := range entries {
		amt, err := decimal.NewFromString(e.PositionAmt)
		if err != nil || amt.IsZero() {
			continue
		}

		entry, err := decimal.NewFromString(e.EntryPrice)
		if err != nil {
			entry = decimal.Zero
		}

		side := models.SideLong
		if amt.Sign() < 0 {
			side = models.SideShort
		}
		switch e.PositionSide {
		case "LONG":
			side = models.SideLong
		case "SHORT":
			side = models.SideShort
		}

		res = append(res, models.AccountPosition{
			Instrument: e.Symbol,
			Side:       side,
			Size:       amt.Abs(),
			EntryPrice: entry,
		})
	}
	return res, nil
}

// WalletBalance returns the futures wallet balance for one asset.
func (c *Client) WalletBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	body, err := c.doSigned(ctx, http.MethodGet, "/fapi/v2/balance", nil)
	if err != nil {
		return decimal.Zero, err
	}

	var entries []balanceEntry
	if err := sonic.Unmarshal(body, &entries); err != nil {
		return decimal.Zero, fmt.Errorf("decode: %w", err)
	}

	for _, e := range entries {
		if e.Asset != asset {
			continue
		}
		bal, err := decimal.NewFromString(e.Balance)
		if err != nil {
			return decimal.Zero, fmt.Errorf("balance parse: %w (%q)", err, e.Balance)
		}
		return bal, nil
	}
	return decimal.Zero, fmt.Errorf("asset %s not found in balance", asset)
}
