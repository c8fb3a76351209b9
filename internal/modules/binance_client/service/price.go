package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

func (c *Client) LastPrice(ctx context.Context, instrument string) (decimal.Decimal, error) {
	params := url.Values{"symbol": {instrument}}
	body, err := c.doPublic(ctx, "/fapi/v1/ticker/price", params)
	if err != nil {
		return decimal.Zero, err
	}

	var payload tickerPriceResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode: %w", err)
	}

	px, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price parse: %w (%q)", err, payload.Price)
	}
	if px.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("price <= 0: %s", payload.Price)
	}
	return px, nil
}
