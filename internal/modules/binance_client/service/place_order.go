package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
)

// PlaceMarket submits a market order. Quantity must already be quantized to
// the instrument's step; reduceOnly marks closing orders so they can never
// flip the position.
func (c *Client) PlaceMarket(
	ctx context.Context,
	instrument string,
	side models.OrderSide,
	quantity decimal.Decimal,
	reduceOnly bool,
) (models.OrderResult, error) {
	if quantity.Sign() <= 0 {
		return models.OrderResult{}, fmt.Errorf("PlaceMarket: quantity <= 0")
	}

	params := url.Values{
		"symbol":   {instrument},
		"side":     {string(side)},
		"type":     {"MARKET"},
		"quantity": {quantity.String()},
	}
	if reduceOnly {
		params.Set("reduceOnly", "true")
	}

	body, err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/order", params)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("PlaceMarket: %w", err)
	}

	var payload orderResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return models.OrderResult{}, fmt.Errorf("PlaceMarket decode: %w; body=%s", err, string(body))
	}
	if payload.OrderID == 0 {
		return models.OrderResult{}, fmt.Errorf("PlaceMarket: empty orderId, body=%s", string(body))
	}

	return models.OrderResult{
		OrderID: strconv.FormatInt(payload.OrderID, 10),
		Status:  payload.Status,
	}, nil
}
