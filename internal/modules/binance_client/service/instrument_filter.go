package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"trade_engine/internal/models"
)

// InstrumentFilter fetches the increment rules for one instrument from
// exchangeInfo (LOT_SIZE step/min quantity, PRICE_FILTER tick).
func (c *Client) InstrumentFilter(ctx context.Context, instrument string) (models.InstrumentFilter, error) {
	params := url.Values{"symbol": {instrument}}
	body, err := c.doPublic(ctx, "/fapi/v1/exchangeInfo", params)
	if err != nil {
		return models.InstrumentFilter{}, err
	}

	var payload exchangeInfoResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return models.InstrumentFilter{}, fmt.Errorf("decode: %w", err)
	}
	if len(payload.Symbols) == 0 {
		return models.InstrumentFilter{}, fmt.Errorf("instrument %s not found", instrument)
	}

	sym := payload.Symbols[0]
	if sym.Status != "" && sym.Status != "TRADING" {
		return models.InstrumentFilter{}, fmt.Errorf("instrument %s not trading: status=%s", instrument, sym.Status)
	}

	parsePos := func(name, s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, fmt.Errorf("%s empty", name)
		}
		v, err := decimal.NewFromString(s)
		if err != nil || v.Sign() <= 0 {
			return decimal.Zero, fmt.Errorf("%s parse: %v (%q)", name, err, s)
		}
		return v, nil
	}

	out := models.InstrumentFilter{Instrument: sym.Symbol}
	for _, f := range sym.Filters {
		switch f.FilterType {
		case "LOT_SIZE":
			step, err := parsePos("stepSize", f.StepSize)
			if err != nil {
				return models.InstrumentFilter{}, err
			}
			minQty, err := parsePos("minQty", f.MinQty)
			if err != nil {
				return models.InstrumentFilter{}, err
			}
			out.QuantityStep = step
			out.MinQuantity = minQty
		case "PRICE_FILTER":
			tick, err := parsePos("tickSize", f.TickSize)
			if err != nil {
				return models.InstrumentFilter{}, err
			}
			out.PriceTick = tick
		}
	}

	if out.QuantityStep.Sign() <= 0 || out.PriceTick.Sign() <= 0 {
		return models.InstrumentFilter{}, fmt.Errorf("instrument %s: incomplete filters", instrument)
	}
	return out, nil
}
