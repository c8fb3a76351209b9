package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Exchange.BaseURL = srv.URL
	cfg.Exchange.APIKey = "test-key"
	cfg.Exchange.SecretKey = "test-secret"
	return NewClient(cfg)
}

func TestLastPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/ticker/price", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","price":"2000.55"}`))
	})

	px, err := c.LastPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.True(t, px.Equal(decimal.RequireFromString("2000.55")))
}

func TestLastPriceRejectsNonPositive(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","price":"0"}`))
	})

	_, err := c.LastPrice(context.Background(), "ETHUSDT")
	assert.Error(t, err)
}

func TestAPIErrorSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})

	_, err := c.LastPrice(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-1121")
	assert.Contains(t, err.Error(), "Invalid symbol")
}

func TestInstrumentFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/exchangeInfo", r.URL.Path)
		_, _ = w.Write([]byte(`{"symbols":[{
			"symbol":"ETHUSDT","status":"TRADING",
			"filters":[
				{"filterType":"PRICE_FILTER","tickSize":"0.01"},
				{"filterType":"LOT_SIZE","stepSize":"0.001","minQty":"0.001"},
				{"filterType":"MARKET_LOT_SIZE","stepSize":"0.001","minQty":"0.001"}
			]}]}`))
	})

	f, err := c.InstrumentFilter(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", f.Instrument)
	assert.True(t, f.QuantityStep.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, f.PriceTick.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, f.MinQuantity.Equal(decimal.RequireFromString("0.001")))
}

func TestInstrumentFilterNotTrading(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbols":[{"symbol":"ETHUSDT","status":"BREAK","filters":[]}]}`))
	})

	_, err := c.InstrumentFilter(context.Background(), "ETHUSDT")
	assert.Error(t, err)
}

func TestInstrumentFilterIncomplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbols":[{"symbol":"ETHUSDT","status":"TRADING","filters":[
			{"filterType":"PRICE_FILTER","tickSize":"0.01"}]}]}`))
	})

	_, err := c.InstrumentFilter(context.Background(), "ETHUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
}

func TestOpenPositions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v2/positionRisk", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-MBX-APIKEY"))
		assert.NotEmpty(t, r.URL.Query().Get("signature"))
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))
		_, _ = w.Write([]byte(`[
			{"symbol":"ETHUSDT","positionAmt":"-0.5","entryPrice":"2000.0","positionSide":"BOTH"},
			{"symbol":"BTCUSDT","positionAmt":"0","entryPrice":"0.0","positionSide":"BOTH"},
			{"symbol":"BNBUSDT","positionAmt":"1.2","entryPrice":"310.5","positionSide":"LONG"}
		]`))
	})

	positions, err := c.OpenPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2, "zero-size entries are skipped")

	assert.Equal(t, models.SideShort, positions[0].Side, "negative amount means short")
	assert.True(t, positions[0].Size.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, models.SideLong, positions[1].Side)
}

func TestPositionMode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/positionSide/dual", r.URL.Path)
		_, _ = w.Write([]byte(`{"dualSidePosition":true}`))
	})

	mode, err := c.PositionMode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PositionModeHedge, mode)
}

func TestSetPositionMode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "false", r.URL.Query().Get("dualSidePosition"))
		_, _ = w.Write([]byte(`{"code":200,"msg":"success"}`))
	})

	require.NoError(t, c.SetPositionMode(context.Background(), models.PositionModeSingleSided))
}

func TestPlaceMarket(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fapi/v1/order", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "ETHUSDT", q.Get("symbol"))
		assert.Equal(t, "SELL", q.Get("side"))
		assert.Equal(t, "MARKET", q.Get("type"))
		assert.Equal(t, "0.5", q.Get("quantity"))
		assert.Equal(t, "true", q.Get("reduceOnly"))
		_, _ = w.Write([]byte(`{"orderId":123456,"status":"NEW"}`))
	})

	res, err := c.PlaceMarket(context.Background(), "ETHUSDT", models.OrderSell,
		decimal.RequireFromString("0.5"), true)
	require.NoError(t, err)
	assert.Equal(t, "123456", res.OrderID)
	assert.Equal(t, "NEW", res.Status)
}

func TestPlaceMarketRejectsZeroQuantity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.PlaceMarket(context.Background(), "ETHUSDT", models.OrderBuy, decimal.Zero, false)
	assert.Error(t, err)
}

func TestPlaceMarketEmptyOrderID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.PlaceMarket(context.Background(), "ETHUSDT", models.OrderBuy,
		decimal.RequireFromString("0.1"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orderId")
}

func TestWalletBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v2/balance", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"asset":"BNB","balance":"0.1"},
			{"asset":"USDT","balance":"1543.21"}
		]`))
	})

	bal, err := c.WalletBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("1543.21")))
}

func TestWalletBalanceUnknownAsset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.WalletBalance(context.Background(), "USDT")
	assert.Error(t, err)
}
