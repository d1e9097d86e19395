package gateway

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerDesk/internal/gateway/gatewaytest"
	"TickerDesk/internal/model"
)

func newTestGateway(t *testing.T) (*HTTPGateway, *gatewaytest.Server) {
	t.Helper()
	srv := gatewaytest.New(t)
	return NewHTTPGateway(srv.URL(), 5*time.Second, "", zerolog.Nop()), srv
}

func TestStock_DecodesHistoryAndIndicators(t *testing.T) {
	gw, srv := newTestGateway(t)
	last := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	srv.SetStock("TSLA", gatewaytest.StockBody("TSLA", last, []float64{100, 101.5, 103.25}))

	data, err := gw.Stock(context.Background(), " tsla ")
	require.NoError(t, err)

	assert.Equal(t, "TSLA", data.Symbol)
	require.Len(t, data.History, 3)
	assert.Equal(t, "2024-01-28", data.History[0].Date.String())
	assert.Equal(t, "2024-01-30", data.History[2].Date.String())
	assert.True(t, data.History[2].Close.Equal(decimal.RequireFromString("103.25")))
	assert.False(t, data.MarketCap.Valid, "N/A market cap decodes as absent")
	assert.True(t, data.Volume.Valid)
	assert.True(t, data.Indicators.BBPercent.Equal(decimal.RequireFromString("0.5")))
}

func TestStock_UnknownSymbolIsNotFound(t *testing.T) {
	gw, _ := newTestGateway(t)

	_, err := gw.Stock(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNetwork(err))
}

func TestStock_EmptyHistoryIsNotFound(t *testing.T) {
	gw, srv := newTestGateway(t)
	srv.SetStock("EMPTY", gatewaytest.StockBody("EMPTY", time.Now(), nil))

	_, err := gw.Stock(context.Background(), "EMPTY")
	assert.True(t, IsNotFound(err))
}

func TestStock_TransportFailureIsNetworkError(t *testing.T) {
	gw, srv := newTestGateway(t)
	srv.Close()

	_, err := gw.Stock(context.Background(), "TSLA")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.False(t, IsNotFound(err))
}

func TestForecast_HeadingFromTrend(t *testing.T) {
	gw, srv := newTestGateway(t)
	first := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	srv.SetForecast("TSLA", gatewaytest.ForecastBody("TSLA", first, []float64{104, 105, 107}))

	f, err := gw.Forecast(context.Background(), "TSLA")
	require.NoError(t, err)
	require.Len(t, f.Predictions, 3)
	assert.Equal(t, "2024-01-31", f.Predictions[0].Date.String())
	assert.Equal(t, model.DirectionUp, f.Heading())
}

func TestForecast_ServerErrorIsStatusError(t *testing.T) {
	gw, srv := newTestGateway(t)
	srv.Fail(gatewaytest.RoutePredict, http.StatusInternalServerError)

	_, err := gw.Forecast(context.Background(), "TSLA")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.False(t, IsNotFound(err))
}

func TestScreen_PassesQueryThrough(t *testing.T) {
	gw, srv := newTestGateway(t)
	srv.SetScreener(
		map[string]any{"symbol": "NVDA", "price": 880.1, "signal": "Strong Buy", "score": 5, "market_cap": 2.1e12},
		map[string]any{"symbol": "INTC", "price": 30.5, "signal": "Sell", "score": -2, "market_cap": "N/A"},
	)

	q := url.Values{"min_price": {"50"}, "sector": {"Technology"}}
	rows, err := gw.Screen(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "NVDA", rows[0].Symbol)
	assert.Equal(t, model.BiasBullish, rows[0].Bias())
	assert.Equal(t, model.BiasBearish, rows[1].Bias())
	assert.True(t, rows[0].MarketCap.Valid)
	assert.False(t, rows[1].MarketCap.Valid)
	assert.Equal(t, q, srv.LastScreenerQuery())
}

func TestScreen_NoFiltersSendsNoQuery(t *testing.T) {
	gw, srv := newTestGateway(t)

	rows, err := gw.Screen(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, srv.LastScreenerQuery())
}

func TestBacktest_Decodes(t *testing.T) {
	gw, srv := newTestGateway(t)
	srv.SetBacktest("AAPL", map[string]any{
		"symbol": "AAPL", "days_tested": 90, "initial_balance": 10000, "final_balance": 10840.5,
		"return_percent": 8.41, "total_trades": 3, "win_rate": 66.7,
		"trades": []map[string]any{
			{"date": "2024-01-02", "type": "BUY", "price": 185.2, "shares": 53.0},
			{"date": "2024-01-20", "type": "SELL", "price": 191.9, "profit": 355.1},
		},
	})

	r, err := gw.Backtest(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, 3, r.TotalTrades)
	require.Len(t, r.Trades, 2)
	assert.True(t, r.Trades[0].Shares.Valid)
	assert.False(t, r.Trades[0].Profit.Valid)
	assert.Equal(t, model.SideSell, r.Trades[1].Type)
	assert.True(t, r.Trades[1].Profit.Decimal.Equal(decimal.RequireFromString("355.1")))
}

func TestTraderCommandsAndReset(t *testing.T) {
	gw, srv := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.StartTrader(ctx, "nvda"))
	assert.Equal(t, []string{"NVDA"}, srv.Active())

	snap, err := gw.Portfolio(ctx)
	require.NoError(t, err)
	assert.True(t, snap.IsTrading("NVDA"))
	assert.Equal(t, "Initializing...", snap.TraderLogs["NVDA"])

	require.NoError(t, gw.StopTrader(ctx, "NVDA"))
	assert.Empty(t, srv.Active())

	require.NoError(t, gw.ResetPortfolio(ctx, decimal.RequireFromString("25000")))
	assert.Equal(t, 25000.0, srv.Balance())
}

func TestPortfolio_PositionWithoutLivePricing(t *testing.T) {
	gw, srv := newTestGateway(t)
	srv.AddPosition(map[string]any{
		"symbol": "TSLA", "type": "CALL", "strike": 255.0, "entry_price": 6.1, "quantity": 10, "cost": 6100.0,
	})
	srv.AddPosition(map[string]any{
		"symbol": "AMD", "type": "PUT", "strike": 150.0, "entry_price": 3.2, "quantity": 10, "cost": 3200.0,
		"current_opt_price": 3.9, "market_value": 3900.0, "unrealized_pl": 700.0, "return_pct": 21.88,
	})

	snap, err := gw.Portfolio(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Positions, 2)
	assert.False(t, snap.Positions[0].CurrentPrice.Valid)
	assert.Equal(t, model.OptionPut, snap.Positions[1].OptionType)
	assert.True(t, snap.Positions[1].UnrealizedPL.Decimal.Equal(decimal.NewFromInt(700)))
	assert.True(t, snap.Equity.Equal(decimal.NewFromInt(18900)))
}
