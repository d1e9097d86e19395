package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerDesk/internal/gateway"
	"TickerDesk/internal/gateway/gatewaytest"
)

func execute(t *testing.T, srv *gatewaytest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TICKERDESK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TICKERDESK_LOG_LEVEL", "error")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--api-url", srv.URL()))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedTSLA(srv *gatewaytest.Server) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200 + float64(i)
	}
	srv.SetStock("TSLA", gatewaytest.StockBody("TSLA", time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC), closes))
	srv.SetForecast("TSLA", gatewaytest.ForecastBody("TSLA", time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
		[]float64{230, 231, 232}))
}

func TestAnalyzeCmd(t *testing.T) {
	srv := gatewaytest.New(t)
	seedTSLA(srv)

	out, err := execute(t, srv, "analyze", "tsla")
	require.NoError(t, err)
	assert.Contains(t, out, "TSLA")
	assert.Contains(t, out, "Forecast: UP")
	assert.Contains(t, out, "Feb 2")
	assert.Equal(t, 1, srv.Calls(gatewaytest.RouteStock))
	assert.Equal(t, 1, srv.Calls(gatewaytest.RoutePredict))
}

func TestAnalyzeCmd_Explain(t *testing.T) {
	srv := gatewaytest.New(t)
	seedTSLA(srv)

	out, err := execute(t, srv, "analyze", "TSLA", "--explain", "rsi")
	require.NoError(t, err)
	assert.Contains(t, out, "Relative Strength Index (RSI)")
	assert.Contains(t, out, "Signal: Neutral")
}

func TestAnalyzeCmd_UnknownSymbol(t *testing.T) {
	srv := gatewaytest.New(t)

	_, err := execute(t, srv, "analyze", "NOPE")
	require.Error(t, err)
	assert.True(t, gateway.IsNotFound(err))
}

func TestScreenCmd_PassesFilters(t *testing.T) {
	srv := gatewaytest.New(t)

	out, err := execute(t, srv, "screen", "--min-price", "50", "--sector", "Technology", "--min-market-cap", "2")
	require.NoError(t, err)
	assert.Equal(t, "No matches.\n", out)

	q := srv.LastScreenerQuery()
	assert.Equal(t, "50", q.Get("min_price"))
	assert.Equal(t, "Technology", q.Get("sector"))
	assert.Equal(t, "2000000000", q.Get("min_market_cap"))
}

func TestScreenCmd_RejectsBadFilter(t *testing.T) {
	srv := gatewaytest.New(t)

	_, err := execute(t, srv, "screen", "--macd-signal", "sideways")
	require.Error(t, err)
	assert.Equal(t, 0, srv.Calls(gatewaytest.RouteScreener))
}

func TestTraderCmds(t *testing.T) {
	srv := gatewaytest.New(t)

	out, err := execute(t, srv, "trader", "start", "nvda")
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, srv.Active())
	assert.Contains(t, out, "NVDA   running")

	out, err = execute(t, srv, "trader", "toggle", "NVDA")
	require.NoError(t, err)
	assert.Empty(t, srv.Active())
	assert.Contains(t, out, "stop NVDA")
	assert.Contains(t, out, "NVDA   stopped")
}

func TestResetCmd(t *testing.T) {
	srv := gatewaytest.New(t)

	out, err := execute(t, srv, "reset", "20000")
	require.NoError(t, err)
	assert.Equal(t, 20000.0, srv.Balance())
	assert.Contains(t, out, "Balance: $20,000.00")

	_, err = execute(t, srv, "reset", "lots")
	require.Error(t, err)
}

func TestResetCmd_DefaultAmount(t *testing.T) {
	srv := gatewaytest.New(t)
	_, err := execute(t, srv, "reset", "500")
	require.NoError(t, err)
	require.Equal(t, 500.0, srv.Balance())

	_, err = execute(t, srv, "reset")
	require.NoError(t, err)
	assert.Equal(t, 15000.0, srv.Balance())
}

func TestRootCmd_RejectsUnknownView(t *testing.T) {
	srv := gatewaytest.New(t)

	_, err := execute(t, srv, "--view", "charts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown view "charts"`)
	assert.Zero(t, srv.Calls(gatewaytest.RouteStock))
}
