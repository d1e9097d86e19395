// Package gateway is the typed client for the remote analysis service.
package gateway

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"TickerDesk/internal/model"
)

// Gateway defines one call per remote capability. Each call is a single
// round trip; callers decide whether and when to try again.
type Gateway interface {
	Stock(ctx context.Context, symbol string) (*model.StockData, error)
	Forecast(ctx context.Context, symbol string) (*model.Forecast, error)
	Screen(ctx context.Context, query url.Values) ([]model.ScreenerRow, error)
	Backtest(ctx context.Context, symbol string) (*model.BacktestReport, error)
	Portfolio(ctx context.Context) (*model.PortfolioSnapshot, error)
	StartTrader(ctx context.Context, symbol string) error
	StopTrader(ctx context.Context, symbol string) error
	ResetPortfolio(ctx context.Context, amount decimal.Decimal) error
	Name() string
}

var _ Gateway = (*HTTPGateway)(nil)
