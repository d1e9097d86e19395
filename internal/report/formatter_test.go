package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"TickerDesk/internal/composer"
	"TickerDesk/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", Money(dec("1234.5")))
	assert.Equal(t, "-$12.00", Money(dec("-12")))
	assert.Equal(t, "+$3.25", SignedMoney(dec("3.25")))
	assert.Equal(t, "-$3.25", SignedMoney(dec("-3.25")))
	assert.Equal(t, "+1.50%", Percent(dec("1.5")))
	assert.Equal(t, "-0.25%", Percent(dec("-0.25")))
}

func TestFigure(t *testing.T) {
	assert.Equal(t, "N/A", Figure(model.Figure{}))
	assert.Equal(t, "2.10 T", Figure(model.NewFigure(dec("2100000000000"))))
	assert.Equal(t, "850.00 B", Figure(model.NewFigure(dec("850000000000"))))
}

func TestFormatAnalysis(t *testing.T) {
	day := model.NewDate(2024, time.January, 30)
	s := &model.StockData{
		Symbol:       "TSLA",
		Name:         "Tesla, Inc.",
		CurrentPrice: dec("191.59"),
		MarketCap:    model.NewFigure(dec("610000000000")),
		Outlook:      model.Outlook{Sentiment: "Bullish", Confidence: dec("85")},
		Indicators:   model.Indicators{RSI: dec("75"), MACDDiff: dec("-0.2"), BBPercent: dec("0.5"), SMA20: dec("180")},
		History:      []model.QuotePoint{{Date: day, Close: dec("191.59")}},
	}
	f := &model.Forecast{
		Trend:       "Upward",
		Predictions: []model.ForecastPoint{{Date: model.NewDate(2024, time.January, 31), PredictedPrice: dec("195")}},
	}
	out := FormatAnalysis(s, f, composer.Compose(s.History, f.Predictions))

	assert.Contains(t, out, "TSLA  Tesla, Inc.")
	assert.Contains(t, out, "$191.59")
	assert.Contains(t, out, "610.00 B")
	assert.Contains(t, out, "P/E: N/A")
	assert.Contains(t, out, "Forecast: UP")
	assert.Contains(t, out, "Jan 31  $195.00")
	assert.Contains(t, out, "Overbought")
	assert.Contains(t, out, "Bearish Cross")
}

func TestFormatPortfolio(t *testing.T) {
	p := &model.PortfolioSnapshot{
		Balance:       dec("14000"),
		Equity:        dec("15210.5"),
		ActiveTraders: []string{"NVDA"},
		TraderPnL:     map[string]decimal.Decimal{"NVDA": dec("210.5"), "AMD": dec("-40")},
		TraderLogs:    map[string]string{"NVDA": "Holding CALL"},
		Positions: []model.Position{{
			Symbol: "NVDA", OptionType: model.OptionCall, Strike: dec("900"), Quantity: 2, EntryPrice: dec("5"),
		}},
		History: []model.ClosedTrade{{Symbol: "AMD", OptionType: model.OptionPut, Profit: dec("-40"), Reason: "Stop loss"}},
	}
	out := FormatPortfolio(p)
	assert.Contains(t, out, "Balance: $14,000.00 | Equity: $15,210.50")
	assert.Contains(t, out, "NVDA   running")
	assert.Contains(t, out, "AMD    stopped")
	assert.Contains(t, out, "now -")
	assert.Contains(t, out, "Stop loss")
}

func TestFormatScreener_Empty(t *testing.T) {
	assert.Equal(t, "No matches.\n", FormatScreener(nil))
	out := FormatScreener([]model.ScreenerRow{{Symbol: "XOM", Price: dec("110.2"), Signal: "Buy", Score: 3}})
	assert.Contains(t, out, "XOM")
	assert.Contains(t, out, "$110.20")
}

func TestFormatBacktest(t *testing.T) {
	r := &model.BacktestReport{
		Symbol: "AAPL", DaysTested: 90, ReturnPercent: dec("8.41"), WinRate: dec("66.67"),
		InitialBalance: dec("10000"), FinalBalance: dec("10841"), TotalTrades: 2,
		Trades: []model.BacktestTrade{
			{Date: model.NewDate(2024, time.January, 2), Type: model.SideBuy, Price: dec("185.2"),
				Shares: decimal.NewNullDecimal(dec("53"))},
			{Date: model.NewDate(2024, time.January, 20), Type: model.SideSell, Price: dec("191.9"),
				Profit: decimal.NewNullDecimal(dec("355.1"))},
		},
	}
	out := FormatBacktest(r)
	assert.Contains(t, out, "Return: +8.41%")
	assert.Contains(t, out, "Win rate: 66.7%")
	assert.Contains(t, out, "2024-01-02  BUY  $185.20  x53.00")
	assert.Contains(t, out, "SELL $191.90  +$355.10")
}
