package model

import "github.com/shopspring/decimal"

// TradeSide is the direction of a simulated backtest trade.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// BacktestTrade is one entry of the backtest trade log. Buys carry a share
// count, sells carry the realised profit.
type BacktestTrade struct {
	Date   Date                `json:"date"`
	Type   TradeSide           `json:"type"`
	Price  decimal.Decimal     `json:"price"`
	Shares decimal.NullDecimal `json:"shares"`
	Profit decimal.NullDecimal `json:"profit"`
}

// BacktestReport summarises a strategy simulation over recent history.
type BacktestReport struct {
	Symbol         string          `json:"symbol"`
	DaysTested     int             `json:"days_tested"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	ReturnPercent  decimal.Decimal `json:"return_percent"`
	TotalTrades    int             `json:"total_trades"`
	WinRate        decimal.Decimal `json:"win_rate"`
	Trades         []BacktestTrade `json:"trades"`
}
