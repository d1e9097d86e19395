package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bias is the qualitative lean of a screener signal.
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// ScreenerRow is one ranked match returned by the screener.
type ScreenerRow struct {
	Symbol    string              `json:"symbol"`
	Price     decimal.Decimal     `json:"price"`
	Signal    string              `json:"signal"`
	Score     int                 `json:"score"`
	RSI       decimal.NullDecimal `json:"rsi"`
	MACD      decimal.NullDecimal `json:"macd"`
	MarketCap Figure              `json:"market_cap"`
	Volume    Figure              `json:"volume"`
	Sector    string              `json:"sector"`
}

// Bias maps the signal label ("Strong Buy", "Sell", "Neutral", ...) to a lean.
func (r ScreenerRow) Bias() Bias {
	switch {
	case strings.Contains(r.Signal, "Buy"):
		return BiasBullish
	case strings.Contains(r.Signal, "Sell"):
		return BiasBearish
	default:
		return BiasNeutral
	}
}
