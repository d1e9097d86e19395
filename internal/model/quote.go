package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// QuotePoint is one daily bar of price history.
type QuotePoint struct {
	Date   Date            `json:"Date"`
	Open   decimal.Decimal `json:"Open"`
	High   decimal.Decimal `json:"High"`
	Low    decimal.Decimal `json:"Low"`
	Close  decimal.Decimal `json:"Close"`
	Volume decimal.Decimal `json:"Volume"`
}

// Outlook is the service's one-line sentiment read for a symbol.
type Outlook struct {
	Sentiment  string          `json:"sentiment"`
	Confidence decimal.Decimal `json:"confidence"`
	Summary    string          `json:"summary"`
}

// StockData is the quote, history and indicator bundle for one symbol.
type StockData struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	MarketCap     Figure          `json:"market_cap"`
	Volume        Figure          `json:"volume"`
	PERatio       Figure          `json:"pe_ratio"`
	Sector        string          `json:"sector"`
	Outlook       Outlook         `json:"outlook"`
	Indicators    Indicators      `json:"indicators"`
	History       []QuotePoint    `json:"history"`
}

// Snapshot returns the indicator values the dashboard interprets.
func (s *StockData) Snapshot() IndicatorSnapshot {
	return IndicatorSnapshot{
		RSI:          s.Indicators.RSI,
		MACDDiff:     s.Indicators.MACDDiff,
		BBPercent:    s.Indicators.BBPercent,
		SMA20:        s.Indicators.SMA20,
		CurrentPrice: s.CurrentPrice,
	}
}

// NormalizeSymbol trims and upper-cases a ticker as typed by a user.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
