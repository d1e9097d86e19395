package model

import "github.com/shopspring/decimal"

// Indicators holds the technical indicators computed by the remote service.
type Indicators struct {
	RSI        decimal.Decimal `json:"rsi"`
	SMA20      decimal.Decimal `json:"sma_20"`
	EMA20      decimal.Decimal `json:"ema_20"`
	SMA50      decimal.Decimal `json:"sma_50"`
	MACD       decimal.Decimal `json:"macd"`
	MACDSignal decimal.Decimal `json:"macd_signal"`
	MACDDiff   decimal.Decimal `json:"macd_diff"`
	BBUpper    decimal.Decimal `json:"bb_upper"`
	BBLower    decimal.Decimal `json:"bb_lower"`
	BBPercent  decimal.Decimal `json:"bb_percent"`
}

// IndicatorSnapshot is the read-only subset used for interpretation.
type IndicatorSnapshot struct {
	RSI          decimal.Decimal
	MACDDiff     decimal.Decimal
	BBPercent    decimal.Decimal
	SMA20        decimal.Decimal
	CurrentPrice decimal.Decimal
}
