package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the forecast heading.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// ForecastPoint is one predicted close after the last history bar.
type ForecastPoint struct {
	Date           Date            `json:"date"`
	PredictedPrice decimal.Decimal `json:"predicted_price"`
	Action         string          `json:"action,omitempty"`
}

// Forecast is the short-horizon prediction for a symbol.
type Forecast struct {
	Symbol      string              `json:"symbol"`
	Direction   Direction           `json:"direction"`
	Trend       string              `json:"trend"`
	Confidence  decimal.NullDecimal `json:"confidence"`
	Days        int                 `json:"prediction_days"`
	Predictions []ForecastPoint     `json:"predictions"`
}

// Heading resolves the forecast direction. Older service builds only send a
// "trend" label, and some send neither; the predicted path decides then.
func (f *Forecast) Heading() Direction {
	switch Direction(strings.ToUpper(string(f.Direction))) {
	case DirectionUp:
		return DirectionUp
	case DirectionDown:
		return DirectionDown
	}
	switch strings.ToLower(f.Trend) {
	case "upward", "up":
		return DirectionUp
	case "downward", "down":
		return DirectionDown
	}
	if n := len(f.Predictions); n >= 2 && f.Predictions[n-1].PredictedPrice.GreaterThan(f.Predictions[0].PredictedPrice) {
		return DirectionUp
	}
	return DirectionDown
}
