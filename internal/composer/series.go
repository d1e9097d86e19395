// Package composer merges price history and forecast into one chart series.
package composer

import (
	"github.com/shopspring/decimal"

	"TickerDesk/internal/model"
)

// Point is one chart entry. History points carry Actual, forecast points
// carry Predicted, and the stitch point carries both.
type Point struct {
	Date      model.Date
	Label     string
	Actual    decimal.NullDecimal
	Predicted decimal.NullDecimal
}

// IsStitch reports whether the point joins the two series.
func (p Point) IsStitch() bool { return p.Actual.Valid && p.Predicted.Valid }

// Compose emits history points, then forecast points, then copies the last
// actual close into that point's predicted value so the lines connect.
// Equal labels are kept as separate points.
func Compose(history []model.QuotePoint, forecast []model.ForecastPoint) []Point {
	out := make([]Point, 0, len(history)+len(forecast))
	for _, h := range history {
		out = append(out, Point{
			Date:   h.Date,
			Label:  h.Date.Label(),
			Actual: decimal.NullDecimal{Decimal: h.Close, Valid: true},
		})
	}
	for _, f := range forecast {
		out = append(out, Point{
			Date:      f.Date,
			Label:     f.Date.Label(),
			Predicted: decimal.NullDecimal{Decimal: f.PredictedPrice, Valid: true},
		})
	}
	if len(history) > 0 {
		last := &out[len(history)-1]
		last.Predicted = last.Actual
	}
	return out
}

// StitchIndex returns the position of the stitch point, or -1.
func StitchIndex(points []Point) int {
	for i, p := range points {
		if p.IsStitch() {
			return i
		}
	}
	return -1
}

// Bounds scans both series and returns the lowest and highest value. ok is
// false when no point carries a value.
func Bounds(points []Point) (low, high decimal.Decimal, ok bool) {
	for _, p := range points {
		for _, v := range []decimal.NullDecimal{p.Actual, p.Predicted} {
			if !v.Valid {
				continue
			}
			if !ok {
				low, high, ok = v.Decimal, v.Decimal, true
				continue
			}
			low = decimal.Min(low, v.Decimal)
			high = decimal.Max(high, v.Decimal)
		}
	}
	return low, high, ok
}

// Position returns where v sits between low and high, clamped to [0, 1].
// A flat range maps everything to the middle.
func Position(v, low, high decimal.Decimal) float64 {
	if !high.GreaterThan(low) {
		return 0.5
	}
	pos := v.Sub(low).Div(high.Sub(low)).InexactFloat64()
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
