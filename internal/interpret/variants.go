package interpret

import (
	"fmt"

	"github.com/shopspring/decimal"

	"TickerDesk/internal/model"
)

var (
	rsiHigh = decimal.NewFromInt(70)
	rsiLow  = decimal.NewFromInt(30)

	bbUpper     = decimal.NewFromInt(1)
	bbBadgeHigh = decimal.RequireFromString("0.95")
	bbBadgeLow  = decimal.RequireFromString("0.05")
	hundred     = decimal.NewFromInt(100)
)

// RSI is the 14-period relative strength index.
type RSI struct {
	Value decimal.Decimal
}

func (RSI) Kind() Kind { return KindRSI }

func (RSI) About() About {
	return About{
		Title:       "Relative Strength Index (RSI)",
		Definition:  "Momentum oscillator on a 0 to 100 scale that tracks how fast and how far price has moved.",
		Rationale:   "Flags stretched conditions. Above 70 the move is overextended and prone to a pullback; below 30 selling may be exhausted.",
		Calculation: "Ratio of average gains to average losses over the last 14 periods.",
	}
}

// Classify: > 70 overbought, < 30 oversold.
func (r RSI) Classify() Signal {
	switch {
	case r.Value.GreaterThan(rsiHigh):
		return SignalOverbought
	case r.Value.LessThan(rsiLow):
		return SignalOversold
	default:
		return SignalNeutral
	}
}

func (r RSI) Analysis() string {
	v := r.Value.String()
	switch r.Classify() {
	case SignalOverbought:
		return fmt.Sprintf("RSI reads %s, which is high. The stock looks overbought and may be due for a pullback.", v)
	case SignalOversold:
		return fmt.Sprintf("RSI reads %s, which is low. The stock looks oversold and may be due for a bounce.", v)
	default:
		return fmt.Sprintf("RSI reads %s, which is neutral. The stock is not at an extreme.", v)
	}
}

func (r RSI) Badge() (string, model.Bias) {
	switch r.Classify() {
	case SignalOverbought:
		return "Overbought", model.BiasBearish
	case SignalOversold:
		return "Oversold", model.BiasBullish
	default:
		return "Neutral", model.BiasNeutral
	}
}

// MACD is the MACD histogram (MACD line minus signal line).
type MACD struct {
	Diff decimal.Decimal
}

func (MACD) Kind() Kind { return KindMACD }

func (MACD) About() About {
	return About{
		Title:       "Moving Average Convergence Divergence (MACD)",
		Definition:  "Trend-following momentum indicator built from the gap between two exponential moving averages.",
		Rationale:   "The histogram carries the signal. Crossing above zero turns momentum bullish, crossing below turns it bearish.",
		Calculation: "12-period EMA minus 26-period EMA, compared against its 9-period signal line.",
	}
}

// Classify: strictly positive is bullish, zero and below is bearish.
func (m MACD) Classify() Signal {
	if m.Diff.IsPositive() {
		return SignalBullish
	}
	return SignalBearish
}

func (m MACD) Analysis() string {
	if m.Classify() == SignalBullish {
		return fmt.Sprintf("The histogram is positive (%s). This is bullish momentum, pointing upward.", m.Diff.String())
	}
	return fmt.Sprintf("The histogram is not positive (%s). This is bearish momentum, pointing downward.", m.Diff.String())
}

func (m MACD) Badge() (string, model.Bias) {
	if m.Classify() == SignalBullish {
		return "Bullish Cross", model.BiasBullish
	}
	return "Bearish Cross", model.BiasBearish
}

// Bollinger is the %B position of price within the Bollinger bands,
// 0 at the lower band and 1 at the upper.
type Bollinger struct {
	PercentB decimal.Decimal
}

func (Bollinger) Kind() Kind { return KindBB }

func (Bollinger) About() About {
	return About{
		Title:       "Bollinger Bands %B",
		Definition:  "Volatility envelope of a 20-period SMA with bands two standard deviations above and below.",
		Rationale:   "Price usually stays inside the bands. Tagging the lower band often precedes a bounce; breaking the upper band marks a breakout or a reversal.",
		Calculation: "(price - lower band) / (upper band - lower band).",
	}
}

// Percent is %B scaled to a whole percentage, for display only.
func (b Bollinger) Percent() string {
	return b.PercentB.Mul(hundred).Round(0).String()
}

// Classify uses the unrounded value: > 1 breakout, < 0 oversold.
func (b Bollinger) Classify() Signal {
	switch {
	case b.PercentB.GreaterThan(bbUpper):
		return SignalBreakout
	case b.PercentB.IsNegative():
		return SignalOversold
	default:
		return SignalRange
	}
}

func (b Bollinger) Analysis() string {
	p := b.Percent()
	switch b.Classify() {
	case SignalBreakout:
		return fmt.Sprintf("%%B is %s%%: a breakout above upper band, an extreme move.", p)
	case SignalOversold:
		return fmt.Sprintf("%%B is %s%%: the price is oversold below lower band.", p)
	default:
		return fmt.Sprintf("%%B is %s%%: the price is trading within range.", p)
	}
}

func (b Bollinger) Badge() (string, model.Bias) {
	switch {
	case b.PercentB.GreaterThan(bbBadgeHigh):
		return "Breakout", model.BiasBullish
	case b.PercentB.LessThan(bbBadgeLow):
		return "Oversold", model.BiasBearish
	default:
		return "Range", model.BiasNeutral
	}
}

// SMA compares the current price with its 20-day simple moving average.
type SMA struct {
	Average decimal.Decimal
	Price   decimal.Decimal
}

func (SMA) Kind() Kind { return KindSMA }

func (SMA) About() About {
	return About{
		Title:       "Simple Moving Average (20)",
		Definition:  "Mean closing price over the last 20 sessions.",
		Rationale:   "Acts as moving support or resistance. Price above it means a short-term uptrend, below it a downtrend.",
		Calculation: "Sum of the last 20 closes divided by 20.",
	}
}

// Classify: price strictly above the average is an uptrend.
func (s SMA) Classify() Signal {
	if s.Price.GreaterThan(s.Average) {
		return SignalUptrend
	}
	return SignalDowntrend
}

func (s SMA) Analysis() string {
	price, avg := s.Price.StringFixed(2), s.Average.StringFixed(2)
	if s.Classify() == SignalUptrend {
		return fmt.Sprintf("Price ($%s) is above the average ($%s). The short-term uptrend is intact.", price, avg)
	}
	return fmt.Sprintf("Price ($%s) is not above the average ($%s). The short-term picture is a downtrend.", price, avg)
}

func (s SMA) Badge() (string, model.Bias) {
	if s.Classify() == SignalUptrend {
		return "Above Average", model.BiasBullish
	}
	return "Below Average", model.BiasBearish
}
