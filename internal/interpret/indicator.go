// Package interpret turns indicator readings into plain-language insights.
// Every function here is pure; nothing is fetched or cached.
package interpret

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"TickerDesk/internal/model"
)

// Kind identifies an indicator variant.
type Kind string

const (
	KindRSI  Kind = "rsi"
	KindMACD Kind = "macd"
	KindBB   Kind = "bb"
	KindSMA  Kind = "sma"
)

// Kinds lists the variants in technical-panel order.
var Kinds = []Kind{KindRSI, KindMACD, KindBB, KindSMA}

// ParseKind accepts the short names used by the CLI and key bindings.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRSI, KindMACD, KindBB, KindSMA:
		return k, nil
	case "bollinger", "bbp":
		return KindBB, nil
	case "sma20", "sma_20":
		return KindSMA, nil
	}
	return "", fmt.Errorf("unknown indicator %q", s)
}

// Signal is the classification of one reading.
type Signal string

const (
	SignalOverbought Signal = "Overbought"
	SignalOversold   Signal = "Oversold"
	SignalNeutral    Signal = "Neutral"
	SignalBullish    Signal = "Bullish"
	SignalBearish    Signal = "Bearish"
	SignalBreakout   Signal = "Breakout"
	SignalRange      Signal = "Range"
	SignalUptrend    Signal = "Uptrend"
	SignalDowntrend  Signal = "Downtrend"
)

// About is the static reference text shown next to an indicator.
type About struct {
	Title       string
	Definition  string
	Rationale   string
	Calculation string
}

// Indicator is one reading of a supported indicator.
type Indicator interface {
	Kind() Kind
	About() About
	Classify() Signal
	Analysis() string
	// Badge is the short label of the technical table. Its cut-offs are
	// looser than Classify for Bollinger %B.
	Badge() (string, model.Bias)
}

// Insight is the rendered interpretation of one reading.
type Insight struct {
	Kind Kind
	About
	Value    string
	Signal   Signal
	Analysis string
	Badge    string
	Tone     model.Bias
}

// Explain renders an indicator reading.
func Explain(ind Indicator) Insight {
	badge, tone := ind.Badge()
	return Insight{
		Kind:     ind.Kind(),
		About:    ind.About(),
		Value:    display(ind),
		Signal:   ind.Classify(),
		Analysis: ind.Analysis(),
		Badge:    badge,
		Tone:     tone,
	}
}

// Interpret builds the variant for kind and renders it. SMA takes the
// current price as its reference value.
func Interpret(kind Kind, value decimal.Decimal, ref ...decimal.Decimal) (Insight, error) {
	switch kind {
	case KindRSI:
		return Explain(RSI{Value: value}), nil
	case KindMACD:
		return Explain(MACD{Diff: value}), nil
	case KindBB:
		return Explain(Bollinger{PercentB: value}), nil
	case KindSMA:
		if len(ref) == 0 {
			return Insight{}, fmt.Errorf("interpret sma: current price is required")
		}
		return Explain(SMA{Average: value, Price: ref[0]}), nil
	}
	return Insight{}, fmt.Errorf("interpret: unknown indicator %q", kind)
}

// ForSnapshot renders all four indicators of a loaded symbol.
func ForSnapshot(s model.IndicatorSnapshot) []Insight {
	return []Insight{
		Explain(RSI{Value: s.RSI}),
		Explain(MACD{Diff: s.MACDDiff}),
		Explain(Bollinger{PercentB: s.BBPercent}),
		Explain(SMA{Average: s.SMA20, Price: s.CurrentPrice}),
	}
}

// Of returns the variant of kind for a snapshot.
func Of(kind Kind, s model.IndicatorSnapshot) (Indicator, error) {
	switch kind {
	case KindRSI:
		return RSI{Value: s.RSI}, nil
	case KindMACD:
		return MACD{Diff: s.MACDDiff}, nil
	case KindBB:
		return Bollinger{PercentB: s.BBPercent}, nil
	case KindSMA:
		return SMA{Average: s.SMA20, Price: s.CurrentPrice}, nil
	}
	return nil, fmt.Errorf("unknown indicator %q", kind)
}

func display(ind Indicator) string {
	switch v := ind.(type) {
	case RSI:
		return v.Value.StringFixed(2)
	case MACD:
		return v.Diff.StringFixed(4)
	case Bollinger:
		return v.Percent() + "%"
	case SMA:
		return "$" + v.Average.StringFixed(2)
	}
	return ""
}
