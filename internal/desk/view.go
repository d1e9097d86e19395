package desk

import (
	"fmt"
	"strings"
)

// View is a dashboard tab.
type View int

const (
	Overview View = iota
	Technical
	Screener
	Backtest
	Portfolio
)

// Views lists the tabs in display order.
var Views = []View{Overview, Technical, Screener, Backtest, Portfolio}

func (v View) String() string {
	switch v {
	case Overview:
		return "Overview"
	case Technical:
		return "Technical"
	case Screener:
		return "Screener"
	case Backtest:
		return "Backtest"
	case Portfolio:
		return "Portfolio"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// NeedsSymbol reports whether the view renders symbol data.
func (v View) NeedsSymbol() bool {
	return v == Overview || v == Technical || v == Backtest
}

// ParseView accepts a tab name, case-insensitively.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if strings.EqualFold(v.String(), strings.TrimSpace(s)) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", s)
}
