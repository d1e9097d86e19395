package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"TickerDesk/internal/model"
)

// Theme holds the semantic color palette of the dashboard.
type Theme struct {
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is a dark-terminal palette.
var DefaultTheme = Theme{
	Border:  lipgloss.Color("#3B4252"),
	Muted:   lipgloss.Color("#7B8394"),
	Text:    lipgloss.Color("#E5E9F0"),
	Primary: lipgloss.Color("#5E81F4"),
	Accent:  lipgloss.Color("#B48EF7"),
	Success: lipgloss.Color("#00FF88"),
	Warning: lipgloss.Color("#FFB020"),
	Error:   lipgloss.Color("#FF4D4D"),
}

var (
	confidenceHigh = decimal.NewFromInt(70)
	confidenceLow  = decimal.NewFromInt(40)
)

func (t Theme) style(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Tone maps a bias to its color.
func (t Theme) Tone(b model.Bias) lipgloss.Color {
	switch b {
	case model.BiasBullish:
		return t.Success
	case model.BiasBearish:
		return t.Error
	default:
		return t.Warning
	}
}

// Sign colors gains green and losses red.
func (t Theme) Sign(d decimal.Decimal) lipgloss.Color {
	if d.IsNegative() {
		return t.Error
	}
	return t.Success
}

// Confidence colors a 0-100 confidence: above 70 green, below 40 red.
func (t Theme) Confidence(d decimal.Decimal) lipgloss.Color {
	switch {
	case d.GreaterThan(confidenceHigh):
		return t.Success
	case d.LessThan(confidenceLow):
		return t.Error
	default:
		return t.Warning
	}
}
