// Package ui is the terminal dashboard.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"TickerDesk/internal/desk"
	"TickerDesk/internal/interpret"
	"TickerDesk/internal/model"
	"TickerDesk/internal/portfolio"
	"TickerDesk/internal/screener"
)

type mode int

const (
	modeNormal mode = iota
	modeSymbol
	modeFilters
	modeBalance
	modeAddBot
	modeInsight
	modeBot
)

// Options tune the dashboard.
type Options struct {
	APIURL      string
	ResetAmount decimal.Decimal
	// View is the tab shown first; the zero value is Overview.
	View desk.View
}

type Model struct {
	ctx     context.Context
	desk    *desk.Desk
	port    *portfolio.Controller
	opts    Options
	changes <-chan struct{}

	// Data, refreshed from desk and controller on every change signal
	state     desk.State
	snap      *model.PortfolioSnapshot
	portErr   error
	portState portfolio.State

	// UI state
	mode    mode
	input   textinput.Model
	form    []textinput.Model
	formAt  int
	cursor  int
	insight *interpret.Insight
	bot     *portfolio.BotSelection
	status  string
	failed  bool
	help    help.Model

	width  int
	height int
}

// Messages

// changedMsg means desk or portfolio state moved; re-read both.
type changedMsg struct{}

type actionMsg struct {
	label string
	err   error
}

type insightMsg struct {
	insight interpret.Insight
	err     error
}

// NewModel creates the dashboard and subscribes it to state changes.
// Change signals coalesce, so a slow render never blocks a fetch.
func NewModel(ctx context.Context, d *desk.Desk, opts Options) Model {
	changes := make(chan struct{}, 1)
	signal := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}
	d.Subscribe(func(desk.State) { signal() })
	d.Portfolio().Subscribe(func(portfolio.Update) { signal() })

	in := textinput.New()
	in.CharLimit = 16

	form := make([]textinput.Model, len(screener.Fields))
	for i, f := range screener.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 24
		ti.Placeholder = "any"
		if f == screener.Sector {
			ti.CharLimit = 32
		}
		form[i] = ti
	}

	return Model{
		ctx:     ctx,
		desk:    d,
		port:    d.Portfolio(),
		opts:    opts,
		changes: changes,
		state:   d.State(),
		input:   in,
		form:    form,
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.changes),
		m.setView(m.opts.View),
	)
}

// Commands

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) run(label string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{label: label, err: fn(ctx)}
	}
}

func (m Model) setView(v desk.View) tea.Cmd {
	return m.run(v.String(), func(ctx context.Context) error {
		return m.desk.SetView(ctx, v)
	})
}

func (m Model) analyze(symbol string) tea.Cmd {
	return m.run("analyze "+symbol, func(ctx context.Context) error {
		return m.desk.Analyze(ctx, symbol)
	})
}

func (m Model) toggle(symbol string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		cmd, err := m.port.Toggle(ctx, symbol)
		return actionMsg{label: fmt.Sprintf("%s %s", cmd, symbol), err: err}
	}
}

func (m Model) reset(amount decimal.Decimal) tea.Cmd {
	return m.run("reset to "+amount.String(), func(ctx context.Context) error {
		return m.port.Reset(ctx, amount)
	})
}

func (m Model) inspect(kind interpret.Kind) tea.Cmd {
	return func() tea.Msg {
		in, err := m.desk.Inspect(kind)
		return insightMsg{insight: in, err: err}
	}
}

// refresh reloads whatever the active view shows.
func (m Model) refresh() tea.Cmd {
	switch m.state.View {
	case desk.Screener:
		return m.run("screener", m.desk.RunScreener)
	case desk.Backtest:
		return m.run("backtest", m.desk.RunBacktest)
	case desk.Portfolio:
		return m.run("portfolio", m.port.Refresh)
	default:
		return m.analyze(m.state.Symbol)
	}
}
