package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"TickerDesk/internal/desk"
	"TickerDesk/internal/interpret"
	"TickerDesk/internal/model"
	"TickerDesk/internal/screener"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case changedMsg:
		m.sync()
		return m, waitForChange(m.changes)

	case actionMsg:
		m.sync()
		if msg.err != nil {
			m.status, m.failed = msg.label+": "+msg.err.Error(), true
		} else {
			m.status, m.failed = msg.label, false
		}
		return m, nil

	case insightMsg:
		if msg.err != nil {
			m.status, m.failed = msg.err.Error(), true
			return m, nil
		}
		m.insight = &msg.insight
		m.mode = modeInsight
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSymbol, modeAddBot, modeBalance:
			return m.updateInput(msg)
		case modeFilters:
			return m.updateForm(msg)
		case modeInsight, modeBot:
			if key.Matches(msg, keys.Back, keys.Select, keys.Quit) {
				m.mode = modeNormal
				m.insight, m.bot = nil, nil
			}
			return m, nil
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

// sync re-reads desk and portfolio state.
func (m *Model) sync() {
	m.state = m.desk.State()
	m.snap = m.port.Snapshot()
	m.portErr = m.port.Err()
	m.portState = m.port.State()
	if n := m.listLen(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) listLen() int {
	switch m.state.View {
	case desk.Technical:
		return len(interpret.Kinds)
	case desk.Screener:
		return len(m.state.Rows)
	case desk.Portfolio:
		if m.snap == nil {
			return 0
		}
		return len(m.snap.KnownTraders())
	}
	return 0
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tabs):
		i := int(msg.String()[0] - '1')
		if i < 0 || i >= len(desk.Views) || desk.Views[i] == m.state.View {
			return m, nil
		}
		m.cursor = 0
		m.state.View = desk.Views[i]
		return m, m.setView(desk.Views[i])

	case key.Matches(msg, keys.Symbol):
		return m.openInput(modeSymbol, "Symbol: ", m.state.Symbol)

	case key.Matches(msg, keys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
		return m, nil
	}

	switch m.state.View {
	case desk.Technical:
		if key.Matches(msg, keys.Select) {
			return m, m.inspect(interpret.Kinds[m.cursor])
		}
	case desk.Screener:
		switch {
		case key.Matches(msg, keys.Filters):
			return m.openForm()
		case key.Matches(msg, keys.Clear):
			m.desk.SetFilters(screener.Filters{})
			return m, m.run("screener", m.desk.RunScreener)
		case key.Matches(msg, keys.Select):
			if len(m.state.Rows) == 0 {
				return m, nil
			}
			i := m.cursor
			m.cursor = 0
			return m, m.run("analyze "+m.state.Rows[i].Symbol, func(ctx context.Context) error {
				return m.desk.SelectScreenerRow(ctx, i)
			})
		}
	case desk.Backtest:
		if key.Matches(msg, keys.Select) {
			return m, m.run("backtest "+m.state.Symbol, m.desk.RunBacktest)
		}
	case desk.Portfolio:
		return m.updatePortfolio(msg)
	}
	return m, nil
}

func (m Model) updatePortfolio(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected := ""
	if m.snap != nil {
		if traders := m.snap.KnownTraders(); m.cursor < len(traders) {
			selected = traders[m.cursor]
		}
	}
	switch {
	case key.Matches(msg, keys.Add):
		return m.openInput(modeAddBot, "Start bot for: ", "")
	case key.Matches(msg, keys.Reset):
		return m.openInput(modeBalance, "Reset balance to: ", m.opts.ResetAmount.String())
	case key.Matches(msg, keys.Toggle):
		if selected != "" {
			return m, m.toggle(selected)
		}
	case key.Matches(msg, keys.Detail):
		if selected == "" {
			return m, nil
		}
		if sel, ok := m.port.OpenBot(selected); ok {
			m.bot = &sel
			m.mode = modeBot
		}
	}
	return m, nil
}

func (m Model) openInput(md mode, prompt, value string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = modeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Select):
		value := strings.TrimSpace(m.input.Value())
		md := m.mode
		m.mode = modeNormal
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		switch md {
		case modeSymbol:
			return m, m.analyze(model.NormalizeSymbol(value))
		case modeAddBot:
			sym := model.NormalizeSymbol(value)
			if m.snap != nil && m.snap.IsTrading(sym) {
				m.status, m.failed = sym+" is already running", false
				return m, nil
			}
			return m, m.toggle(sym)
		case modeBalance:
			amount, err := decimal.NewFromString(value)
			if err != nil {
				m.status, m.failed = "reset: "+value+" is not a number", true
				return m, nil
			}
			return m, m.reset(amount)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	m.mode = modeFilters
	for i, f := range screener.Fields {
		m.form[i].SetValue(m.state.Filters.Get(f))
		m.form[i].Blur()
	}
	m.formAt = 0
	return m, m.form[0].Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = modeNormal
		m.form[m.formAt].Blur()
		return m, nil

	case key.Matches(msg, keys.Next) || msg.Type == tea.KeyDown:
		m.form[m.formAt].Blur()
		m.formAt = (m.formAt + 1) % len(m.form)
		return m, m.form[m.formAt].Focus()

	case key.Matches(msg, keys.Prev) || msg.Type == tea.KeyUp:
		m.form[m.formAt].Blur()
		m.formAt = (m.formAt + len(m.form) - 1) % len(m.form)
		return m, m.form[m.formAt].Focus()

	case key.Matches(msg, keys.Select):
		var f screener.Filters
		for i, field := range screener.Fields {
			_ = f.Set(field, m.form[i].Value())
		}
		m.form[m.formAt].Blur()
		m.mode = modeNormal
		m.desk.SetFilters(f)
		return m, m.run("screener", m.desk.RunScreener)
	}

	var cmd tea.Cmd
	m.form[m.formAt], cmd = m.form[m.formAt].Update(msg)
	return m, cmd
}
