package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"

	"TickerDesk/internal/desk"
	"TickerDesk/internal/interpret"
	"TickerDesk/internal/model"
	"TickerDesk/internal/portfolio"
	"TickerDesk/internal/report"
	"TickerDesk/internal/screener"
)

const chartHeight = 10

func (m Model) View() string {
	t := DefaultTheme
	pad := lipgloss.NewStyle().Padding(0, 2)

	var body string
	switch m.mode {
	case modeInsight:
		body = m.viewInsight()
	case modeBot:
		body = m.viewBot()
	default:
		switch m.state.View {
		case desk.Overview:
			body = m.viewOverview()
		case desk.Technical:
			body = m.viewTechnical()
		case desk.Screener:
			body = m.viewScreener()
		case desk.Backtest:
			body = m.viewBacktest()
		case desk.Portfolio:
			body = m.viewPortfolio()
		}
	}

	parts := []string{m.viewHeader(), "", body, ""}
	switch m.mode {
	case modeSymbol, modeAddBot, modeBalance:
		parts = append(parts, m.input.View())
	}
	if m.status != "" {
		c := t.Muted
		if m.failed {
			c = t.Error
		}
		parts = append(parts, t.style(c).Render(m.status))
	}
	parts = append(parts, m.help.ShortHelpView(m.bindings()))
	return pad.Render(strings.Join(parts, "\n"))
}

func (m Model) contentWidth() int {
	if m.width <= 8 {
		return 76
	}
	return m.width - 4
}

// renderBanner renders text in a figlet font.
func renderBanner(text string) string {
	fig := figure.NewFigure(text, "small", true)
	return strings.TrimRight(fig.String(), "\n ")
}

func (m Model) viewHeader() string {
	t := DefaultTheme
	banner := t.style(t.Primary).Render(renderBanner("TickerDesk"))

	tabs := make([]string, len(desk.Views))
	for i, v := range desk.Views {
		label := fmt.Sprintf(" %d %s ", i+1, v)
		if v == m.state.View {
			tabs[i] = lipgloss.NewStyle().Bold(true).Foreground(t.Text).Background(t.Primary).Render(label)
		} else {
			tabs[i] = t.style(t.Muted).Render(label)
		}
	}
	symbol := t.style(t.Accent).Bold(true).Render(m.state.Symbol)
	return lipgloss.JoinVertical(lipgloss.Left,
		banner,
		lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(tabs, " "), "   ", symbol),
	)
}

// panelStatus renders the loading or error line of a panel; empty when idle.
func panelStatus(p desk.Panel) string {
	t := DefaultTheme
	switch {
	case p.Loading:
		return t.style(t.Muted).Render("Loading...")
	case p.Err != "":
		return t.style(t.Error).Render(p.Err)
	}
	return ""
}

func (m Model) viewOverview() string {
	t := DefaultTheme
	s := m.state
	var lines []string
	if st := panelStatus(s.Quote); st != "" {
		lines = append(lines, st)
	}
	if s.Stock == nil {
		return strings.Join(append(lines, t.style(t.Muted).Render("No data. Press / to pick a symbol.")), "\n")
	}

	st := s.Stock
	price := lipgloss.NewStyle().Bold(true).Foreground(t.Text).Render(report.Money(st.CurrentPrice))
	change := t.style(t.Sign(st.ChangePercent)).Render(report.Percent(st.ChangePercent))
	lines = append(lines,
		lipgloss.NewStyle().Bold(true).Render(st.Name)+"  "+t.style(t.Muted).Render(st.Sector),
		price+"  "+change,
		t.style(t.Muted).Render(fmt.Sprintf("Cap %s  Vol %s  P/E %s",
			report.Figure(st.MarketCap), report.Figure(st.Volume), report.Figure(st.PERatio))),
	)

	if o := st.Outlook; o.Sentiment != "" {
		lines = append(lines, "Outlook: "+
			t.style(t.Confidence(o.Confidence)).Render(fmt.Sprintf("%s (%s%%)", o.Sentiment, o.Confidence.StringFixed(0))))
		if o.Summary != "" {
			lines = append(lines, t.style(t.Muted).Render(o.Summary))
		}
	}

	if f := s.Forecast; f != nil {
		heading := f.Heading()
		c := t.Success
		if heading == model.DirectionDown {
			c = t.Error
		}
		line := "Forecast: " + t.style(c).Bold(true).Render(string(heading))
		if f.Confidence.Valid {
			line += t.style(t.Muted).Render(fmt.Sprintf("  %s%% confidence", f.Confidence.Decimal.StringFixed(0)))
		}
		lines = append(lines, line)
	}

	if chart := RenderSeriesChart(s.Series, m.contentWidth(), chartHeight, t); chart != "" {
		legend := t.style(t.Primary).Render("█ actual") + "  " +
			t.style(t.Accent).Render("█ forecast") + "  " +
			t.style(t.Warning).Render("█ today")
		lines = append(lines, "", chart, legend)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewTechnical() string {
	t := DefaultTheme
	s := m.state
	var lines []string
	if st := panelStatus(s.Quote); st != "" {
		lines = append(lines, st)
	}
	if s.Stock == nil {
		return strings.Join(append(lines, t.style(t.Muted).Render("No data.")), "\n")
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(t.Muted)
	lines = append(lines, header.Render(fmt.Sprintf("  %-24s %12s  %s", "Indicator", "Value", "Signal")))
	for i, in := range interpret.ForSnapshot(s.Stock.Snapshot()) {
		cursor := "  "
		if i == m.cursor {
			cursor = t.style(t.Primary).Render("> ")
		}
		badge := t.style(t.Tone(in.Tone)).Render(in.Badge)
		lines = append(lines, fmt.Sprintf("%s%-24s %12s  %s", cursor, in.Title, in.Value, badge))
	}
	lines = append(lines, "", t.style(t.Muted).Render("enter: explain"))
	return strings.Join(lines, "\n")
}

func (m Model) viewInsight() string {
	t := DefaultTheme
	if m.insight == nil {
		return ""
	}
	in := m.insight
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(min(m.contentWidth(), 80))

	label := lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	body := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Foreground(t.Text).Render(in.Title) + "  " +
			t.style(t.Tone(in.Tone)).Render(in.Value+"  "+string(in.Signal)),
		"",
		label.Render("What it is"), in.Definition,
		"",
		label.Render("Why it matters"), in.Rationale,
		"",
		label.Render("How it is calculated"), in.Calculation,
		"",
		label.Render("Reading"), t.style(t.Tone(in.Tone)).Render(in.Analysis),
	}, "\n")
	return box.Render(body)
}

func (m Model) viewScreener() string {
	t := DefaultTheme
	s := m.state
	var lines []string

	if m.mode == modeFilters {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Filters"))
		for i, f := range screener.Fields {
			label := fmt.Sprintf("%-16s", f.Label())
			if i == m.formAt {
				label = t.style(t.Primary).Render(label)
			} else {
				label = t.style(t.Muted).Render(label)
			}
			lines = append(lines, label+" "+m.form[i].View())
		}
		lines = append(lines, t.style(t.Muted).Render("sectors: "+strings.Join(screener.Sectors, ", ")), "")
	} else {
		lines = append(lines, t.style(t.Muted).Render("Filters: "+filterSummary(s.Filters)))
	}

	if st := panelStatus(s.ScreenPanel); st != "" {
		lines = append(lines, st)
	}
	if len(s.Rows) == 0 {
		if !s.ScreenPanel.Loading {
			lines = append(lines, t.style(t.Muted).Render("No matches."))
		}
		return strings.Join(lines, "\n")
	}

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(t.Muted).Render(
		fmt.Sprintf("  %-7s %10s  %-12s %5s %7s %10s  %s", "Symbol", "Price", "Signal", "Score", "RSI", "Cap", "Sector")))
	for i, r := range s.Rows {
		cursor := "  "
		if i == m.cursor {
			cursor = t.style(t.Primary).Render("> ")
		}
		rsi := "-"
		if r.RSI.Valid {
			rsi = r.RSI.Decimal.StringFixed(1)
		}
		signal := t.style(t.Tone(r.Bias())).Render(fmt.Sprintf("%-12s", r.Signal))
		lines = append(lines, fmt.Sprintf("%s%-7s %10s  %s %5d %7s %10s  %s",
			cursor, r.Symbol, report.Money(r.Price), signal, r.Score, rsi, report.Figure(r.MarketCap), r.Sector))
	}
	return strings.Join(lines, "\n")
}

func filterSummary(f screener.Filters) string {
	if f.IsZero() {
		return "none"
	}
	var parts []string
	for _, field := range screener.Fields {
		if v := f.Get(field); v != "" {
			parts = append(parts, field.Label()+"="+v)
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewBacktest() string {
	t := DefaultTheme
	s := m.state
	var lines []string
	if st := panelStatus(s.TestPanel); st != "" {
		lines = append(lines, st)
	}
	r := s.Backtest
	if r == nil {
		if !s.TestPanel.Loading {
			lines = append(lines, t.style(t.Muted).Render("Press enter to backtest "+s.Symbol+"."))
		}
		return strings.Join(lines, "\n")
	}

	ret := t.style(t.Sign(r.ReturnPercent)).Bold(true).Render(renderBanner(report.Percent(r.ReturnPercent)))
	lines = append(lines,
		ret,
		fmt.Sprintf("%s over %d days  %s -> %s", r.Symbol, r.DaysTested,
			report.Money(r.InitialBalance), report.Money(r.FinalBalance)),
		fmt.Sprintf("Trades: %d  Win rate: %s%%", r.TotalTrades, r.WinRate.StringFixed(1)),
		"",
	)
	for _, tr := range r.Trades {
		c := t.Success
		if tr.Type == model.SideSell {
			c = t.Warning
		}
		line := fmt.Sprintf("%s  %s  %s", tr.Date, t.style(c).Render(fmt.Sprintf("%-4s", tr.Type)), report.Money(tr.Price))
		if tr.Profit.Valid {
			line += "  " + t.style(t.Sign(tr.Profit.Decimal)).Render(report.SignedMoney(tr.Profit.Decimal))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewPortfolio() string {
	t := DefaultTheme
	var lines []string

	switch {
	case m.portState == portfolio.PendingCommand:
		lines = append(lines, t.style(t.Muted).Render("Working..."))
	case m.portErr != nil:
		lines = append(lines, t.style(t.Error).Render("Cannot reach API at "+m.opts.APIURL))
	}
	p := m.snap
	if p == nil {
		return strings.Join(append(lines, t.style(t.Muted).Render("Loading portfolio...")), "\n")
	}

	equity := t.style(t.Primary).Render(renderBanner(report.Money(p.Equity)))
	lines = append(lines, equity, t.style(t.Muted).Render("Cash "+report.Money(p.Balance)), "")

	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Bots"))
	traders := p.KnownTraders()
	if len(traders) == 0 {
		lines = append(lines, t.style(t.Muted).Render("No bots. Press a to start one."))
	}
	for i, sym := range traders {
		cursor := "  "
		if i == m.cursor {
			cursor = t.style(t.Primary).Render("> ")
		}
		state := t.style(t.Muted).Render("stopped")
		if p.IsTrading(sym) {
			state = t.style(t.Success).Render("running")
		}
		pnl := p.PnL(sym)
		log := p.TraderLogs[sym]
		lines = append(lines, fmt.Sprintf("%s%-6s %s  %s  %s", cursor, sym, state,
			t.style(t.Sign(pnl)).Render(report.SignedMoney(pnl)),
			t.style(t.Muted).Render(truncate(log, 48))))
	}

	if len(p.Positions) > 0 {
		lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Positions"))
		for _, pos := range p.Positions {
			line := fmt.Sprintf("  %-6s %-4s %s x%d @ %s", pos.Symbol, pos.OptionType,
				report.Money(pos.Strike), pos.Quantity, report.Money(pos.EntryPrice))
			if pos.UnrealizedPL.Valid {
				line += "  " + t.style(t.Sign(pos.UnrealizedPL.Decimal)).Render(report.SignedMoney(pos.UnrealizedPL.Decimal))
			} else {
				line += "  " + t.style(t.Muted).Render("-")
			}
			lines = append(lines, line)
		}
	}

	if len(p.History) > 0 {
		lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Closed"))
		for _, h := range p.History {
			lines = append(lines, fmt.Sprintf("  %-6s %-4s %s  %s", h.Symbol, h.OptionType,
				t.style(t.Sign(h.Profit)).Render(report.SignedMoney(h.Profit)),
				t.style(t.Muted).Render(h.Reason)))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewBot() string {
	t := DefaultTheme
	if m.bot == nil {
		return ""
	}
	b := m.bot
	state := t.style(t.Muted).Render("stopped")
	if b.Running {
		state = t.style(t.Success).Render("running")
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(min(m.contentWidth(), 60))

	body := strings.Join([]string{
		t.style(t.Accent).Render(renderBanner(b.Symbol)),
		state + "  " + t.style(t.Sign(b.PnL)).Render(report.SignedMoney(b.PnL)),
		renderBar(b.Bar, 40, t.Sign(b.PnL), t.Border),
		"",
		t.style(t.Text).Render(b.Log),
		"",
		t.style(t.Muted).Italic(true).Render(`"` + b.Quip + `"`),
	}, "\n")
	return box.Render(body)
}

// renderBar draws a left-anchored bar filled to pct of width.
func renderBar(pct float64, width int, fill, empty lipgloss.Color) string {
	n := int(pct / 100 * float64(width))
	n = max(0, min(n, width))
	return lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", n)) +
		lipgloss.NewStyle().Foreground(empty).Render(strings.Repeat("░", width-n))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// bindings lists the keys that apply in the current mode and view.
func (m Model) bindings() []key.Binding {
	switch m.mode {
	case modeSymbol, modeAddBot, modeBalance:
		return []key.Binding{keys.Select, keys.Back}
	case modeFilters:
		return []key.Binding{keys.Next, keys.Prev, keys.Select, keys.Back}
	case modeInsight, modeBot:
		return []key.Binding{keys.Back}
	}
	base := []key.Binding{keys.Tabs, keys.Symbol, keys.Refresh}
	switch m.state.View {
	case desk.Technical:
		base = append(base, keys.Up, keys.Down, keys.Select)
	case desk.Screener:
		base = append(base, keys.Filters, keys.Clear, keys.Up, keys.Down, keys.Select)
	case desk.Backtest:
		base = append(base, keys.Select)
	case desk.Portfolio:
		base = append(base, keys.Add, keys.Toggle, keys.Detail, keys.Reset)
	}
	return append(base, keys.Quit)
}
