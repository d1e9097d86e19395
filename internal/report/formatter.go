// Package report formats dashboard data as plain text for the CLI.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"TickerDesk/internal/composer"
	"TickerDesk/internal/interpret"
	"TickerDesk/internal/model"
)

// Money formats an amount as $1,234.56.
func Money(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	if f < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -f)
	}
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// SignedMoney formats an amount with an explicit sign.
func SignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return Money(d)
	}
	return "+" + Money(d)
}

// Percent formats a value that is already in percent, e.g. 12.3 as +12.30%.
func Percent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if !d.IsNegative() {
		s = "+" + s
	}
	return s
}

// Figure formats an optional large number, e.g. 1.2 T or N/A.
func Figure(f model.Figure) string {
	if !f.Valid {
		return "N/A"
	}
	v, unit := humanize.ComputeSI(f.Decimal.InexactFloat64())
	switch unit {
	case "G":
		unit = "B"
	case "k":
		unit = "K"
	}
	return strings.TrimSpace(humanize.FormatFloat("#,###.##", v) + " " + unit)
}

// FormatAnalysis formats quote, forecast and indicators for one symbol.
func FormatAnalysis(s *model.StockData, f *model.Forecast, series []composer.Point) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n", s.Symbol, s.Name))
	b.WriteString(fmt.Sprintf("Price: %s (%s)\n", Money(s.CurrentPrice), Percent(s.ChangePercent)))
	b.WriteString(fmt.Sprintf("Market cap: %s | Volume: %s | P/E: %s\n",
		Figure(s.MarketCap), Figure(s.Volume), optional(s.PERatio)))
	if s.Sector != "" {
		b.WriteString(fmt.Sprintf("Sector: %s\n", s.Sector))
	}
	if s.Outlook.Sentiment != "" {
		b.WriteString(fmt.Sprintf("Outlook: %s (%s%% confidence)\n", s.Outlook.Sentiment, s.Outlook.Confidence.String()))
	}
	b.WriteString("\n")

	if f != nil {
		b.WriteString(fmt.Sprintf("Forecast: %s", f.Heading()))
		if f.Confidence.Valid {
			b.WriteString(fmt.Sprintf(" (%s%% confidence)", f.Confidence.Decimal.String()))
		}
		b.WriteString("\n")
		for _, p := range f.Predictions {
			line := fmt.Sprintf("  %s  %s", p.Date.Label(), Money(p.PredictedPrice))
			if p.Action != "" {
				line += "  " + p.Action
			}
			b.WriteString(line + "\n")
		}
		if low, high, ok := composer.Bounds(series); ok {
			b.WriteString(fmt.Sprintf("Chart range: %s - %s over %d points\n", Money(low), Money(high), len(series)))
		}
		b.WriteString("\n")
	}

	b.WriteString("Technicals:\n")
	for _, in := range interpret.ForSnapshot(s.Snapshot()) {
		b.WriteString(fmt.Sprintf("  %-5s %-10s %-14s %s\n", strings.ToUpper(string(in.Kind)), in.Value, in.Badge, in.Analysis))
	}
	return b.String()
}

// FormatInsight formats one indicator explanation.
func FormatInsight(in interpret.Insight) string {
	var b strings.Builder
	b.WriteString(in.Title + "\n\n")
	b.WriteString("Definition: " + in.Definition + "\n")
	b.WriteString("Why it matters: " + in.Rationale + "\n")
	b.WriteString("Calculation: " + in.Calculation + "\n\n")
	b.WriteString(fmt.Sprintf("Signal: %s\n%s\n", in.Signal, in.Analysis))
	return b.String()
}

// FormatScreener formats screener matches as a table.
func FormatScreener(rows []model.ScreenerRow) string {
	if len(rows) == 0 {
		return "No matches.\n"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-8s %12s  %-12s %5s  %s\n", "Ticker", "Price", "Signal", "Score", "Sector"))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-8s %12s  %-12s %5d  %s\n", r.Symbol, Money(r.Price), r.Signal, r.Score, r.Sector))
	}
	return b.String()
}

// FormatBacktest formats a backtest report and its trade log.
func FormatBacktest(r *model.BacktestReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Backtest %s (%d days)\n\n", r.Symbol, r.DaysTested))
	b.WriteString(fmt.Sprintf("Return: %s\n", Percent(r.ReturnPercent)))
	b.WriteString(fmt.Sprintf("Win rate: %s%%\n", r.WinRate.StringFixed(1)))
	b.WriteString(fmt.Sprintf("Final balance: %s (from %s)\n", Money(r.FinalBalance), Money(r.InitialBalance)))
	b.WriteString(fmt.Sprintf("Trades: %d\n", r.TotalTrades))
	if len(r.Trades) > 0 {
		b.WriteString("\n")
	}
	for _, t := range r.Trades {
		line := fmt.Sprintf("  %s  %-4s %s", t.Date.String(), t.Type, Money(t.Price))
		if t.Shares.Valid {
			line += fmt.Sprintf("  x%s", t.Shares.Decimal.StringFixed(2))
		}
		if t.Profit.Valid {
			line += "  " + SignedMoney(t.Profit.Decimal)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatPortfolio formats a portfolio snapshot.
func FormatPortfolio(p *model.PortfolioSnapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Balance: %s | Equity: %s\n\n", Money(p.Balance), Money(p.Equity)))

	b.WriteString("Bots:\n")
	traders := p.KnownTraders()
	if len(traders) == 0 {
		b.WriteString("  none\n")
	}
	for _, sym := range traders {
		status := "stopped"
		if p.IsTrading(sym) {
			status = "running"
		}
		line := p.TraderLogs[sym]
		b.WriteString(fmt.Sprintf("  %-6s %-8s %10s  %s\n", sym, status, SignedMoney(p.PnL(sym)), line))
	}

	b.WriteString("\nPositions:\n")
	if len(p.Positions) == 0 {
		b.WriteString("  none\n")
	}
	for _, pos := range p.Positions {
		b.WriteString(fmt.Sprintf("  %-6s %-4s strike %s x%d  entry %s  now %s  P/L %s\n",
			pos.Symbol, pos.OptionType, Money(pos.Strike), pos.Quantity, Money(pos.EntryPrice),
			nullMoney(pos.CurrentPrice), nullSigned(pos.UnrealizedPL)))
	}

	if len(p.History) > 0 {
		b.WriteString("\nRecent trades:\n")
		for _, t := range p.History {
			b.WriteString(fmt.Sprintf("  %-6s %-4s %10s  %s\n", t.Symbol, t.OptionType, SignedMoney(t.Profit), t.Reason))
		}
	}
	return b.String()
}

func optional(f model.Figure) string {
	if !f.Valid {
		return "N/A"
	}
	return f.Decimal.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return Money(d.Decimal)
}

func nullSigned(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return SignedMoney(d.Decimal)
}
