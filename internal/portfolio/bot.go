package portfolio

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"TickerDesk/internal/model"
)

// Quips are the one-liners a bot greets the user with.
var Quips = []string{
	"I'm bullish... no bull! 🐂",
	"Why did the trader go broke? He lost his margin of safety. 📉",
	"Buying the dip... or catching a falling knife? 🔪",
	"To the moon! 🚀 (Or at least the ceiling)",
	"My algorithm is 99% math, 1% hope. 🤞",
	"HODL until my circuits fry! 🤖",
	"Stonks only go up... right? 📈",
	"I eat volatility for breakfast. 🥣",
	"Analyzing charts so you don't have to pretend you understand them. 🧐",
	"Bear market? I thought you said beer market! 🍺",
	"Cash is trash, but I'm made of code. 💻",
}

// noLog is shown for a bot the service has no status line for.
const noLog = "Sleeping..."

// BotSelection is the detail view of one trading bot.
type BotSelection struct {
	Symbol  string
	Quip    string
	Log     string
	PnL     decimal.Decimal
	Running bool
	// Bar is the P/L gauge fill in percent: |PnL| / 10, capped at 100.
	Bar float64
}

// OpenBot builds the detail view for symbol from the latest snapshot. ok is
// false before any snapshot has loaded.
func (c *Controller) OpenBot(symbol string) (sel BotSelection, ok bool) {
	sym := model.NormalizeSymbol(symbol)
	c.mu.Lock()
	snap := c.snapshot
	pick := c.pick
	c.mu.Unlock()
	if snap == nil {
		return BotSelection{}, false
	}

	pnl := snap.PnL(sym)
	line, found := snap.TraderLogs[sym]
	if !found || line == "" {
		line = noLog
	}
	bar := pnl.Abs().Div(decimal.NewFromInt(10)).InexactFloat64()
	if bar > 100 {
		bar = 100
	}
	return BotSelection{
		Symbol:  sym,
		Quip:    Quips[pick(len(Quips))],
		Log:     line,
		PnL:     pnl,
		Running: snap.IsTrading(sym),
		Bar:     bar,
	}, true
}

func randomPick(n int) int { return rand.IntN(n) }
