package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// OptionType is the contract kind of a simulated position.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// Position is an open simulated option position. The live pricing fields are
// absent when the service could not price the underlying.
type Position struct {
	Symbol            string              `json:"symbol"`
	OptionType        OptionType          `json:"type"`
	Strike            decimal.Decimal     `json:"strike"`
	EntryPrice        decimal.Decimal     `json:"entry_price"`
	Quantity          int                 `json:"quantity"`
	Cost              decimal.Decimal     `json:"cost"`
	EntryTime         string              `json:"entry_time"`
	CurrentStockPrice decimal.NullDecimal `json:"current_stock_price"`
	CurrentPrice      decimal.NullDecimal `json:"current_opt_price"`
	MarketValue       decimal.NullDecimal `json:"market_value"`
	UnrealizedPL      decimal.NullDecimal `json:"unrealized_pl"`
	ReturnPct         decimal.NullDecimal `json:"return_pct"`
}

// ClosedTrade is a position the bot has exited.
type ClosedTrade struct {
	Symbol     string              `json:"symbol"`
	OptionType OptionType          `json:"type"`
	Reason     string              `json:"reason"`
	Profit     decimal.Decimal     `json:"profit"`
	EntryPrice decimal.Decimal     `json:"entry_price"`
	ExitPrice  decimal.NullDecimal `json:"exit_price"`
	ExitTime   string              `json:"exit_time"`
}

// PortfolioSnapshot is the full simulated portfolio at one point in time.
type PortfolioSnapshot struct {
	Balance       decimal.Decimal            `json:"balance"`
	Equity        decimal.Decimal            `json:"equity"`
	ActiveTraders []string                   `json:"active_traders"`
	TraderPnL     map[string]decimal.Decimal `json:"trader_pnl"`
	TraderLogs    map[string]string          `json:"trader_logs"`
	Positions     []Position                 `json:"positions"`
	History       []ClosedTrade              `json:"history"`
}

// IsTrading reports whether a bot for symbol is in the active set.
func (p *PortfolioSnapshot) IsTrading(symbol string) bool {
	for _, s := range p.ActiveTraders {
		if s == symbol {
			return true
		}
	}
	return false
}

// PnL returns the realised profit for a bot, zero when unknown.
func (p *PortfolioSnapshot) PnL(symbol string) decimal.Decimal {
	if v, ok := p.TraderPnL[symbol]; ok {
		return v
	}
	return decimal.Zero
}

// KnownTraders lists every symbol the service reports on, active or not,
// in sorted order.
func (p *PortfolioSnapshot) KnownTraders() []string {
	seen := make(map[string]struct{}, len(p.ActiveTraders)+len(p.TraderLogs))
	for _, s := range p.ActiveTraders {
		seen[s] = struct{}{}
	}
	for s := range p.TraderLogs {
		seen[s] = struct{}{}
	}
	for s := range p.TraderPnL {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy so callers never share the controller's slices.
func (p *PortfolioSnapshot) Clone() *PortfolioSnapshot {
	if p == nil {
		return nil
	}
	c := *p
	c.ActiveTraders = append([]string(nil), p.ActiveTraders...)
	c.Positions = append([]Position(nil), p.Positions...)
	c.History = append([]ClosedTrade(nil), p.History...)
	if p.TraderPnL != nil {
		c.TraderPnL = make(map[string]decimal.Decimal, len(p.TraderPnL))
		for k, v := range p.TraderPnL {
			c.TraderPnL[k] = v
		}
	}
	if p.TraderLogs != nil {
		c.TraderLogs = make(map[string]string, len(p.TraderLogs))
		for k, v := range p.TraderLogs {
			c.TraderLogs[k] = v
		}
	}
	return &c
}
