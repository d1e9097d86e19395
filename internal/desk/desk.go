// Package desk holds the dashboard's application state and decides which
// fetches a user action triggers.
package desk

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"TickerDesk/internal/composer"
	"TickerDesk/internal/gateway"
	"TickerDesk/internal/interpret"
	"TickerDesk/internal/model"
	"TickerDesk/internal/portfolio"
	"TickerDesk/internal/screener"
)

// User-facing panel messages.
const (
	MsgNotFound       = "Stock not found"
	MsgLoadFailed     = "Could not reach the analysis service"
	MsgScreenerFailed = "Screener request failed"
	MsgBacktestFailed = "Backtest failed"
)

// ErrNoData is returned when an action needs a loaded symbol.
var ErrNoData = errors.New("no symbol loaded")

// Gateway is the slice of the remote gateway the desk reads from.
type Gateway interface {
	Stock(ctx context.Context, symbol string) (*model.StockData, error)
	Forecast(ctx context.Context, symbol string) (*model.Forecast, error)
	Screen(ctx context.Context, query url.Values) ([]model.ScreenerRow, error)
	Backtest(ctx context.Context, symbol string) (*model.BacktestReport, error)
}

// Panel is the fetch status of one dashboard area. Loading and Err are
// never both set.
type Panel struct {
	Loading bool
	Err     string
}

// State is a copy of everything the dashboard renders. Stock, Forecast and
// Backtest are replaced wholesale and never mutated once published.
type State struct {
	Symbol   string
	View     View
	Filters  screener.Filters
	Stock    *model.StockData
	Forecast *model.Forecast
	Series   []composer.Point
	Rows     []model.ScreenerRow
	Backtest *model.BacktestReport

	Quote       Panel
	ScreenPanel Panel
	TestPanel   Panel
}

// Desk owns the application state.
type Desk struct {
	gw   Gateway
	port *portfolio.Controller
	log  zerolog.Logger

	mu          sync.Mutex
	state       State
	quoteToken  uint64
	screenToken uint64
	testToken   uint64
	subs        []func(State)
}

// New creates a desk on symbol with the overview shown. Nothing is fetched
// until the first action.
func New(gw Gateway, port *portfolio.Controller, symbol string, log zerolog.Logger) *Desk {
	return &Desk{
		gw:    gw,
		port:  port,
		log:   log.With().Str("component", "desk").Logger(),
		state: State{Symbol: model.NormalizeSymbol(symbol), View: Overview},
	}
}

// Portfolio returns the portfolio controller.
func (d *Desk) Portfolio() *portfolio.Controller { return d.port }

// State returns a copy of the current state.
func (d *Desk) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.copyLocked()
}

// Subscribe registers fn for every state change. fn must not block.
func (d *Desk) Subscribe(fn func(State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, fn)
}

func (d *Desk) copyLocked() State {
	s := d.state
	s.Series = append([]composer.Point(nil), d.state.Series...)
	s.Rows = append([]model.ScreenerRow(nil), d.state.Rows...)
	return s
}

// change applies fn under the lock and notifies subscribers.
func (d *Desk) change(fn func(s *State)) {
	d.mu.Lock()
	fn(&d.state)
	s := d.copyLocked()
	subs := d.subs
	d.mu.Unlock()
	for _, sub := range subs {
		sub(s)
	}
}

// Analyze always fetches quote and forecast for symbol, concurrently, and
// drops any backtest. An empty symbol re-analyzes the current one. A newer
// Analyze supersedes one still in flight.
func (d *Desk) Analyze(ctx context.Context, symbol string) error {
	sym := model.NormalizeSymbol(symbol)
	var tok uint64
	d.change(func(s *State) {
		if sym == "" {
			sym = s.Symbol
		}
		d.quoteToken++
		d.testToken++
		tok = d.quoteToken
		s.Symbol = sym
		s.Quote = Panel{Loading: true}
		s.Backtest = nil
		s.TestPanel = Panel{}
	})
	if sym == "" {
		d.change(func(s *State) { s.Quote = Panel{} })
		return fmt.Errorf("analyze: empty symbol")
	}

	// The forecast runs alongside the stock call; a failed stock call
	// decides the message because it tells NotFound apart.
	var (
		forecast *model.Forecast
		g        errgroup.Group
	)
	g.Go(func() (err error) {
		forecast, err = d.gw.Forecast(ctx, sym)
		return err
	})
	stock, err := d.gw.Stock(ctx, sym)
	if fcErr := g.Wait(); err == nil {
		err = fcErr
	}

	var stale bool
	d.change(func(s *State) {
		if tok != d.quoteToken {
			stale = true
			return
		}
		s.Quote.Loading = false
		switch {
		case err == nil:
			s.Stock = stock
			s.Forecast = forecast
			s.Series = composer.Compose(stock.History, forecast.Predictions)
		case gateway.IsNotFound(err):
			s.Quote.Err = MsgNotFound
			s.Stock, s.Forecast, s.Series = nil, nil, nil
		default:
			s.Quote.Err = MsgLoadFailed
		}
	})
	if stale {
		d.log.Debug().Str("symbol", sym).Msg("superseded analyze dropped")
		return nil
	}
	if err != nil {
		d.log.Warn().Err(err).Str("symbol", sym).Msg("analyze failed")
		return fmt.Errorf("analyze %s: %w", sym, err)
	}
	d.log.Info().Str("symbol", sym).Int("points", len(stock.History)).Msg("symbol loaded")
	return nil
}

// SetView switches the active view and runs what the new view needs: the
// screener query, portfolio polling, or a first load of symbol data.
// Portfolio polling starts and stops under the same lock as the view change,
// so a slower SetView can never leave polling running behind another view.
// Portfolio subscribers may therefore run with the desk locked.
func (d *Desk) SetView(ctx context.Context, v View) error {
	var (
		needQuote bool
		fetch     func(context.Context) error
		err       error
	)
	d.mu.Lock()
	prev := d.state.View
	if prev == Portfolio && v != Portfolio {
		d.port.Leave()
	}
	if v == Portfolio && prev != Portfolio {
		fetch, err = d.port.Activate(ctx)
	}
	if err == nil {
		d.state.View = v
		needQuote = v.NeedsSymbol() && d.state.Stock == nil && !d.state.Quote.Loading
	}
	s := d.copyLocked()
	subs := d.subs
	d.mu.Unlock()
	if err != nil {
		return err
	}
	for _, sub := range subs {
		sub(s)
	}

	switch {
	case v == Screener:
		return d.RunScreener(ctx)
	case fetch != nil:
		return fetch(ctx)
	case needQuote:
		return d.Analyze(ctx, "")
	}
	return nil
}

// SetFilters replaces the screener form.
func (d *Desk) SetFilters(f screener.Filters) {
	d.change(func(s *State) { s.Filters = f })
}

// SetFilter updates one screener field.
func (d *Desk) SetFilter(field screener.Field, value string) error {
	var err error
	d.change(func(s *State) { err = s.Filters.Set(field, value) })
	return err
}

// RunScreener queries the screener with the current filters. Failures stay
// in the screener panel and keep the previous rows.
func (d *Desk) RunScreener(ctx context.Context) error {
	var (
		tok uint64
		q   url.Values
		err error
	)
	d.change(func(s *State) {
		d.screenToken++
		tok = d.screenToken
		q, err = screener.Query(s.Filters)
		if err != nil {
			s.ScreenPanel = Panel{Err: err.Error()}
			return
		}
		s.ScreenPanel = Panel{Loading: true}
	})
	if err != nil {
		return err
	}

	rows, err := d.gw.Screen(ctx, q)
	d.change(func(s *State) {
		if tok != d.screenToken {
			return
		}
		if err != nil {
			s.ScreenPanel = Panel{Err: MsgScreenerFailed}
			return
		}
		s.ScreenPanel = Panel{}
		s.Rows = rows
	})
	if err != nil {
		d.log.Warn().Err(err).Str("query", q.Encode()).Msg("screener failed")
		return fmt.Errorf("screener: %w", err)
	}
	return nil
}

// SelectScreenerRow analyzes the symbol of row i and shows the overview.
func (d *Desk) SelectScreenerRow(ctx context.Context, i int) error {
	d.mu.Lock()
	if i < 0 || i >= len(d.state.Rows) {
		d.mu.Unlock()
		return fmt.Errorf("screener row %d out of range", i)
	}
	sym := d.state.Rows[i].Symbol
	d.mu.Unlock()

	d.change(func(s *State) { s.View = Overview })
	return d.Analyze(ctx, sym)
}

// RunBacktest runs the backtest for the current symbol. Failures stay in the
// backtest panel.
func (d *Desk) RunBacktest(ctx context.Context) error {
	var (
		tok uint64
		sym string
	)
	d.change(func(s *State) {
		d.testToken++
		tok = d.testToken
		sym = s.Symbol
		s.TestPanel = Panel{Loading: true}
	})

	report, err := d.gw.Backtest(ctx, sym)
	d.change(func(s *State) {
		if tok != d.testToken {
			return
		}
		if err != nil {
			s.TestPanel = Panel{Err: MsgBacktestFailed}
			return
		}
		s.TestPanel = Panel{}
		s.Backtest = report
	})
	if err != nil {
		d.log.Warn().Err(err).Str("symbol", sym).Msg("backtest failed")
		return fmt.Errorf("backtest %s: %w", sym, err)
	}
	return nil
}

// Inspect interprets one indicator of the loaded symbol.
func (d *Desk) Inspect(kind interpret.Kind) (interpret.Insight, error) {
	d.mu.Lock()
	stock := d.state.Stock
	d.mu.Unlock()
	if stock == nil {
		return interpret.Insight{}, ErrNoData
	}
	ind, err := interpret.Of(kind, stock.Snapshot())
	if err != nil {
		return interpret.Insight{}, err
	}
	return interpret.Explain(ind), nil
}
