// Package portfolio keeps a live copy of the simulated trading portfolio
// while it is on screen and issues bot and balance commands.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"TickerDesk/internal/model"
)

// DefaultInterval is the refresh period while the portfolio is displayed.
const DefaultInterval = 5 * time.Second

var (
	// ErrNoSnapshot is returned by Toggle before any snapshot has loaded.
	ErrNoSnapshot = errors.New("portfolio not loaded")
	// ErrNegativeAmount rejects a reset below zero.
	ErrNegativeAmount = errors.New("reset amount must not be negative")
)

// Client is the slice of the gateway the controller needs.
type Client interface {
	Portfolio(ctx context.Context) (*model.PortfolioSnapshot, error)
	StartTrader(ctx context.Context, symbol string) error
	StopTrader(ctx context.Context, symbol string) error
	ResetPortfolio(ctx context.Context, amount decimal.Decimal) error
}

// Repeater schedules a recurring job.
type Repeater interface {
	Every(interval time.Duration, job func()) (cancel func(), err error)
}

// State is the controller's polling state.
type State int

const (
	Idle State = iota
	Active
	PendingCommand
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case PendingCommand:
		return "pending"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Command is a mutating request sent to the service.
type Command string

const (
	CommandStart Command = "start"
	CommandStop  Command = "stop"
	CommandReset Command = "reset"
)

// Update is delivered to subscribers after every applied change.
type Update struct {
	Snapshot *model.PortfolioSnapshot
	Err      error
	State    State
}

// Option customises a Controller.
type Option func(*Controller)

// WithPicker replaces the random quip picker. pick(n) must return [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(c *Controller) { c.pick = pick }
}

// Controller owns the portfolio snapshot. The snapshot is replaced wholesale
// and only by the newest response of the current generation.
type Controller struct {
	client   Client
	timer    Repeater
	interval time.Duration
	log      zerolog.Logger
	pick     func(n int) int

	mu       sync.Mutex
	state    State
	resume   State
	pending  int
	gen      uint64
	seq      uint64
	applied  uint64
	snapshot *model.PortfolioSnapshot
	err      error
	ctx      context.Context
	cancel   func()
	subs     map[int]func(Update)
	nextSub  int
}

// NewController creates an idle controller. A zero interval uses DefaultInterval.
func NewController(client Client, timer Repeater, interval time.Duration, log zerolog.Logger, opts ...Option) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	c := &Controller{
		client:   client,
		timer:    timer,
		interval: interval,
		log:      log.With().Str("component", "portfolio").Logger(),
		pick:     randomPick,
		ctx:      context.Background(),
		subs:     make(map[int]func(Update)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enter starts polling: one fetch now, then one per interval until Leave.
// Entering while already polling only refreshes.
func (c *Controller) Enter(ctx context.Context) error {
	fetch, err := c.Activate(ctx)
	if err != nil {
		return err
	}
	return fetch(ctx)
}

// Activate moves the controller to Active and schedules the periodic fetch
// without fetching. The returned fetch performs the first refresh; it does
// nothing once Leave has run. Activating while already polling keeps the
// current timer.
func (c *Controller) Activate(ctx context.Context) (fetch func(context.Context) error, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		gen := c.gen
		return func(ctx context.Context) error { return c.refresh(ctx, gen) }, nil
	}
	c.gen++
	gen := c.gen
	cancel, err := c.timer.Every(c.interval, func() { c.tick(gen) })
	if err != nil {
		return nil, fmt.Errorf("schedule portfolio refresh: %w", err)
	}
	c.state = Active
	c.pending = 0
	c.ctx = ctx
	c.cancel = cancel

	c.log.Debug().Uint64("generation", gen).Dur("interval", c.interval).Msg("polling started")
	return func(ctx context.Context) error { return c.refresh(ctx, gen) }, nil
}

// Leave stops polling and discards the snapshot. Responses still in flight
// are dropped when they arrive.
func (c *Controller) Leave() {
	c.mu.Lock()
	if c.cancel == nil && c.state == Idle {
		c.mu.Unlock()
		return
	}
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Idle
	c.pending = 0
	c.snapshot = nil
	c.err = nil
	upd, subs := c.updateLocked()
	c.mu.Unlock()

	c.log.Debug().Msg("polling stopped")
	notify(subs, upd)
}

// Refresh fetches a snapshot out of band.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	return c.refresh(ctx, gen)
}

// Toggle stops the bot for symbol if the last snapshot lists it as active,
// and starts it otherwise. The check uses the cached snapshot, which may lag
// the service by up to one interval. It returns the command it issued.
func (c *Controller) Toggle(ctx context.Context, symbol string) (Command, error) {
	sym := model.NormalizeSymbol(symbol)
	if sym == "" {
		return "", fmt.Errorf("toggle: empty symbol")
	}
	c.mu.Lock()
	snap := c.snapshot
	c.mu.Unlock()
	if snap == nil {
		return "", ErrNoSnapshot
	}

	if snap.IsTrading(sym) {
		return CommandStop, c.command(ctx, CommandStop, func(ctx context.Context) error {
			return c.client.StopTrader(ctx, sym)
		})
	}
	return CommandStart, c.command(ctx, CommandStart, func(ctx context.Context) error {
		return c.client.StartTrader(ctx, sym)
	})
}

// Start starts the bot for symbol regardless of the cached snapshot.
func (c *Controller) Start(ctx context.Context, symbol string) error {
	sym := model.NormalizeSymbol(symbol)
	return c.command(ctx, CommandStart, func(ctx context.Context) error {
		return c.client.StartTrader(ctx, sym)
	})
}

// Stop stops the bot for symbol regardless of the cached snapshot.
func (c *Controller) Stop(ctx context.Context, symbol string) error {
	sym := model.NormalizeSymbol(symbol)
	return c.command(ctx, CommandStop, func(ctx context.Context) error {
		return c.client.StopTrader(ctx, sym)
	})
}

// Reset sets the cash balance and clears positions and bots.
func (c *Controller) Reset(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	return c.command(ctx, CommandReset, func(ctx context.Context) error {
		return c.client.ResetPortfolio(ctx, amount)
	})
}

// command issues one request, then refreshes whether or not it succeeded.
func (c *Controller) command(ctx context.Context, name Command, call func(context.Context) error) error {
	c.mu.Lock()
	gen := c.gen
	if c.pending == 0 {
		c.resume = c.state
	}
	c.pending++
	c.state = PendingCommand
	upd, subs := c.updateLocked()
	c.mu.Unlock()
	notify(subs, upd)

	cmdErr := call(ctx)
	if cmdErr != nil {
		c.log.Warn().Err(cmdErr).Str("command", string(name)).Msg("command failed")
	} else {
		c.log.Info().Str("command", string(name)).Msg("command sent")
	}

	c.mu.Lock()
	if c.gen == gen {
		c.pending--
		if c.pending == 0 {
			c.state = c.resume
		}
	}
	c.mu.Unlock()

	refreshErr := c.refresh(ctx, gen)
	if cmdErr != nil {
		return fmt.Errorf("%s: %w", name, cmdErr)
	}
	return refreshErr
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	c.mu.Unlock()

	if err := c.refresh(ctx, gen); err != nil {
		c.log.Warn().Err(err).Msg("scheduled refresh failed")
	}
}

func (c *Controller) refresh(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	snap, err := c.client.Portfolio(ctx)

	c.mu.Lock()
	if gen != c.gen || seq < c.applied {
		c.mu.Unlock()
		c.log.Debug().Uint64("seq", seq).Msg("stale portfolio response dropped")
		return err
	}
	c.applied = seq
	if err != nil {
		c.err = err
	} else {
		c.snapshot = snap
		c.err = nil
	}
	upd, subs := c.updateLocked()
	c.mu.Unlock()

	notify(subs, upd)
	return err
}

// Snapshot returns a copy of the latest snapshot, or nil.
func (c *Controller) Snapshot() *model.PortfolioSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone()
}

// State returns the current polling state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error of the latest applied refresh.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Subscribe registers fn for every Update and returns its removal func.
// fn runs on the goroutine that applied the change and must not block.
func (c *Controller) Subscribe(fn func(Update)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) updateLocked() (Update, []func(Update)) {
	subs := make([]func(Update), 0, len(c.subs))
	for i := 0; i < c.nextSub; i++ {
		if fn, ok := c.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return Update{Snapshot: c.snapshot.Clone(), Err: c.err, State: c.state}, subs
}

func notify(subs []func(Update), upd Update) {
	for _, fn := range subs {
		fn(upd)
	}
}
