package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerDesk/internal/model"
)

// fakeClient numbers every portfolio fetch and reports the number as the
// balance, so tests can tell which response was applied.
type fakeClient struct {
	mu       sync.Mutex
	fetches  int
	active   []string
	logs     map[string]string
	pnl      map[string]decimal.Decimal
	fetchErr error
	cmdErr   error
	gates    map[int]chan struct{}
	entered  chan int
	started  []string
	stopped  []string
	resets   []decimal.Decimal
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		gates:   make(map[int]chan struct{}),
		entered: make(chan int, 16),
	}
}

func (f *fakeClient) Portfolio(ctx context.Context) (*model.PortfolioSnapshot, error) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	gate := f.gates[n]
	err := f.fetchErr
	snap := &model.PortfolioSnapshot{
		Balance:       decimal.NewFromInt(int64(n)),
		ActiveTraders: append([]string(nil), f.active...),
		TraderLogs:    f.logs,
		TraderPnL:     f.pnl,
	}
	f.mu.Unlock()

	f.entered <- n
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (f *fakeClient) StartTrader(_ context.Context, symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, symbol)
	return f.cmdErr
}

func (f *fakeClient) StopTrader(_ context.Context, symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, symbol)
	return f.cmdErr
}

func (f *fakeClient) ResetPortfolio(_ context.Context, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, amount)
	return f.cmdErr
}

func (f *fakeClient) gate(n int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[n] = ch
	return ch
}

func (f *fakeClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// manualTimer fires registered jobs only when the test says so.
type manualTimer struct {
	mu       sync.Mutex
	entries  []*timerEntry
	interval time.Duration
}

type timerEntry struct {
	job       func()
	cancelled bool
}

func (m *manualTimer) Every(interval time.Duration, job func()) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &timerEntry{job: job}
	m.entries = append(m.entries, e)
	m.interval = interval
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		e.cancelled = true
	}, nil
}

func (m *manualTimer) fire() {
	m.mu.Lock()
	var jobs []func()
	for _, e := range m.entries {
		if !e.cancelled {
			jobs = append(jobs, e.job)
		}
	}
	m.mu.Unlock()
	for _, job := range jobs {
		job()
	}
}

func (m *manualTimer) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if !e.cancelled {
			n++
		}
	}
	return n
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *fakeClient, *manualTimer) {
	t.Helper()
	client := newFakeClient()
	timer := &manualTimer{}
	return NewController(client, timer, 0, zerolog.Nop(), opts...), client, timer
}

func balance(t *testing.T, c *Controller) int64 {
	t.Helper()
	snap := c.Snapshot()
	require.NotNil(t, snap)
	return snap.Balance.IntPart()
}

func TestEnter_FetchesImmediatelyThenOnEveryTick(t *testing.T) {
	c, client, timer := newTestController(t)
	assert.Equal(t, Idle, c.State())

	require.NoError(t, c.Enter(context.Background()))
	assert.Equal(t, Active, c.State())
	assert.Equal(t, 1, client.count())
	assert.Equal(t, DefaultInterval, timer.interval)

	timer.fire()
	timer.fire()
	assert.Equal(t, 3, client.count())
	assert.Equal(t, int64(3), balance(t, c))

	c.Leave()
	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.Snapshot())
	assert.Equal(t, 0, timer.live())

	timer.fire()
	assert.Equal(t, 3, client.count(), "no fetch after leaving")
}

func TestEnter_Twice_KeepsOneTimer(t *testing.T) {
	c, client, timer := newTestController(t)
	require.NoError(t, c.Enter(context.Background()))
	require.NoError(t, c.Enter(context.Background()))
	assert.Equal(t, 1, timer.live())
	assert.Equal(t, 2, client.count())
}

func TestLeave_DropsInFlightResponse(t *testing.T) {
	c, client, timer := newTestController(t)
	require.NoError(t, c.Enter(context.Background()))
	<-client.entered

	// Capture the job before leaving; a late tick must not fetch either.
	timer.mu.Lock()
	job := timer.entries[0].job
	timer.mu.Unlock()

	gate := client.gate(2)
	done := make(chan struct{})
	go func() {
		timer.fire()
		close(done)
	}()
	require.Equal(t, 2, <-client.entered)

	c.Leave()
	close(gate)
	<-done

	assert.Nil(t, c.Snapshot())
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 0, timer.live())

	job()
	assert.Equal(t, 2, client.count())
}

func TestRefresh_DropsOlderResponse(t *testing.T) {
	c, client, _ := newTestController(t)
	require.NoError(t, c.Enter(context.Background()))
	<-client.entered

	gate := client.gate(2)
	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	require.Equal(t, 2, <-client.entered)

	require.NoError(t, c.Refresh(context.Background()))
	<-client.entered
	assert.Equal(t, int64(3), balance(t, c))

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, int64(3), balance(t, c), "older response must not replace newer")
}

func TestRefresh_ErrorKeepsSnapshot(t *testing.T) {
	c, client, timer := newTestController(t)
	require.NoError(t, c.Enter(context.Background()))

	client.mu.Lock()
	client.fetchErr = errors.New("connection refused")
	client.mu.Unlock()
	timer.fire()

	assert.Error(t, c.Err())
	assert.Equal(t, int64(1), balance(t, c))
	assert.Equal(t, Active, c.State())
}

func TestToggle_ChoosesByLastSnapshot(t *testing.T) {
	c, client, _ := newTestController(t)

	_, err := c.Toggle(context.Background(), "NVDA")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	client.active = []string{"NVDA"}
	require.NoError(t, c.Enter(context.Background()))

	cmd, err := c.Toggle(context.Background(), "nvda")
	require.NoError(t, err)
	assert.Equal(t, CommandStop, cmd)
	assert.Equal(t, []string{"NVDA"}, client.stopped)

	cmd, err = c.Toggle(context.Background(), "AMD")
	require.NoError(t, err)
	assert.Equal(t, CommandStart, cmd)
	assert.Equal(t, []string{"AMD"}, client.started)

	// Enter plus one refresh per command.
	assert.Equal(t, 3, client.count())
	assert.Equal(t, Active, c.State())
}

func TestCommand_FailureStillRefreshes(t *testing.T) {
	c, client, _ := newTestController(t)
	require.NoError(t, c.Enter(context.Background()))
	client.cmdErr = errors.New("boom")

	err := c.Reset(context.Background(), decimal.NewFromInt(20000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset")
	assert.Equal(t, 2, client.count())
	assert.Equal(t, Active, c.State())
}

func TestCommand_PassesThroughPendingState(t *testing.T) {
	c, _, _ := newTestController(t)
	require.NoError(t, c.Enter(context.Background()))

	var mu sync.Mutex
	var states []State
	unsubscribe := c.Subscribe(func(u Update) {
		mu.Lock()
		states = append(states, u.State)
		mu.Unlock()
	})
	defer unsubscribe()

	require.NoError(t, c.Reset(context.Background(), decimal.NewFromInt(15000)))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{PendingCommand, Active}, states)
}

func TestReset_RejectsNegative(t *testing.T) {
	c, client, _ := newTestController(t)
	err := c.Reset(context.Background(), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.Empty(t, client.resets)
	assert.Equal(t, 0, client.count())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	c, _, timer := newTestController(t)
	var got []Update
	unsubscribe := c.Subscribe(func(u Update) { got = append(got, u) })

	require.NoError(t, c.Enter(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].Snapshot.Balance.IntPart())

	unsubscribe()
	timer.fire()
	assert.Len(t, got, 1)
}

func TestOpenBot(t *testing.T) {
	require.Len(t, Quips, 11)
	assert.Equal(t, "I'm bullish... no bull! 🐂", Quips[0])
	assert.Equal(t, "Cash is trash, but I'm made of code. 💻", Quips[10])
	for i := range Quips {
		c, client, _ := newTestController(t, WithPicker(func(int) int { return i }))
		client.active = []string{"TSLA"}
		client.logs = map[string]string{"TSLA": "Bought 2 CALL @ 4.10"}
		client.pnl = map[string]decimal.Decimal{"TSLA": decimal.NewFromInt(-1250), "AMD": decimal.NewFromInt(42)}

		_, ok := c.OpenBot("TSLA")
		assert.False(t, ok)

		require.NoError(t, c.Enter(context.Background()))
		sel, ok := c.OpenBot("tsla")
		require.True(t, ok)
		assert.Contains(t, Quips, sel.Quip)
		assert.Equal(t, Quips[i], sel.Quip)
		assert.True(t, sel.Running)
		assert.Equal(t, "Bought 2 CALL @ 4.10", sel.Log)
		assert.True(t, sel.PnL.Equal(decimal.NewFromInt(-1250)))
		assert.Equal(t, 100.0, sel.Bar)

		sel, ok = c.OpenBot("AMD")
		require.True(t, ok)
		assert.False(t, sel.Running)
		assert.Equal(t, "Sleeping...", sel.Log)
		assert.InDelta(t, 4.2, sel.Bar, 1e-9)
	}
}

func TestActivate_FetchAfterLeaveIsSkipped(t *testing.T) {
	c, client, timer := newTestController(t)

	fetch, err := c.Activate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Active, c.State())
	c.Leave()

	require.NoError(t, fetch(context.Background()))
	timer.fire()
	assert.Zero(t, client.fetches)
	assert.Nil(t, c.Snapshot())
}
