// Package gatewaytest runs an in-process fake of the remote analysis service.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// Route names used for call counting, failure injection and hooks.
const (
	RouteStock     = "stock"
	RoutePredict   = "predict"
	RouteScreener  = "screener"
	RouteBacktest  = "backtest"
	RoutePortfolio = "portfolio"
	RouteStart     = "start"
	RouteStop      = "stop"
	RouteReset     = "reset"
)

// Server mimics the service's endpoints with mutable in-memory state.
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	stocks    map[string]any
	forecasts map[string]any
	backtests map[string]any
	screener  []any
	lastQuery url.Values

	balance   float64
	active    map[string]bool
	logs      map[string]string
	pnl       map[string]float64
	positions []map[string]any
	history   []map[string]any

	failures map[string]int
	hooks    map[string]func()
	calls    map[string]int
}

// New starts a fake service and closes it when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		stocks:    make(map[string]any),
		forecasts: make(map[string]any),
		backtests: make(map[string]any),
		balance:   15000,
		active:    make(map[string]bool),
		logs:      make(map[string]string),
		pnl:       make(map[string]float64),
		failures:  make(map[string]int),
		hooks:     make(map[string]func()),
		calls:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/api/stock/{symbol}", s.track(RouteStock, s.handleStock))
	r.Get("/api/predict/{symbol}", s.track(RoutePredict, s.handlePredict))
	r.Get("/api/screener", s.track(RouteScreener, s.handleScreener))
	r.Get("/api/backtest/{symbol}", s.track(RouteBacktest, s.handleBacktest))
	r.Get("/api/portfolio", s.track(RoutePortfolio, s.handlePortfolio))
	r.Post("/api/portfolio/reset", s.track(RouteReset, s.handleReset))
	r.Post("/api/trader/start/{symbol}", s.track(RouteStart, s.handleStart))
	r.Post("/api/trader/stop/{symbol}", s.track(RouteStop, s.handleStop))

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the base URL to hand to a gateway.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the server down; later requests fail at the transport level.
func (s *Server) Close() { s.srv.Close() }

// SetStock installs the /api/stock payload for symbol.
func (s *Server) SetStock(symbol string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[strings.ToUpper(symbol)] = body
}

// SetForecast installs the /api/predict payload for symbol.
func (s *Server) SetForecast(symbol string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts[strings.ToUpper(symbol)] = body
}

// SetBacktest installs the /api/backtest payload for symbol.
func (s *Server) SetBacktest(symbol string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backtests[strings.ToUpper(symbol)] = body
}

// SetScreener installs the rows every screener call returns.
func (s *Server) SetScreener(rows ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screener = rows
}

// AddPosition appends an open position to the portfolio.
func (s *Server) AddPosition(p map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = append(s.positions, p)
}

// SetTraderLog sets the status line reported for a bot.
func (s *Server) SetTraderLog(symbol, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[symbol] = line
}

// Fail makes route answer with status until cleared with status 0.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// Hook runs fn before route answers; a blocking fn holds the response.
func (s *Server) Hook(route string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.hooks, route)
		return
	}
	s.hooks[route] = fn
}

// Calls returns how many requests route has received.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastScreenerQuery returns the query of the most recent screener call.
func (s *Server) LastScreenerQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// Active returns the running bots, sorted.
func (s *Server) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

// Balance returns the current cash balance.
func (s *Server) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

func (s *Server) activeLocked() []string {
	out := make([]string, 0, len(s.active))
	for sym, on := range s.active {
		if on {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Server) track(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		status := s.failures[route]
		hook := s.hooks[route]
		s.mu.Unlock()

		if hook != nil {
			hook()
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
			return
		}
		h(w, r)
	}
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body, ok := s.stocks[chi.URLParam(r, "symbol")]
	s.mu.Unlock()
	if !ok {
		// The real service wraps its 404 into a 500.
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "404: Stock not found"})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body, ok := s.forecasts[chi.URLParam(r, "symbol")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "404: Stock not found"})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body, ok := s.backtests[chi.URLParam(r, "symbol")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Not enough data"})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleScreener(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.lastQuery = r.URL.Query()
	rows := s.screener
	s.mu.Unlock()
	if rows == nil {
		rows = []any{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	equity := s.balance
	for _, p := range s.positions {
		if mv, ok := p["market_value"].(float64); ok {
			equity += mv
		}
	}
	logs := make(map[string]string, len(s.logs))
	for k, v := range s.logs {
		logs[k] = v
	}
	pnl := make(map[string]float64, len(s.pnl))
	for k, v := range s.pnl {
		pnl[k] = v
	}
	positions := s.positions
	if positions == nil {
		positions = []map[string]any{}
	}
	history := s.history
	if history == nil {
		history = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":        s.balance,
		"equity":         equity,
		"positions":      positions,
		"history":        history,
		"active_traders": s.activeLocked(),
		"trader_logs":    logs,
		"trader_pnl":     pnl,
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sym := chi.URLParam(r, "symbol")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[sym] {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Already running"})
		return
	}
	s.active[sym] = true
	s.logs[sym] = "Initializing..."
	if _, ok := s.pnl[sym]; !ok {
		s.pnl[sym] = 0
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[chi.URLParam(r, "symbol")] = false
	writeJSON(w, http.StatusOK, map[string]string{"message": "Stopped"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "amount must be a number"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = amount
	s.positions = nil
	s.history = nil
	s.active = make(map[string]bool)
	s.pnl = make(map[string]float64)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Portfolio reset to $" + strconv.FormatFloat(amount, 'f', -1, 64)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// StockBody builds an /api/stock payload whose daily history ends on last.
func StockBody(symbol string, last time.Time, closes []float64) map[string]any {
	history := make([]map[string]any, len(closes))
	start := last.AddDate(0, 0, -(len(closes) - 1))
	for i, c := range closes {
		history[i] = map[string]any{
			"Date":   start.AddDate(0, 0, i).Format("2006-01-02") + "T00:00:00-05:00",
			"Open":   c,
			"High":   c,
			"Low":    c,
			"Close":  c,
			"Volume": 1000000,
		}
	}
	current := 0.0
	if len(closes) > 0 {
		current = closes[len(closes)-1]
	}
	return map[string]any{
		"symbol":         strings.ToUpper(symbol),
		"name":           strings.ToUpper(symbol) + " Inc.",
		"current_price":  current,
		"change_percent": 0.0,
		"market_cap":     "N/A",
		"volume":         1000000,
		"pe_ratio":       "N/A",
		"sector":         "Technology",
		"outlook":        map[string]any{"sentiment": "Neutral", "confidence": 85, "summary": "RSI: 50.0"},
		"indicators": map[string]any{
			"rsi":        50.0,
			"sma_20":     current,
			"macd_diff":  0.0,
			"bb_percent": 0.5,
		},
		"history": history,
	}
}

// ForecastBody builds an /api/predict payload with one point per day from first.
func ForecastBody(symbol string, first time.Time, prices []float64) map[string]any {
	preds := make([]map[string]any, len(prices))
	for i, p := range prices {
		preds[i] = map[string]any{
			"date":            first.AddDate(0, 0, i).Format("2006-01-02"),
			"predicted_price": p,
			"action":          "BUY",
		}
	}
	trend := "Downward"
	if len(prices) > 1 && prices[len(prices)-1] > prices[0] {
		trend = "Upward"
	}
	return map[string]any{
		"symbol":          strings.ToUpper(symbol),
		"prediction_days": len(prices),
		"predictions":     preds,
		"trend":           trend,
	}
}
