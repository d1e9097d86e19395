package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"TickerDesk/internal/model"
)

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// HTTPGateway implements Gateway over the service's JSON API.
type HTTPGateway struct {
	BaseURL string
	Client  *http.Client
	log     zerolog.Logger
}

// NewHTTPGateway creates a gateway with optional proxy support.
func NewHTTPGateway(baseURL string, timeout time.Duration, proxyURL string, log zerolog.Logger) *HTTPGateway {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPGateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		log: log.With().Str("component", "gateway").Logger(),
	}
}

func (g *HTTPGateway) Name() string { return "http" }

// Stock fetches quote, history and indicators. Any non-2xx answer, or a
// payload without history, means the symbol is unknown.
func (g *HTTPGateway) Stock(ctx context.Context, symbol string) (*model.StockData, error) {
	sym := model.NormalizeSymbol(symbol)
	var data model.StockData
	if err := g.do(ctx, http.MethodGet, "/api/stock/"+url.PathEscape(sym), nil, &data); err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%s: %w", sym, ErrNotFound)
		}
		return nil, err
	}
	if len(data.History) == 0 {
		return nil, fmt.Errorf("%s: %w", sym, ErrNotFound)
	}
	return &data, nil
}

func (g *HTTPGateway) Forecast(ctx context.Context, symbol string) (*model.Forecast, error) {
	var f model.Forecast
	if err := g.do(ctx, http.MethodGet, "/api/predict/"+url.PathEscape(model.NormalizeSymbol(symbol)), nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Screen runs the screener with an already-built query.
func (g *HTTPGateway) Screen(ctx context.Context, query url.Values) ([]model.ScreenerRow, error) {
	var rows []model.ScreenerRow
	if err := g.do(ctx, http.MethodGet, "/api/screener", query, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.ScreenerRow{}
	}
	return rows, nil
}

func (g *HTTPGateway) Backtest(ctx context.Context, symbol string) (*model.BacktestReport, error) {
	var r model.BacktestReport
	if err := g.do(ctx, http.MethodGet, "/api/backtest/"+url.PathEscape(model.NormalizeSymbol(symbol)), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (g *HTTPGateway) Portfolio(ctx context.Context) (*model.PortfolioSnapshot, error) {
	var p model.PortfolioSnapshot
	if err := g.do(ctx, http.MethodGet, "/api/portfolio", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *HTTPGateway) StartTrader(ctx context.Context, symbol string) error {
	return g.do(ctx, http.MethodPost, "/api/trader/start/"+url.PathEscape(model.NormalizeSymbol(symbol)), nil, nil)
}

func (g *HTTPGateway) StopTrader(ctx context.Context, symbol string) error {
	return g.do(ctx, http.MethodPost, "/api/trader/stop/"+url.PathEscape(model.NormalizeSymbol(symbol)), nil, nil)
}

// ResetPortfolio sets the cash balance and clears positions and bots.
func (g *HTTPGateway) ResetPortfolio(ctx context.Context, amount decimal.Decimal) error {
	return g.do(ctx, http.MethodPost, "/api/portfolio/reset", url.Values{"amount": {amount.String()}}, nil)
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, query url.Values, out any) error {
	op := method + " " + path
	endpoint := g.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := g.Client.Do(req)
	if err != nil {
		g.log.Warn().Err(err).Str("request_id", reqID).Str("op", op).Msg("request failed")
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	g.log.Debug().
		Str("request_id", reqID).
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("remote call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", op, err)
	}
	return nil
}
