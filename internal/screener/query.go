// Package screener turns the screener form into the query sent to the service.
package screener

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names one screener filter. The value is also its query parameter.
type Field string

const (
	MinPrice     Field = "min_price"
	MaxPrice     Field = "max_price"
	MinMarketCap Field = "min_market_cap"
	MaxMarketCap Field = "max_market_cap"
	MinVolume    Field = "min_volume"
	MaxVolume    Field = "max_volume"
	MinRSI       Field = "min_rsi"
	MaxRSI       Field = "max_rsi"
	MACDSignal   Field = "macd_signal"
	Sector       Field = "sector"
)

// Fields is the form order.
var Fields = []Field{
	MinPrice, MaxPrice,
	MinMarketCap, MaxMarketCap,
	MinVolume, MaxVolume,
	MinRSI, MaxRSI,
	MACDSignal, Sector,
}

// Sectors are the sector choices offered by the form.
var Sectors = []string{
	"Technology",
	"Healthcare",
	"Financial Services",
	"Consumer Cyclical",
	"Consumer Defensive",
	"Communication Services",
	"Industrials",
	"Energy",
	"Utilities",
	"Real Estate",
	"Basic Materials",
}

// MACD bias choices; empty means any.
const (
	MACDBullish = "bullish"
	MACDBearish = "bearish"
)

// billion converts market cap bounds typed in billions to currency units.
var billion = decimal.New(1, 9)

// Filters is the raw text of the screener form. Market cap bounds are in
// billions.
type Filters struct {
	MinPrice     string
	MaxPrice     string
	MinMarketCap string
	MaxMarketCap string
	MinVolume    string
	MaxVolume    string
	MinRSI       string
	MaxRSI       string
	MACDSignal   string
	Sector       string
}

func (f *Filters) ref(field Field) *string {
	switch field {
	case MinPrice:
		return &f.MinPrice
	case MaxPrice:
		return &f.MaxPrice
	case MinMarketCap:
		return &f.MinMarketCap
	case MaxMarketCap:
		return &f.MaxMarketCap
	case MinVolume:
		return &f.MinVolume
	case MaxVolume:
		return &f.MaxVolume
	case MinRSI:
		return &f.MinRSI
	case MaxRSI:
		return &f.MaxRSI
	case MACDSignal:
		return &f.MACDSignal
	case Sector:
		return &f.Sector
	}
	return nil
}

// Set stores the raw text of one field.
func (f *Filters) Set(field Field, value string) error {
	p := f.ref(field)
	if p == nil {
		return fmt.Errorf("unknown screener field %q", field)
	}
	*p = value
	return nil
}

// Get returns the raw text of one field.
func (f Filters) Get(field Field) string {
	if p := f.ref(field); p != nil {
		return *p
	}
	return ""
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	for _, field := range Fields {
		if strings.TrimSpace(f.Get(field)) != "" {
			return false
		}
	}
	return true
}

// Label is the form caption of a field.
func (field Field) Label() string {
	switch field {
	case MinPrice:
		return "Min price"
	case MaxPrice:
		return "Max price"
	case MinMarketCap:
		return "Min market cap (B)"
	case MaxMarketCap:
		return "Max market cap (B)"
	case MinVolume:
		return "Min volume"
	case MaxVolume:
		return "Max volume"
	case MinRSI:
		return "Min RSI"
	case MaxRSI:
		return "Max RSI"
	case MACDSignal:
		return "MACD signal"
	case Sector:
		return "Sector"
	}
	return string(field)
}

// Query builds the screener query. Blank fields are left out and market cap
// bounds are scaled to currency units; every other value is sent as typed.
// Range semantics are left to the service, so only numeric shape is checked.
func Query(f Filters) (url.Values, error) {
	q := url.Values{}
	for _, field := range Fields {
		raw := strings.TrimSpace(f.Get(field))
		if raw == "" {
			continue
		}
		switch field {
		case Sector:
			q.Set(string(field), raw)
		case MACDSignal:
			v := strings.ToLower(raw)
			if v != MACDBullish && v != MACDBearish {
				return nil, fmt.Errorf("%s: must be %q or %q, got %q", field, MACDBullish, MACDBearish, raw)
			}
			q.Set(string(field), v)
		case MinMarketCap, MaxMarketCap:
			n, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", field, raw)
			}
			q.Set(string(field), n.Mul(billion).String())
		default:
			if _, err := decimal.NewFromString(raw); err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", field, raw)
			}
			q.Set(string(field), raw)
		}
	}
	return q, nil
}
