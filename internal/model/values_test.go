package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-30", "2024-01-30"},
		{"2024-01-30T00:00:00-05:00", "2024-01-30"},
		{"2024-01-30T23:30:00+09:00", "2024-01-30"},
		{"2024-01-30 15:04:05", "2024-01-30"},
		{" 2024-02-01T10:00:00 ", "2024-02-01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}

	_, err := ParseDate("30/01/2024")
	assert.Error(t, err)
}

func TestDate_UnmarshalEpochMillis(t *testing.T) {
	var d Date
	ms := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC).UnixMilli()
	require.NoError(t, json.Unmarshal([]byte(decimal.NewFromInt(ms).String()), &d))
	assert.Equal(t, "2024-03-05", d.String())
	assert.Equal(t, "Mar 5", d.Label())
}

func TestFigure_Unmarshal(t *testing.T) {
	var v struct {
		A Figure `json:"a"`
		B Figure `json:"b"`
		C Figure `json:"c"`
		D Figure `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":1.5e12,"b":"N/A","c":null,"d":"42.5"}`), &v))

	assert.True(t, v.A.Valid)
	assert.True(t, v.A.Decimal.Equal(decimal.RequireFromString("1500000000000")))
	assert.False(t, v.B.Valid)
	assert.False(t, v.C.Valid)
	assert.True(t, v.D.Valid)
	assert.True(t, v.D.Decimal.Equal(decimal.RequireFromString("42.5")))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1500000000000,"b":null,"c":null,"d":42.5}`, string(out))
}

func TestForecastHeading(t *testing.T) {
	up := []ForecastPoint{
		{PredictedPrice: decimal.NewFromInt(10)},
		{PredictedPrice: decimal.NewFromInt(12)},
	}
	tests := []struct {
		name string
		f    Forecast
		want Direction
	}{
		{"explicit direction wins", Forecast{Direction: "down", Trend: "Upward", Predictions: up}, DirectionDown},
		{"trend label", Forecast{Trend: "Upward"}, DirectionUp},
		{"path fallback", Forecast{Predictions: up}, DirectionUp},
		{"flat path is down", Forecast{Predictions: up[:1]}, DirectionDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Heading())
		})
	}
}

func TestPortfolioSnapshot(t *testing.T) {
	p := &PortfolioSnapshot{
		ActiveTraders: []string{"NVDA"},
		TraderPnL:     map[string]decimal.Decimal{"NVDA": decimal.NewFromInt(120), "AMD": decimal.NewFromInt(-40)},
		TraderLogs:    map[string]string{"TSLA": "idle"},
	}
	assert.True(t, p.IsTrading("NVDA"))
	assert.False(t, p.IsTrading("AMD"))
	assert.True(t, p.PnL("AMD").Equal(decimal.NewFromInt(-40)))
	assert.True(t, p.PnL("MSFT").IsZero())
	assert.Equal(t, []string{"AMD", "NVDA", "TSLA"}, p.KnownTraders())

	c := p.Clone()
	c.ActiveTraders[0] = "X"
	c.TraderLogs["TSLA"] = "changed"
	assert.Equal(t, "NVDA", p.ActiveTraders[0])
	assert.Equal(t, "idle", p.TraderLogs["TSLA"])

	var nilSnap *PortfolioSnapshot
	assert.Nil(t, nilSnap.Clone())
}
