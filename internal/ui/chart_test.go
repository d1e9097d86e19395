package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerDesk/internal/composer"
	"TickerDesk/internal/model"
)

func series(history, forecast int) []composer.Point {
	day := model.NewDate(2024, time.January, 1)
	var h []model.QuotePoint
	for i := 0; i < history; i++ {
		h = append(h, model.QuotePoint{Date: model.Date{Time: day.AddDate(0, 0, i)}, Close: decimal.NewFromInt(int64(100 + i))})
	}
	var f []model.ForecastPoint
	for i := 0; i < forecast; i++ {
		f = append(f, model.ForecastPoint{
			Date:           model.Date{Time: day.AddDate(0, 0, history+i)},
			PredictedPrice: decimal.NewFromInt(int64(100 + history + i)),
		})
	}
	return composer.Compose(h, f)
}

func TestColumns_MarksStitchAndForecast(t *testing.T) {
	cols := columns(series(5, 3), 80)
	require.Len(t, cols, 8)
	assert.False(t, cols[0].predicted)
	assert.True(t, cols[4].stitch)
	assert.True(t, cols[5].predicted)
	assert.Equal(t, 0.0, cols[0].pos)
	assert.Equal(t, 1.0, cols[7].pos)
}

func TestColumns_Downsamples(t *testing.T) {
	cols := columns(series(30, 7), 10)
	require.Len(t, cols, 10)

	stitched := 0
	for _, c := range cols {
		if c.stitch {
			stitched++
		}
	}
	assert.Equal(t, 1, stitched)
	assert.True(t, cols[9].predicted)
}

func TestRenderSeriesChart(t *testing.T) {
	assert.Empty(t, RenderSeriesChart(nil, 40, 5, DefaultTheme))

	out := RenderSeriesChart(series(30, 7), 60, 5, DefaultTheme)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "$136")
	assert.Contains(t, lines[4], "$100")
	assert.Contains(t, lines[5], "Jan 1")
	assert.Contains(t, lines[5], "Feb 6")
}

func TestDateAxis_StitchLabel(t *testing.T) {
	axis := dateAxis(series(30, 7), 50)
	assert.Len(t, []rune(axis), 50)
	assert.True(t, strings.HasPrefix(axis, "Jan 1"))
	assert.Contains(t, axis, "Jan 30")
	assert.True(t, strings.HasSuffix(axis, "Feb 6"))
}
