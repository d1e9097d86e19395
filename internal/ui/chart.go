package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"TickerDesk/internal/composer"
	"TickerDesk/internal/report"
)

// Block elements for sub-character vertical resolution (1/8 to 8/8).
var blockChars = [9]rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// column is one rendered chart column.
type column struct {
	pos       float64
	predicted bool
	stitch    bool
}

// RenderSeriesChart draws the composed history and forecast as a filled area
// chart. History columns use actual, forecast columns use predicted, and the
// column holding the stitch point is drawn in the marker color.
func RenderSeriesChart(points []composer.Point, width, height int, t Theme) string {
	low, high, ok := composer.Bounds(points)
	if !ok || width <= 0 || height <= 0 {
		return ""
	}

	const axis = 10
	plotWidth := width - axis
	if plotWidth < 4 {
		plotWidth = width
	}
	cols := columns(points, plotWidth)

	totalLevels := height * 8
	scaled := make([]int, len(cols))
	for i, c := range cols {
		s := int(c.pos*float64(totalLevels-1)) + 1
		if s > totalLevels {
			s = totalLevels
		}
		scaled[i] = s
	}

	actual := t.style(t.Primary)
	predicted := t.style(t.Accent)
	marker := t.style(t.Warning)
	muted := t.style(t.Muted)

	rows := make([]string, height)
	for row := 0; row < height; row++ {
		rowBottom := (height - 1 - row) * 8

		var sb strings.Builder
		for i, c := range cols {
			fill := scaled[i] - rowBottom
			if fill <= 0 {
				sb.WriteRune(' ')
				continue
			}
			if fill > 8 {
				fill = 8
			}
			st := actual
			switch {
			case c.stitch:
				st = marker
			case c.predicted:
				st = predicted
			}
			sb.WriteString(st.Render(string(blockChars[fill])))
		}

		label := ""
		switch row {
		case 0:
			label = report.Money(high)
		case height - 1:
			label = report.Money(low)
		}
		if plotWidth != width {
			rows[row] = muted.Render(lipgloss.NewStyle().Width(axis).Render(label)) + sb.String()
		} else {
			rows[row] = sb.String()
		}
	}

	out := strings.Join(rows, "\n")
	if labels := dateAxis(points, len(cols)); labels != "" {
		pad := ""
		if plotWidth != width {
			pad = strings.Repeat(" ", axis)
		}
		out += "\n" + muted.Render(pad+labels)
	}
	return out
}

// columns maps the points onto n columns. With more points than columns each
// column shows the last point of its bucket.
func columns(points []composer.Point, n int) []column {
	low, high, _ := composer.Bounds(points)
	if len(points) < n {
		n = len(points)
	}
	out := make([]column, n)
	bucket := float64(len(points)) / float64(n)
	for i := 0; i < n; i++ {
		start := int(float64(i) * bucket)
		end := int(float64(i+1) * bucket)
		if end > len(points) {
			end = len(points)
		}
		if end <= start {
			end = start + 1
		}
		p := points[end-1]
		v := p.Actual
		if !v.Valid {
			v = p.Predicted
		}
		c := column{pos: composer.Position(v.Decimal, low, high), predicted: !p.Actual.Valid}
		for _, q := range points[start:end] {
			if q.IsStitch() {
				c.stitch = true
			}
		}
		out[i] = c
	}
	return out
}

// dateAxis places the first, stitch and last labels under the chart.
func dateAxis(points []composer.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}
	line := []rune(strings.Repeat(" ", width))
	put := func(at int, label string) {
		r := []rune(label)
		if at+len(r) > width {
			at = width - len(r)
		}
		if at < 0 {
			return
		}
		copy(line[at:], r)
	}
	put(0, points[0].Label)
	if i := composer.StitchIndex(points); i > 0 && i < len(points)-1 {
		put(i*width/len(points), points[i].Label)
	}
	last := points[len(points)-1].Label
	put(width-len([]rune(last)), last)
	return string(line)
}
