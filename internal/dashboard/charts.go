package dashboard

import (
	"fmt"
	"math"
	"strings"
)

const (
	chartWidth   = 960.0
	chartPadding = 24.0
	markerSize   = 6.0
)

// Series is one plotted line. NaN values break the line.
type Series struct {
	Label  string
	Color  string
	Values []float64
}

// HLine is a horizontal reference line.
type HLine struct {
	Label string
	Color string
	Value float64
}

// Marker is a trade event drawn at a row index.
type Marker struct {
	Index int
	Value float64
	Buy   bool
}

// Polyline is a rendered line segment in SVG coordinates.
type Polyline struct {
	Label  string
	Color  string
	Points string
	Dashed bool
}

// Triangle is a rendered trade marker.
type Triangle struct {
	Points string
	Color  string
}

// Chart holds the SVG geometry for one panel.
type Chart struct {
	Title   string
	Width   float64
	Height  float64
	Lines   []Polyline
	Markers []Triangle
	Legend  []Polyline
	YMin    string
	YMax    string
}

type scale struct {
	n          int
	height     float64
	minV, maxV float64
}

func (s scale) x(i int) float64 {
	if s.n <= 1 {
		return chartWidth / 2
	}
	return chartPadding + float64(i)*(chartWidth-2*chartPadding)/float64(s.n-1)
}

func (s scale) y(v float64) float64 {
	return s.height - chartPadding - (v-s.minV)/(s.maxV-s.minV)*(s.height-2*chartPadding)
}

// BuildChart lays out series, reference lines and markers over n rows.
func BuildChart(title string, height float64, n int, series []Series, hlines []HLine, markers []Marker) Chart {
	sc := scale{n: n, height: height, minV: math.Inf(1), maxV: math.Inf(-1)}
	observe := func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		sc.minV = math.Min(sc.minV, v)
		sc.maxV = math.Max(sc.maxV, v)
	}
	for _, s := range series {
		for _, v := range s.Values {
			observe(v)
		}
	}
	for _, h := range hlines {
		observe(h.Value)
	}
	if math.IsInf(sc.minV, 1) {
		sc.minV, sc.maxV = 0, 1
	}
	if sc.maxV == sc.minV {
		sc.minV--
		sc.maxV++
	}

	c := Chart{
		Title:  title,
		Width:  chartWidth,
		Height: height,
		YMin:   formatAxis(sc.minV),
		YMax:   formatAxis(sc.maxV),
	}
	for _, s := range series {
		for _, seg := range segments(s.Values, sc) {
			c.Lines = append(c.Lines, Polyline{Label: s.Label, Color: s.Color, Points: seg})
		}
		c.Legend = append(c.Legend, Polyline{Label: s.Label, Color: s.Color})
	}
	for _, h := range hlines {
		y := sc.y(h.Value)
		line := Polyline{
			Label:  h.Label,
			Color:  h.Color,
			Points: fmt.Sprintf("%.1f,%.1f %.1f,%.1f", chartPadding, y, chartWidth-chartPadding, y),
			Dashed: true,
		}
		c.Lines = append(c.Lines, line)
		c.Legend = append(c.Legend, Polyline{Label: h.Label, Color: h.Color, Dashed: true})
	}
	for _, m := range markers {
		if m.Index < 0 || m.Index >= n || math.IsNaN(m.Value) {
			continue
		}
		c.Markers = append(c.Markers, triangle(sc.x(m.Index), sc.y(m.Value), m.Buy))
	}
	return c
}

func segments(values []float64, sc scale) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for i, v := range values {
		if math.IsNaN(v) {
			flush()
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.1f,%.1f", sc.x(i), sc.y(v))
	}
	flush()
	return out
}

// triangle points up for buys and down for sells.
func triangle(x, y float64, buy bool) Triangle {
	if buy {
		return Triangle{
			Color:  "green",
			Points: fmt.Sprintf("%.1f,%.1f %.1f,%.1f %.1f,%.1f", x-markerSize, y+markerSize, x+markerSize, y+markerSize, x, y-markerSize),
		}
	}
	return Triangle{
		Color:  "red",
		Points: fmt.Sprintf("%.1f,%.1f %.1f,%.1f %.1f,%.1f", x-markerSize, y-markerSize, x+markerSize, y-markerSize, x, y+markerSize),
	}
}

func formatAxis(v float64) string {
	if math.Abs(v) >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
