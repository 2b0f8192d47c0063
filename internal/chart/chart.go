// Package chart renders the per-category breakdown as a pie chart.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"expensetracker/internal/core"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

const (
	DefaultWidth  = 5 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// Palette holds one color per category, in category order.
var Palette = []string{"#3b82f6", "#ef4444", "#f59e0b", "#10b981", "#8b5cf6"}

var emptyColor = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// CategoryColor returns the palette entry for the category at index i.
func CategoryColor(i int) color.RGBA {
	return hexColor(Palette[i%len(Palette)])
}

func hexColor(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return emptyColor
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Slice is one wedge of the pie.
type Slice struct {
	Label string
	Value float64
	Color color.Color
}

// Pie draws wedges clockwise from twelve o'clock, in slice order.
type Pie struct {
	Slices []Slice
	// Segments per full turn used to approximate arcs.
	Segments int
}

func (p *Pie) total() float64 {
	var t float64
	for _, s := range p.Slices {
		if s.Value > 0 {
			t += s.Value
		}
	}
	return t
}

// Plot implements plot.Plotter.
func (p *Pie) Plot(c draw.Canvas, _ *plot.Plot) {
	cx := (c.Min.X + c.Max.X) / 2
	cy := (c.Min.Y + c.Max.Y) / 2
	radius := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) / 2
	center := vg.Point{X: cx, Y: cy}

	segments := p.Segments
	if segments <= 0 {
		segments = 180
	}

	total := p.total()
	if total == 0 {
		c.FillPolygon(emptyColor, arc(center, radius, math.Pi/2, math.Pi/2-2*math.Pi, segments, false))
		return
	}

	start := math.Pi / 2
	for _, s := range p.Slices {
		if s.Value <= 0 {
			continue
		}
		sweep := 2 * math.Pi * s.Value / total
		end := start - sweep
		n := int(math.Ceil(float64(segments) * sweep / (2 * math.Pi)))
		full := sweep >= 2*math.Pi-1e-9
		c.FillPolygon(s.Color, arc(center, radius, start, end, n, !full))
		start = end
	}
}

func arc(center vg.Point, r vg.Length, from, to float64, n int, withCenter bool) []vg.Point {
	if n < 1 {
		n = 1
	}
	pts := make([]vg.Point, 0, n+2)
	if withCenter {
		pts = append(pts, center)
	}
	for i := 0; i <= n; i++ {
		a := from + (to-from)*float64(i)/float64(n)
		pts = append(pts, vg.Point{
			X: center.X + r*vg.Length(math.Cos(a)),
			Y: center.Y + r*vg.Length(math.Sin(a)),
		})
	}
	return pts
}

type swatch struct{ color color.Color }

// Thumbnail implements plot.Thumbnailer.
func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

// Slices converts category totals into pie slices using the fixed palette.
func Slices(totals []core.CategoryTotal) []Slice {
	out := make([]Slice, len(totals))
	for i, t := range totals {
		out[i] = Slice{Label: t.Category.String(), Value: t.Amount.Float(), Color: CategoryColor(i)}
	}
	return out
}

// New builds the plot for the given totals. Every category appears in the
// legend, including those with no spending.
func New(totals []core.CategoryTotal, title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Legend.Top = true

	pie := &Pie{Slices: Slices(totals)}
	p.Add(pie)
	for _, s := range pie.Slices {
		p.Legend.Add(s.Label, swatch{color: s.Color})
	}
	return p
}

// Render writes the chart in the given format.
func Render(w io.Writer, totals []core.CategoryTotal, format Format, width, height vg.Length) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	p := New(totals, "Expenses by category")
	wt, err := p.WriterTo(width, height, string(format))
	if err != nil {
		return fmt.Errorf("create %s writer: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s chart: %w", format, err)
	}
	return nil
}

// Bytes renders the chart into memory.
func Bytes(totals []core.CategoryTotal, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, totals, format, 0, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
