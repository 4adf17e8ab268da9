// Package chart draws the dashboard's line and donut charts onto a
// fixed-size 2D surface. Geometry is computed here; the surface only
// strokes, fills and places text.
package chart

import (
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type TextStyle struct {
	Size  float64
	Color drawing.Color
	Align Align
	// Middle centres the text vertically on y instead of using y as the baseline.
	Middle bool
}

// Surface is a fixed-size drawing target with canvas-like path operations.
type Surface interface {
	Size() (width, height int)
	SetStrokeColor(c drawing.Color)
	SetFillColor(c drawing.Color)
	SetLineWidth(w float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadCurveTo(cx, cy, x, y float64)
	Close()
	Stroke()
	Fill()
	FillStroke()
	Text(body string, x, y float64, style TextStyle)
}

var (
	colorPrimary = Hex("#007BFF")
	colorGrid    = Hex("#E8E8E8")
	colorAxis    = Hex("#495057")
	colorStrong  = Hex("#212529")
	colorMuted   = Hex("#6c757d")
	colorWhite   = drawing.ColorWhite
)

// wedgePalette colours wedges that carry no valid colour of their own.
var wedgePalette = []string{"#007BFF", "#28a745", "#ffc107", "#dc3545", "#17a2b8", "#6f42c1"}

// ParseHex parses "#RGB" or "#RRGGBB", with or without the "#".
func ParseHex(s string) (drawing.Color, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return drawing.Color{}, false
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return drawing.Color{}, false
		}
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return drawing.ColorFromHex(hex), true
}

// Hex parses a colour literal, falling back to black when it is invalid.
func Hex(s string) drawing.Color {
	if c, ok := ParseHex(s); ok {
		return c
	}
	return drawing.ColorBlack
}

// wedgeColor is the datum's colour, or the palette entry for position i.
func wedgeColor(s string, i int) drawing.Color {
	if c, ok := ParseHex(s); ok {
		return c
	}
	return Hex(wedgePalette[i%len(wedgePalette)])
}

// blend averages two colours; used where a vertical gradient is flattened.
func blend(a, b drawing.Color) drawing.Color {
	avg := func(x, y uint8) uint8 { return uint8((int(x) + int(y)) / 2) }
	return drawing.Color{R: avg(a.R, b.R), G: avg(a.G, b.G), B: avg(a.B, b.B), A: avg(a.A, b.A)}
}

func alpha(c drawing.Color, a float64) drawing.Color {
	return c.WithAlpha(uint8(math.Round(a * 255)))
}

// segmentsPerTurn controls how finely arcs are flattened into lines.
const segmentsPerTurn = 96

// arc appends line segments from angle from to angle to, clockwise on screen.
func arc(s Surface, cx, cy, r, from, to float64) {
	steps := int(math.Ceil(math.Abs(to-from) / (2 * math.Pi) * segmentsPerTurn))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		a := from + (to-from)*float64(i)/float64(steps)
		s.LineTo(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
}

func circle(s Surface, cx, cy, r float64) {
	s.MoveTo(cx+r, cy)
	arc(s, cx, cy, r, 0, 2*math.Pi)
	s.Close()
}

func rect(s Surface, x, y, w, h float64) {
	s.MoveTo(x, y)
	s.LineTo(x+w, y)
	s.LineTo(x+w, y+h)
	s.LineTo(x, y+h)
	s.Close()
}

func background(s Surface) {
	w, h := s.Size()
	s.SetFillColor(colorWhite)
	rect(s, 0, 0, float64(w), float64(h))
	s.Fill()
}

func noData(s Surface, msg string) {
	w, h := s.Size()
	s.Text(msg, float64(w)/2, float64(h)/2, TextStyle{Size: 16, Color: colorAxis, Align: AlignCenter, Middle: true})
}
