package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("chart: unsupported format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Canvas is a Surface backed by a go-chart renderer.
type Canvas struct {
	r      gochart.Renderer
	width  int
	height int
}

func NewCanvas(format Format, width, height int) (*Canvas, error) {
	provider := gochart.SVG
	if format == FormatPNG {
		provider = gochart.PNG
	}

	r, err := provider(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s renderer: %w", format, err)
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load chart font: %w", err)
	}
	r.SetFont(font)

	return &Canvas{r: r, width: width, height: height}, nil
}

func px(v float64) int { return int(math.Round(v)) }

func (c *Canvas) Size() (int, int)                 { return c.width, c.height }
func (c *Canvas) SetStrokeColor(col drawing.Color) { c.r.SetStrokeColor(col) }
func (c *Canvas) SetFillColor(col drawing.Color)   { c.r.SetFillColor(col) }
func (c *Canvas) SetLineWidth(w float64)           { c.r.SetStrokeWidth(w) }
func (c *Canvas) MoveTo(x, y float64)              { c.r.MoveTo(px(x), px(y)) }
func (c *Canvas) LineTo(x, y float64)              { c.r.LineTo(px(x), px(y)) }
func (c *Canvas) QuadCurveTo(cx, cy, x, y float64) { c.r.QuadCurveTo(px(cx), px(cy), px(x), px(y)) }
func (c *Canvas) Close()                           { c.r.Close() }
func (c *Canvas) Stroke()                          { c.r.Stroke() }
func (c *Canvas) Fill()                            { c.r.Fill() }
func (c *Canvas) FillStroke()                      { c.r.FillStroke() }
func (c *Canvas) Save(w io.Writer) error           { return c.r.Save(w) }

func (c *Canvas) Text(body string, x, y float64, style TextStyle) {
	c.r.SetFontSize(style.Size)
	c.r.SetFontColor(style.Color)

	box := c.r.MeasureText(body)
	switch style.Align {
	case AlignCenter:
		x -= float64(box.Width()) / 2
	case AlignRight:
		x -= float64(box.Width())
	}
	if style.Middle {
		y += float64(box.Height()) / 2
	}
	c.r.Text(body, px(x), px(y))
}

// Render draws onto a fresh canvas and writes the encoded image to w.
func Render(w io.Writer, format Format, width, height int, draw func(Surface) error) error {
	canvas, err := NewCanvas(format, width, height)
	if err != nil {
		return err
	}
	if err := draw(canvas); err != nil {
		return err
	}
	if err := canvas.Save(w); err != nil {
		return fmt.Errorf("failed to encode %s chart: %w", format, err)
	}
	return nil
}
