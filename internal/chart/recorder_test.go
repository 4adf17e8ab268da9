package chart

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

type op struct {
	kind  string
	x, y  float64
	text  string
	color drawing.Color
}

// recorder is a Surface that keeps every call for assertions.
type recorder struct {
	w, h int
	ops  []op
	fill drawing.Color
}

func newRecorder(w, h int) *recorder { return &recorder{w: w, h: h} }

func (r *recorder) Size() (int, int)               { return r.w, r.h }
func (r *recorder) SetStrokeColor(c drawing.Color) {}
func (r *recorder) SetFillColor(c drawing.Color)   { r.fill = c }
func (r *recorder) SetLineWidth(float64)           {}
func (r *recorder) MoveTo(x, y float64)            { r.add(op{kind: "move", x: x, y: y}) }
func (r *recorder) LineTo(x, y float64)            { r.add(op{kind: "line", x: x, y: y}) }
func (r *recorder) QuadCurveTo(_, _, x, y float64) { r.add(op{kind: "quad", x: x, y: y}) }
func (r *recorder) Close()                         { r.add(op{kind: "close"}) }
func (r *recorder) Stroke()                        { r.add(op{kind: "stroke"}) }
func (r *recorder) Fill()                          { r.add(op{kind: "fill", color: r.fill}) }
func (r *recorder) FillStroke()                    { r.add(op{kind: "fillstroke", color: r.fill}) }
func (r *recorder) add(o op)                       { r.ops = append(r.ops, o) }

func (r *recorder) Text(body string, x, y float64, style TextStyle) {
	r.add(op{kind: "text", x: x, y: y, text: body, color: style.Color})
}

func (r *recorder) texts() []string {
	var out []string
	for _, o := range r.ops {
		if o.kind == "text" {
			out = append(out, o.text)
		}
	}
	return out
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) percentLabels() []string {
	var out []string
	for _, t := range r.texts() {
		if strings.HasSuffix(t, "%") {
			out = append(out, t)
		}
	}
	return out
}
