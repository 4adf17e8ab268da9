package chart

import (
	"errors"
	"math"
	"strconv"
)

const (
	linePadding       = 60.0
	linePaddingTop    = 40.0
	linePaddingBottom = 50.0
	gridIntervals     = 5
	maxXLabels        = 8
)

var ErrLengthMismatch = errors.New("chart: labels and values differ in length")

type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value int     `json:"value"`
}

type LineResult struct {
	// Max is the top of the y axis, a multiple of five.
	Max          int     `json:"max"`
	Points       []Point `json:"points"`
	LabelIndexes []int   `json:"labelIndexes"`
	NoData       bool    `json:"noData"`
}

// AxisMax rounds the largest value up to a multiple of five, never below five.
func AxisMax(values []int) int {
	max := 1
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return int(math.Ceil(float64(max)/5)) * 5
}

// LabelStep shows roughly eight x labels regardless of series length.
func LabelStep(n int) int {
	if n <= 0 {
		return 1
	}
	return int(math.Ceil(float64(n) / maxXLabels))
}

// DrawLine draws a smoothed line chart with gridlines, a shaded area and point markers.
func DrawLine(s Surface, labels []string, values []int) (LineResult, error) {
	if len(labels) != len(values) {
		return LineResult{}, ErrLengthMismatch
	}

	background(s)
	if len(values) == 0 {
		noData(s, NoDataText)
		return LineResult{NoData: true}, nil
	}

	w, h := s.Size()
	width, height := float64(w), float64(h)
	graphW := width - linePadding*2
	graphH := height - linePaddingTop - linePaddingBottom
	bottom := height - linePaddingBottom
	roundedMax := AxisMax(values)

	s.SetStrokeColor(colorGrid)
	s.SetLineWidth(1)
	for i := 0; i <= gridIntervals; i++ {
		y := linePaddingTop + graphH/gridIntervals*float64(i)
		s.MoveTo(linePadding, y)
		s.LineTo(width-linePadding, y)
		s.Stroke()

		value := math.Round(float64(roundedMax) - float64(roundedMax)/gridIntervals*float64(i))
		s.Text(strconv.Itoa(int(value)), linePadding-15, y, TextStyle{Size: 13, Color: colorAxis, Align: AlignRight, Middle: true})
	}

	s.SetStrokeColor(colorAxis)
	s.SetLineWidth(2)
	s.MoveTo(linePadding, linePaddingTop)
	s.LineTo(linePadding, bottom)
	s.LineTo(width-linePadding, bottom)
	s.Stroke()

	span := len(values) - 1
	if span == 0 {
		span = 1
	}
	stepX := graphW / float64(span)

	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{
			X:     linePadding + stepX*float64(i),
			Y:     bottom - float64(v)/float64(roundedMax)*graphH,
			Value: v,
		}
	}

	s.SetFillColor(blend(alpha(colorPrimary, 0.3), alpha(colorPrimary, 0.05)))
	s.MoveTo(points[0].X, bottom)
	for _, p := range points {
		s.LineTo(p.X, p.Y)
	}
	s.LineTo(points[len(points)-1].X, bottom)
	s.Close()
	s.Fill()

	s.SetStrokeColor(colorPrimary)
	s.SetLineWidth(3)
	s.MoveTo(points[0].X, points[0].Y)
	for i := 0; i < len(points)-1; i++ {
		xc := (points[i].X + points[i+1].X) / 2
		yc := (points[i].Y + points[i+1].Y) / 2
		s.QuadCurveTo(points[i].X, points[i].Y, xc, yc)
	}
	last := points[len(points)-1]
	s.LineTo(last.X, last.Y)
	s.Stroke()

	for _, p := range points {
		s.SetFillColor(alpha(colorPrimary, 0.2))
		circle(s, p.X, p.Y, 8)
		s.Fill()

		s.SetFillColor(colorPrimary)
		s.SetStrokeColor(colorWhite)
		s.SetLineWidth(2.5)
		circle(s, p.X, p.Y, 5)
		s.FillStroke()
	}

	step := LabelStep(len(labels))
	var shown []int
	for i, label := range labels {
		if i%step == 0 || i == len(labels)-1 {
			s.Text(label, linePadding+stepX*float64(i), bottom+24, TextStyle{Size: 12, Color: colorAxis, Align: AlignCenter})
			shown = append(shown, i)
		}
	}

	return LineResult{Max: roundedMax, Points: points, LabelIndexes: shown}, nil
}
