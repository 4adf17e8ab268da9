package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jwalitptl/vacina-dashboard/internal/model"
)

const (
	NoDataText     = "Sem dados"
	PatientCaption = "pacientes"

	pieMargin       = 30.0
	labelMinShare   = 5.0
	labelRadiusDiv  = 1.6
	innerRadiusRate = 0.5
	separatorWidth  = 4.0
)

type Wedge struct {
	Label string  `json:"label"`
	Value int     `json:"value"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	// Share is the wedge's percentage of the total.
	Share   float64 `json:"share"`
	Labeled bool    `json:"labeled"`
}

type PieResult struct {
	Total  int     `json:"total"`
	Wedges []Wedge `json:"wedges"`
	NoData bool    `json:"noData"`
}

// ShareText formats a percentage with one decimal, e.g. "33.3%".
func ShareText(share float64) string {
	return fmt.Sprintf("%.1f%%", share)
}

// DrawPie draws a donut chart starting at 12 o'clock and going clockwise.
// A zero total draws only the no-data message.
func DrawPie(s Surface, data []model.ChartDatum, caption string) PieResult {
	background(s)

	total := 0
	for _, d := range data {
		total += d.Value
	}
	if total == 0 {
		noData(s, NoDataText)
		return PieResult{NoData: true}
	}

	w, h := s.Size()
	cx, cy := float64(w)/2, float64(h)/2
	radius := math.Min(cx, cy) - pieMargin

	result := PieResult{Total: total, Wedges: make([]Wedge, 0, len(data))}
	start := -math.Pi / 2
	for i, d := range data {
		sweep := float64(d.Value) / float64(total) * 2 * math.Pi
		wedge := Wedge{
			Label: d.Label,
			Value: d.Value,
			Start: start,
			End:   start + sweep,
			Share: float64(d.Value) / float64(total) * 100,
		}

		if d.Value > 0 {
			s.SetFillColor(wedgeColor(d.Color, i))
			s.SetStrokeColor(colorWhite)
			s.SetLineWidth(separatorWidth)
			s.MoveTo(cx, cy)
			arc(s, cx, cy, radius, wedge.Start, wedge.End)
			s.Close()
			s.FillStroke()
		}

		if wedge.Share > labelMinShare {
			mid := start + sweep/2
			tx := cx + radius/labelRadiusDiv*math.Cos(mid)
			ty := cy + radius/labelRadiusDiv*math.Sin(mid)
			s.Text(ShareText(wedge.Share), tx, ty, TextStyle{Size: 16, Color: colorWhite, Align: AlignCenter, Middle: true})
			wedge.Labeled = true
		}

		result.Wedges = append(result.Wedges, wedge)
		start += sweep
	}

	s.SetFillColor(colorWhite)
	circle(s, cx, cy, radius*innerRadiusRate)
	s.Fill()

	s.Text(strconv.Itoa(total), cx, cy-8, TextStyle{Size: 20, Color: colorStrong, Align: AlignCenter, Middle: true})
	s.Text(caption, cx, cy+12, TextStyle{Size: 12, Color: colorMuted, Align: AlignCenter, Middle: true})

	return result
}
