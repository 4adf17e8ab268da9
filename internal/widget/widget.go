// Package widget builds the HTML fragments of the dashboard that are
// not canvas charts: ranked horizontal bars, the age legend and the
// registered versus vaccinated comparison.
package widget

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jwalitptl/vacina-dashboard/internal/aggregate"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
)

const NoDataText = "Nenhum dado disponível"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("widget").ParseFS(templateFS, "templates/*.html"))

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatInt groups thousands the pt-BR way, e.g. 12.345.
func FormatInt(n int) string {
	return printer.Sprintf("%d", n)
}

var barPalette = []struct{ from, to string }{
	{"#007BFF", "#0056b3"},
	{"#28a745", "#1e7e34"},
	{"#ffc107", "#e0a800"},
	{"#17a2b8", "#117a8b"},
	{"#6f42c1", "#5a32a3"},
}

type BarRow struct {
	Rank  int
	Label string
	Value int
	// Width is the bar length as a percentage of the largest value.
	Width      float64
	Background template.CSS
	Delay      float64
}

type BarsView struct {
	Rows      []BarRow
	Empty     bool
	EmptyText string
}

// Bars lays out one row per datum, proportional to the largest value.
func Bars(data []model.ChartDatum) BarsView {
	if len(data) == 0 {
		return BarsView{Empty: true, EmptyText: NoDataText}
	}

	max := 1
	for _, d := range data {
		if d.Value > max {
			max = d.Value
		}
	}

	rows := make([]BarRow, len(data))
	for i, d := range data {
		p := barPalette[i%len(barPalette)]
		rows[i] = BarRow{
			Rank:       i + 1,
			Label:      d.Label,
			Value:      d.Value,
			Width:      float64(d.Value) / float64(max) * 100,
			Background: template.CSS(fmt.Sprintf("linear-gradient(90deg, %s, %s)", p.from, p.to)),
			Delay:      float64(i) * 0.1,
		}
	}
	return BarsView{Rows: rows}
}

type LegendItem struct {
	Label string
	Value int
	Color template.CSS
}

func Legend(data []model.ChartDatum) []LegendItem {
	items := make([]LegendItem, len(data))
	for i, d := range data {
		items[i] = LegendItem{Label: d.Label, Value: d.Value, Color: template.CSS(d.Color)}
	}
	return items
}

type ComparisonBar struct {
	Label     string
	Value     int
	Formatted string
	Width     float64
	Color     template.CSS
}

type ComparisonView struct {
	Registered   ComparisonBar
	Vaccinated   ComparisonBar
	CoverageText string
}

// Comparison scales both bars against the larger of the two counts.
func Comparison(c aggregate.Comparison) ComparisonView {
	max := c.Registered
	if c.Vaccinated > max {
		max = c.Vaccinated
	}
	if max < 1 {
		max = 1
	}

	return ComparisonView{
		Registered: ComparisonBar{
			Label:     "Pessoas Cadastradas",
			Value:     c.Registered,
			Formatted: FormatInt(c.Registered),
			Width:     float64(c.Registered) / float64(max) * 100,
			Color:     "#007BFF",
		},
		Vaccinated: ComparisonBar{
			Label:     "Pessoas Vacinadas",
			Value:     c.Vaccinated,
			Formatted: FormatInt(c.Vaccinated),
			Width:     float64(c.Vaccinated) / float64(max) * 100,
			Color:     "#28a745",
		},
		CoverageText: c.CoverageText() + "% de cobertura",
	}
}

// Render executes the named fragment template.
func Render(w io.Writer, name string, data interface{}) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// HTML renders a fragment for embedding into a page template.
func HTML(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
