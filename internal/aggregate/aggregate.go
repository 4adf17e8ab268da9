// Package aggregate reduces registry records into chart-ready summaries.
package aggregate

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/jwalitptl/vacina-dashboard/internal/dates"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
)

const (
	PeriodDays   = 30
	TopVaccines  = 5
	UnknownLabel = "Não informado"
)

type DayCount struct {
	Day   string `json:"day"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DailyCounts buckets events by application day over the window ending today.
// Every day of the window is present, zero-filled, in chronological order.
func DailyCounts(events []model.Vaccination, now time.Time, days int) []DayCount {
	if days <= 0 {
		days = PeriodDays
	}
	today := dates.Day(now)
	start := today.AddDate(0, 0, -(days - 1))

	out := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		key := d.Format(dates.LayoutISO)
		out[i] = DayCount{Day: key, Label: dates.DayMonth(d)}
		index[key] = i
	}

	for _, ev := range events {
		key, err := dates.ISO(ev.DataAplicacao)
		if err != nil {
			continue
		}
		if i, ok := index[key]; ok {
			out[i].Count++
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Series splits counts into parallel label and value slices.
func Series(counts []DayCount) ([]string, []int) {
	labels := make([]string, len(counts))
	values := make([]int, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		values[i] = c.Count
	}
	return labels, values
}

// TopN counts events per vaccine name and keeps the n most frequent.
// Ties keep the order in which names first appeared.
func TopN(events []model.Vaccination, n int) []model.ChartDatum {
	counts := make(map[string]int)
	var order []string
	for _, ev := range events {
		name := ev.VaccineName()
		if name == "" {
			name = UnknownLabel
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	out := make([]model.ChartDatum, 0, len(order))
	for _, name := range order {
		out = append(out, model.ChartDatum{Label: name, Value: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type AgeBucket struct {
	Bracket dates.Bracket `json:"bracket"`
	Label   string        `json:"label"`
	Color   string        `json:"color"`
	Count   int           `json:"count"`
}

type AgeDistribution struct {
	Buckets []AgeBucket `json:"buckets"`
	// Skipped counts records whose birth date could not be parsed.
	Skipped int `json:"skipped"`
}

var bucketStyle = map[dates.Bracket]struct{ label, color string }{
	dates.BracketChild:  {"Crianças (0-12)", "#007BFF"},
	dates.BracketTeen:   {"Adolescentes (13-17)", "#28a745"},
	dates.BracketAdult:  {"Adultos (18-59)", "#ffc107"},
	dates.BracketSenior: {"Idosos (60+)", "#dc3545"},
}

// Ages classifies every patient into one of the four fixed brackets.
func Ages(patients []model.Patient, now time.Time) AgeDistribution {
	dist := AgeDistribution{Buckets: make([]AgeBucket, len(dates.Brackets))}
	index := make(map[dates.Bracket]int, len(dates.Brackets))
	for i, b := range dates.Brackets {
		style := bucketStyle[b]
		dist.Buckets[i] = AgeBucket{Bracket: b, Label: style.label, Color: style.color}
		index[b] = i
	}

	for _, p := range patients {
		age, err := dates.Age(p.DataNascimento, now)
		if err != nil {
			dist.Skipped++
			continue
		}
		dist.Buckets[index[dates.BracketOf(age)]].Count++
	}
	return dist
}

func (d AgeDistribution) Total() int {
	total := 0
	for _, b := range d.Buckets {
		total += b.Count
	}
	return total
}

func (d AgeDistribution) Data() []model.ChartDatum {
	out := make([]model.ChartDatum, len(d.Buckets))
	for i, b := range d.Buckets {
		out[i] = model.ChartDatum{Label: b.Label, Value: b.Count, Color: b.Color}
	}
	return out
}

type Comparison struct {
	Registered int     `json:"registered"`
	Vaccinated int     `json:"vaccinated"`
	Coverage   float64 `json:"coverage"`
}

// Compare counts distinct vaccinated people against the registered total.
func Compare(registered int, events []model.Vaccination) Comparison {
	people := make(map[string]struct{})
	for _, ev := range events {
		if id := ev.PersonID(); id != "" {
			people[id] = struct{}{}
		}
	}

	c := Comparison{Registered: registered, Vaccinated: len(people)}
	if registered > 0 {
		c.Coverage = math.Round(float64(c.Vaccinated)/float64(registered)*1000) / 10
	}
	return c
}

// CoverageText is "0" when nobody is registered, else the one-decimal percentage.
func (c Comparison) CoverageText() string {
	if c.Registered == 0 {
		return "0"
	}
	return strconv.FormatFloat(c.Coverage, 'f', 1, 64)
}
