// Package web holds the HTML pages of the dashboard and the table fragment
// pushed to open screens.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("web").ParseFS(templateFS, "templates/*.html"))

const (
	PageDashboard = "dashboard.html"
	PageScreen    = "screen.html"
	FragmentTable = "screen-table"
)

// Templates returns the page set for gin's HTML renderer.
func Templates() *template.Template {
	return templates
}

// Render executes the named template.
func Render(w io.Writer, name string, data interface{}) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// Nav is the header of every page.
type Nav struct {
	Username string
	Elevated bool
	Current  string
}

type DashboardPage struct {
	Nav
	PeriodChart template.HTML
	AgesChart   template.HTML
	Top         template.HTML
	Legend      template.HTML
	Comparison  template.HTML
	Errors      map[string]string
}

// ScreenPage wraps a listing.PageView of any record type.
type ScreenPage struct {
	Nav
	Screen string
	View   interface{}
	// Error is shown above the table when the records could not be loaded.
	Error string
}
