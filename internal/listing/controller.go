// Package listing filters, sorts and paginates an in-memory record set the
// way the registry's list pages do. A Controller holds the state of one
// screen for one session.
package listing

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/vacina-dashboard/internal/model"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

// Column is one table column. Gated columns are shown to elevated sessions only.
type Column struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Gated bool   `json:"-"`
}

type Messages struct {
	// Noun ends the pagination info, as in "Mostrando 1 a 10 de 23 pacientes".
	Noun string
	// FoundFormat receives the number of filtered records.
	FoundFormat string
	NotFound    string
	Empty       string
}

// Screen describes one list page.
type Screen[T model.Record] struct {
	Name     string
	Title    string
	PageSize int
	// Elevated screens are refused to non-elevated sessions.
	Elevated bool
	Text     func(T) []string
	Fields   []Field[T]
	Columns  []Column
	Cells    func(T) map[string]string
	Sort     SortKeys[T]
	Defaults func(elevated bool) Filter
	Messages Messages
}

func (s *Screen[T]) defaults(elevated bool) Filter {
	if s.Defaults == nil {
		return Filter{}
	}
	return s.Defaults(elevated).clone()
}

func (s *Screen[T]) columns(elevated bool) []Column {
	out := make([]Column, 0, len(s.Columns))
	for _, col := range s.Columns {
		if col.Gated && !elevated {
			continue
		}
		out = append(out, col)
	}
	return out
}

// Loader fetches the full record set of a screen.
type Loader[T any] func(ctx context.Context) ([]T, error)

type Row struct {
	Key   string   `json:"key"`
	Cells []string `json:"cells"`
}

// PageView is everything needed to draw the current page of a screen.
type PageView[T any] struct {
	Screen         string   `json:"screen"`
	Title          string   `json:"title"`
	Elevated       bool     `json:"elevated"`
	Columns        []Column `json:"columns"`
	Rows           []Row    `json:"rows"`
	Records        []T      `json:"records"`
	Filter         Filter   `json:"filter"`
	Filtering      bool     `json:"filtering"`
	Result         string   `json:"result,omitempty"`
	HasResults     bool     `json:"hasResults"`
	Page           int      `json:"page"`
	TotalPages     int      `json:"totalPages"`
	Total          int      `json:"total"`
	From           int      `json:"from"`
	To             int      `json:"to"`
	Info           string   `json:"info,omitempty"`
	ShowPagination bool     `json:"showPagination"`
	Buttons        []Button `json:"buttons,omitempty"`
	PrevDisabled   bool     `json:"prevDisabled"`
	NextDisabled   bool     `json:"nextDisabled"`
	Empty          bool     `json:"empty"`
	EmptyText      string   `json:"emptyText,omitempty"`
}

type Controller[T model.Record] struct {
	mu       sync.Mutex
	screen   *Screen[T]
	load     Loader[T]
	elevated bool

	loaded   bool
	all      []T
	filtered []T
	filter   Filter
	page     int
}

// New creates a controller. elevated is fixed for the controller's lifetime.
func New[T model.Record](screen *Screen[T], elevated bool, load Loader[T]) *Controller[T] {
	return &Controller[T]{
		screen:   screen,
		load:     load,
		elevated: elevated,
		filter:   screen.defaults(elevated),
		page:     1,
	}
}

func (c *Controller[T]) Elevated() bool { return c.elevated }

func (c *Controller[T]) Screen() *Screen[T] { return c.screen }

// Loaded reports whether a record set has been received yet.
func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Load replaces the record set and reapplies the current filter.
func (c *Controller[T]) Load(recs []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replace(recs)
}

func (c *Controller[T]) replace(recs []T) {
	all := make([]T, len(recs))
	copy(all, recs)
	c.screen.Sort.Sort(all)
	c.all = all
	c.loaded = true
	c.refilter()
	if total := TotalPages(len(c.filtered), c.screen.PageSize); c.page > total {
		c.page = total
	}
	if c.page < 1 {
		c.page = 1
	}
}

func (c *Controller[T]) refilter() {
	c.filtered = c.screen.filter(c.all, c.filter, c.elevated)
}

// Reload fetches the records again. On failure the previous records stay,
// except for a malformed payload, which empties the screen.
func (c *Controller[T]) Reload(ctx context.Context) error {
	if c.load == nil {
		return apperrors.Internal(fmt.Errorf("no loader for %s", c.screen.Name))
	}
	recs, err := c.load(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrMalformed) {
			c.Load(nil)
		}
		return fmt.Errorf("failed to load %s: %w", c.screen.Name, err)
	}
	c.Load(recs)
	return nil
}

// Ensure loads the records once.
func (c *Controller[T]) Ensure(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}
	return c.Reload(ctx)
}

// ApplyFilter replaces the filter and returns to the first page.
func (c *Controller[T]) ApplyFilter(f Filter) PageView[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f.clone()
	c.page = 1
	c.refilter()
	return c.view()
}

// ClearFilter restores the screen's default filter and returns to the first page.
func (c *Controller[T]) ClearFilter() PageView[T] {
	return c.ApplyFilter(c.screen.defaults(c.elevated))
}

func (c *Controller[T]) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.clone()
}

// GoTo moves to page n. Pages outside 1..TotalPages are ignored.
func (c *Controller[T]) GoTo(n int) (PageView[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := TotalPages(len(c.filtered), c.screen.PageSize)
	if n < 1 || n > total || n == c.page {
		return c.view(), false
	}
	c.page = n
	return c.view(), true
}

func (c *Controller[T]) Next() (PageView[T], bool) {
	return c.GoTo(c.Page() + 1)
}

func (c *Controller[T]) Prev() (PageView[T], bool) {
	return c.GoTo(c.Page() - 1)
}

func (c *Controller[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller[T]) View() PageView[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// Find returns the loaded record with the given key.
func (c *Controller[T]) Find(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.all {
		if rec.Key() == key {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Remove drops a record after it was deleted upstream.
func (c *Controller[T]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, rec := range c.all {
		if rec.Key() != key {
			continue
		}
		all := make([]T, 0, len(c.all)-1)
		all = append(all, c.all[:i]...)
		all = append(all, c.all[i+1:]...)
		c.replace(all)
		return true
	}
	return false
}

func (c *Controller[T]) view() PageView[T] {
	s := c.screen
	total := len(c.filtered)
	pages := TotalPages(total, s.PageSize)

	v := PageView[T]{
		Screen:     s.Name,
		Title:      s.Title,
		Elevated:   c.elevated,
		Columns:    s.columns(c.elevated),
		Rows:       []Row{},
		Records:    []T{},
		Filter:     c.filter.clone(),
		Page:       c.page,
		TotalPages: pages,
		Total:      total,
	}

	if s.active(c.filter, c.elevated) {
		v.Filtering = true
		if total > 0 {
			v.HasResults = true
			v.Result = fmt.Sprintf(s.Messages.FoundFormat, total)
		} else {
			v.Result = s.Messages.NotFound
		}
	}

	if total == 0 {
		v.Empty = true
		v.EmptyText = s.Messages.Empty
		v.PrevDisabled = true
		v.NextDisabled = true
		return v
	}

	start, end := Bounds(c.page, s.PageSize, total)
	v.Records = append(v.Records, c.filtered[start:end]...)
	for _, rec := range v.Records {
		v.Rows = append(v.Rows, c.row(rec, v.Columns))
	}

	v.From = start + 1
	v.To = end
	v.Info = fmt.Sprintf("Mostrando %d a %d de %d %s", v.From, v.To, total, s.Messages.Noun)
	v.PrevDisabled = c.page <= 1
	v.NextDisabled = c.page >= pages
	if pages > 1 {
		v.ShowPagination = true
		v.Buttons = Buttons(c.page, pages)
	}
	return v
}

func (c *Controller[T]) row(rec T, cols []Column) Row {
	r := Row{Key: rec.Key(), Cells: make([]string, len(cols))}
	if c.screen.Cells == nil {
		return r
	}
	cells := c.screen.Cells(rec)
	for i, col := range cols {
		r.Cells[i] = cells[col.Name]
	}
	return r
}
