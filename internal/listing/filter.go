package listing

import "strings"

// Filter is the user's current text query plus per-field values keyed by
// field name. Empty values match everything.
type Filter struct {
	Text   string            `json:"q"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (f Filter) query() string {
	return strings.TrimSpace(Fold(f.Text))
}

func (f Filter) value(name string) string {
	if f.Fields == nil {
		return ""
	}
	return f.Fields[name]
}

func (f Filter) clone() Filter {
	out := Filter{Text: f.Text}
	if len(f.Fields) > 0 {
		out.Fields = make(map[string]string, len(f.Fields))
		for k, v := range f.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// Field is one dropdown or text box next to the main search input.
type Field[T any] struct {
	Name  string
	Match func(rec T, value string) bool
	// Gated fields exist only for elevated sessions and are ignored otherwise.
	Gated bool
}

// Exact matches when get(rec) equals the selected value.
func Exact[T any](get func(T) string) func(T, string) bool {
	return func(rec T, value string) bool {
		return get(rec) == value
	}
}

// Substring matches value anywhere in get(rec), ignoring case and accents.
func Substring[T any](get func(T) string) func(T, string) bool {
	return func(rec T, value string) bool {
		return Contains(get(rec), value)
	}
}

// active reports whether any predicate would narrow the set.
func (s *Screen[T]) active(f Filter, elevated bool) bool {
	if f.query() != "" {
		return true
	}
	for _, field := range s.Fields {
		if field.Gated && !elevated {
			continue
		}
		if f.value(field.Name) != "" {
			return true
		}
	}
	return false
}

func (s *Screen[T]) matches(rec T, f Filter, elevated bool) bool {
	if q := f.query(); q != "" && s.Text != nil {
		hit := false
		for _, text := range s.Text(rec) {
			if text != "" && Contains(text, q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, field := range s.Fields {
		if field.Gated && !elevated {
			continue
		}
		v := f.value(field.Name)
		if v == "" {
			continue
		}
		if !field.Match(rec, v) {
			return false
		}
	}
	return true
}

func (s *Screen[T]) filter(all []T, f Filter, elevated bool) []T {
	out := make([]T, 0, len(all))
	for _, rec := range all {
		if s.matches(rec, f, elevated) {
			out = append(out, rec)
		}
	}
	return out
}
