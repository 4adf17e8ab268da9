package listing

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jwalitptl/vacina-dashboard/internal/dates"
)

// SortKeys tells the controller how to order one record type. Any of the
// accessors may be nil when the entity has no such field.
type SortKeys[T any] struct {
	CreatedAt func(T) string
	ID        func(T) int64
	Name      func(T) string
}

type sortKey struct {
	created    int64
	hasCreated bool
	id         int64
	name       string
}

const (
	tierCreated = iota
	tierID
	tierName
)

// tier groups records by their strongest key, so records with a creation
// time always precede id-only ones, which precede the rest.
func (k sortKey) tier() int {
	switch {
	case k.hasCreated:
		return tierCreated
	case k.id != 0:
		return tierID
	default:
		return tierName
	}
}

// Sort orders recs newest first, falling back to the highest id and then to
// the name in pt-BR collation order. Equal records keep their relative order.
func (k SortKeys[T]) Sort(recs []T) {
	keys := make([]sortKey, len(recs))
	for i, rec := range recs {
		if k.CreatedAt != nil {
			if t, err := dates.Timestamp(k.CreatedAt(rec)); err == nil {
				keys[i].created = t.UnixNano()
				keys[i].hasCreated = true
			}
		}
		if k.ID != nil {
			keys[i].id = k.ID(rec)
		}
		if k.Name != nil {
			keys[i].name = k.Name(rec)
		}
	}

	col := collate.New(language.BrazilianPortuguese, collate.Loose)
	idx := make([]int, len(recs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		x, y := keys[idx[a]], keys[idx[b]]
		if tx, ty := x.tier(), y.tier(); tx != ty {
			return tx < ty
		}
		switch x.tier() {
		case tierCreated:
			return x.created > y.created
		case tierID:
			return x.id > y.id
		default:
			return col.CompareString(x.name, y.name) < 0
		}
	})

	sorted := make([]T, len(recs))
	for i, j := range idx {
		sorted[i] = recs[j]
	}
	copy(recs, sorted)
}
