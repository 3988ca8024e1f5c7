package query

import (
	"sort"
)

// Accessor reads the value of an attribute from an in-memory record.
// Values must use the Go types produced by Coerce for the field's kind.
type Accessor[T any] func(item T, field string) any

// Select evaluates d over items the way the SQL data layer does:
// filter, order (with the id as the final tie-breaker), then limit/offset.
// It returns the selected window and the number of matching items.
func Select[T any](items []T, d *Descriptor, s *Schema, get Accessor[T]) ([]T, int64, error) {
	args, err := s.Validate(d)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, d, args, get) {
			matched = append(matched, item)
		}
	}
	total := int64(len(matched))

	order := OrderWithTieBreaker(d, s)
	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range order {
			c, _ := Compare(get(matched[i], o.Field), get(matched[j], o.Field))
			if c == 0 {
				continue
			}
			if o.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	start := min(d.Offset, len(matched))
	end := len(matched)
	if d.Limit > 0 {
		end = min(start+d.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func matches[T any](item T, d *Descriptor, args [][]any, get Accessor[T]) bool {
	for i, f := range d.Filters {
		op, _ := d.Operator(f)
		if !op.Match(get(item, f.Field), args[i]) {
			return false
		}
	}
	return true
}

// OrderWithTieBreaker returns d.Sort followed by the schema's id in the
// primary direction, unless the id is already sorted on.
func OrderWithTieBreaker(d *Descriptor, s *Schema) []Sort {
	idField := s.ID().Name
	for _, o := range d.Sort {
		if o.Field == idField {
			return d.Sort
		}
	}
	out := make([]Sort, 0, len(d.Sort)+1)
	out = append(out, d.Sort...)
	return append(out, Sort{Field: idField, Direction: d.CursorDirection()})
}
