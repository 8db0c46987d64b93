// Package query applies filter, sort, and pagination to a materialized
// entity list. It is stateless and pull-based: callers hand it the output of
// the store's GetAll and receive a paged result plus the pre-pagination
// total, which is what "has more" logic must be computed from.
package query

import (
	"fmt"
	"sort"

	"github.com/stageware/propstore/pkg/types"
)

// Predicate reports whether an entity belongs in the result.
type Predicate func(types.Entity) bool

// Less orders two entities for sorting.
type Less func(a, b types.Entity) bool

// Options describes one query. Zero values mean "no effect": a nil Filter
// keeps every entity, a nil Sort preserves input order, and an Offset or
// Limit of zero or less skips or caps nothing.
type Options struct {
	Filter Predicate
	Sort   Less
	Offset int
	Limit  int
}

// Result is one page of entities plus the total match count before slicing.
type Result struct {
	Items  []types.Entity `json:"items"`
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
}

// Count returns the number of entities in this page.
func (r Result) Count() int { return len(r.Items) }

// IsEmpty reports whether this page has no entities.
func (r Result) IsEmpty() bool { return len(r.Items) == 0 }

// HasMore reports whether matches exist beyond this page.
func (r Result) HasMore() bool { return r.Offset+len(r.Items) < r.Total }

// Run filters, sorts, and paginates items. The filter runs first and Total
// is counted before pagination. Sorting is stable, ties keep their pre-sort
// order, and it operates on a copy so the input slice is never reordered.
func Run(items []types.Entity, opts Options) Result {
	matched := make([]types.Entity, 0, len(items))
	for _, e := range items {
		if opts.Filter == nil || opts.Filter(e) {
			matched = append(matched, e)
		}
	}
	total := len(matched)

	if opts.Sort != nil {
		sort.SliceStable(matched, func(i, j int) bool {
			return opts.Sort(matched[i], matched[j])
		})
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(matched) {
		matched = matched[len(matched):]
	} else {
		matched = matched[offset:]
	}
	// A limit of zero or less means no limit, not zero items.
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	return Result{Items: matched, Total: total, Offset: offset}
}

// ByField returns an ascending comparator on the named field. Two numeric
// values compare numerically; everything else compares as its string form.
// Entities missing the field sort first.
func ByField(field string) Less {
	return func(a, b types.Entity) bool {
		av, aok := a[field]
		bv, bok := b[field]
		if !aok || !bok {
			return !aok && bok
		}
		if an, aIsNum := asFloat(av); aIsNum {
			if bn, bIsNum := asFloat(bv); bIsNum {
				return an < bn
			}
		}
		return fmt.Sprint(av) < fmt.Sprint(bv)
	}
}

// Descending inverts a comparator.
func Descending(less Less) Less {
	return func(a, b types.Entity) bool {
		return less(b, a)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
