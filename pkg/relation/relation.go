// Package relation resolves foreign-key-shaped fields (a single id or an id
// list) into entity records. Referential integrity is never enforced at the
// store layer, so a dangling reference resolves to absence rather than an
// error.
package relation

import "github.com/stageware/propstore/pkg/types"

// Getter is the read surface the resolver needs from a store.
type Getter interface {
	GetByID(collection, id string) (types.Entity, error)
}

// Resolver turns relation fields into resolved entities.
type Resolver struct {
	store Getter
}

// NewResolver creates a Resolver reading from the given store.
func NewResolver(store Getter) *Resolver {
	return &Resolver{store: store}
}

// ResolveOne returns the entity the id references, or nil when the id is
// empty or dangling. An empty id short-circuits without touching the store.
func (r *Resolver) ResolveOne(collection, id string) types.Entity {
	if id == "" {
		return nil
	}
	e, err := r.store.GetByID(collection, id)
	if err != nil {
		return nil
	}
	return e
}

// ResolveMany resolves each id in order and returns the entities in the same
// order as the input id list. Ids that do not resolve are dropped, never
// replaced with nil placeholders. A nil or empty id list yields an empty
// slice.
func (r *Resolver) ResolveMany(collection string, ids []string) []types.Entity {
	out := make([]types.Entity, 0, len(ids))
	for _, id := range ids {
		if e := r.ResolveOne(collection, id); e != nil {
			out = append(out, e)
		}
	}
	return out
}
