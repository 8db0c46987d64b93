package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageware/propstore/pkg/store"
	"github.com/stageware/propstore/pkg/types"
)

func newStoreWith(t *testing.T, collection string, ids ...string) *store.Store {
	t.Helper()
	s, err := store.New(store.Options{})
	require.NoError(t, err)
	for _, id := range ids {
		s.Create(collection, types.Entity{types.FieldID: id})
	}
	return s
}

func TestResolveOne(t *testing.T) {
	s := newStoreWith(t, "Restaurant", "r1")
	r := NewResolver(s)

	resolved := r.ResolveOne("Restaurant", "r1")
	require.NotNil(t, resolved)
	assert.Equal(t, "r1", resolved.ID())

	assert.Nil(t, r.ResolveOne("Restaurant", "dangling"))
	assert.Nil(t, r.ResolveOne("Unknown", "r1"))
}

func TestResolveOneEmptyIDShortCircuits(t *testing.T) {
	r := NewResolver(countingGetter{t: t})
	assert.Nil(t, r.ResolveOne("Restaurant", ""))
}

func TestResolveManyPreservesInputOrder(t *testing.T) {
	// The one ordering property naive map-iteration implementations break:
	// ['b','a',missing] must come back as [b, a], not [a, b].
	s := newStoreWith(t, "Item", "a", "b")
	r := NewResolver(s)

	resolved := r.ResolveMany("Item", []string{"b", "a", "missing"})

	require.Len(t, resolved, 2)
	assert.Equal(t, "b", resolved[0].ID())
	assert.Equal(t, "a", resolved[1].ID())
}

func TestResolveManyDropsMisses(t *testing.T) {
	s := newStoreWith(t, "Item", "a")
	r := NewResolver(s)

	resolved := r.ResolveMany("Item", []string{"missing", "a", "", "also-missing"})

	require.Len(t, resolved, 1, "no nil placeholders in the result")
	assert.Equal(t, "a", resolved[0].ID())
}

func TestResolveManyEmptyInput(t *testing.T) {
	s := newStoreWith(t, "Item", "a")
	r := NewResolver(s)

	assert.Empty(t, r.ResolveMany("Item", nil))
	assert.Empty(t, r.ResolveMany("Item", []string{}))
	assert.NotNil(t, r.ResolveMany("Item", nil), "empty slice, not nil")
}

func TestResolveAcrossLifecycle(t *testing.T) {
	s, err := store.New(store.Options{})
	require.NoError(t, err)
	r := NewResolver(s)

	s.Create("Restaurant", types.Entity{types.FieldID: "r1", "name": "Blue Door"})
	s.Create("Order", types.Entity{types.FieldID: "o1", "restaurantId": "r1"})

	order, err := s.GetByID("Order", "o1")
	require.NoError(t, err)

	restaurant := r.ResolveOne("Restaurant", order["restaurantId"].(string))
	require.NotNil(t, restaurant)
	assert.Equal(t, "Blue Door", restaurant["name"])

	assert.Nil(t, r.ResolveOne("Restaurant", ""))

	require.NoError(t, s.Delete("Restaurant", "r1"))
	assert.Nil(t, r.ResolveOne("Restaurant", "r1"), "dangling reference resolves to absence")
}

// countingGetter fails the test if the resolver touches the store.
type countingGetter struct {
	t *testing.T
}

func (g countingGetter) GetByID(collection, id string) (types.Entity, error) {
	g.t.Fatalf("store touched for collection=%s id=%s", collection, id)
	return nil, types.ErrNotFound
}
