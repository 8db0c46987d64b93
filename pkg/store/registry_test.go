package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageware/propstore/pkg/types"
)

func TestRegistryGetCreatesPerNamespace(t *testing.T) {
	built := []string{}
	r := NewRegistry(func(namespace string) (*Store, error) {
		built = append(built, namespace)
		return New(Options{Namespace: namespace})
	})

	food, err := r.Get("food-delivery")
	require.NoError(t, err)
	chat, err := r.Get("chat")
	require.NoError(t, err)

	assert.NotSame(t, food, chat, "namespaces are isolation boundaries")
	food.Create("Order", types.Entity{types.FieldID: "o1"})
	assert.Empty(t, chat.GetAll("Order"))

	again, err := r.Get("food-delivery")
	require.NoError(t, err)
	assert.Same(t, food, again, "same namespace returns the same store")
	assert.Equal(t, []string{"food-delivery", "chat"}, built, "factory runs once per namespace")
}

func TestRegistryEmptyNamespace(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Get("")
	assert.ErrorIs(t, err, types.ErrNamespaceEmpty)
}

func TestRegistryFactoryFailure(t *testing.T) {
	boom := errors.New("no disk")
	r := NewRegistry(func(string) (*Store, error) { return nil, boom })

	_, err := r.Get("app")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.Namespaces(), "failed factory leaves no store behind")
}

func TestRegistryNamespacesSorted(t *testing.T) {
	r := NewRegistry(nil)
	for _, ns := range []string{"zeta", "alpha", "mid"} {
		_, err := r.Get(ns)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Namespaces())
}

func TestRegistryRemoveClosesStore(t *testing.T) {
	p := &fakePersister{}
	r := NewRegistry(func(namespace string) (*Store, error) {
		return New(Options{Persister: p})
	})

	_, err := r.Get("app")
	require.NoError(t, err)
	require.NoError(t, r.Remove("app"))
	assert.True(t, p.closed)
	assert.Empty(t, r.Namespaces())

	assert.NoError(t, r.Remove("never-existed"))
}

func TestRegistryClose(t *testing.T) {
	persisters := []*fakePersister{}
	r := NewRegistry(func(namespace string) (*Store, error) {
		p := &fakePersister{}
		persisters = append(persisters, p)
		return New(Options{Persister: p})
	})

	for _, ns := range []string{"a", "b"} {
		_, err := r.Get(ns)
		require.NoError(t, err)
	}
	require.NoError(t, r.Close())

	for _, p := range persisters {
		assert.True(t, p.closed)
	}
	assert.Empty(t, r.Namespaces())
}
