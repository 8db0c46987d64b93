package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageware/propstore/pkg/store"
	"github.com/stageware/propstore/pkg/types"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	var tick int64 = 1000
	s, err := store.New(store.Options{Now: func() int64 { tick++; return tick }})
	require.NoError(t, err)
	return s
}

func TestPullMergesRemoteAndRecordsSyncTime(t *testing.T) {
	s := newTestStore(t)
	remote := types.CollectionTable{
		"Order": {"o1": types.Entity{types.FieldID: "o1", "status": "delivered"}},
	}
	r := New(s, Options{
		OnPull: func(ctx context.Context) (types.CollectionTable, error) {
			return remote, nil
		},
	})

	require.NoError(t, r.Pull(context.Background()))

	got, err := s.GetByID("Order", "o1")
	require.NoError(t, err)
	assert.Equal(t, "delivered", got["status"])
	assert.Positive(t, r.LastSyncAt())
	assert.False(t, r.IsSyncing())
}

func TestPullFailureLeavesConsistentState(t *testing.T) {
	s := newTestStore(t)
	s.Create("Order", types.Entity{types.FieldID: "o1"})
	boom := errors.New("network down")

	r := New(s, Options{
		OnPull: func(ctx context.Context) (types.CollectionTable, error) {
			return nil, boom
		},
	})

	err := r.Pull(context.Background())
	assert.ErrorIs(t, err, boom, "transport failure propagates")
	assert.False(t, r.IsSyncing(), "syncing flag cleared before the error surfaces")
	assert.Zero(t, r.LastSyncAt(), "lastSyncAt untouched on failure")
	assert.Len(t, s.GetAll("Order"), 1, "local data untouched on failure")
}

func TestPullWithoutTransportIsNoOp(t *testing.T) {
	s := newTestStore(t)
	r := New(s, Options{})

	assert.NoError(t, r.Pull(context.Background()))
	assert.Zero(t, r.LastSyncAt())
}

func TestPullRemoteWinsOnCollision(t *testing.T) {
	s := newTestStore(t)
	s.Create("Order", types.Entity{types.FieldID: "o1", "status": "pending", "note": "local"})

	r := New(s, Options{
		OnPull: func(ctx context.Context) (types.CollectionTable, error) {
			return types.CollectionTable{
				"Order": {"o1": types.Entity{types.FieldID: "o1", "status": "delivered"}},
			}, nil
		},
	})
	require.NoError(t, r.Pull(context.Background()))

	got, err := s.GetByID("Order", "o1")
	require.NoError(t, err)
	assert.Equal(t, "delivered", got["status"])
	assert.NotContains(t, got, "note", "shallow replace-by-id, remote wins")
}

func TestIsSyncingObservableDuringPull(t *testing.T) {
	s := newTestStore(t)
	var r *Reconciler
	var duringPull bool
	r = New(s, Options{
		OnPull: func(ctx context.Context) (types.CollectionTable, error) {
			duringPull = r.IsSyncing()
			return types.CollectionTable{}, nil
		},
	})

	require.NoError(t, r.Pull(context.Background()))
	assert.True(t, duringPull, "syncing flag visible while the transport runs")
	assert.False(t, r.IsSyncing())
}

func TestPushHandsFullSnapshot(t *testing.T) {
	s := newTestStore(t)
	s.Create("Order", types.Entity{types.FieldID: "o1"})
	s.Create("User", types.Entity{types.FieldID: "u1"})

	var pushed types.CollectionTable
	r := New(s, Options{
		OnPush: func(ctx context.Context, snapshot types.CollectionTable) error {
			pushed = snapshot
			return nil
		},
	})

	require.NoError(t, r.Push(context.Background()))
	assert.Len(t, pushed, 2)
	assert.Contains(t, pushed["Order"], "o1")

	// The handed-off snapshot is a copy; mutating it must not touch the store.
	pushed["Order"]["o1"]["status"] = "tampered"
	got, err := s.GetByID("Order", "o1")
	require.NoError(t, err)
	assert.NotContains(t, got, "status")
}

func TestPushFailurePropagatesAndDoesNotMutate(t *testing.T) {
	s := newTestStore(t)
	s.Create("Order", types.Entity{types.FieldID: "o1"})
	boom := errors.New("remote rejected")

	r := New(s, Options{
		OnPush: func(ctx context.Context, snapshot types.CollectionTable) error {
			return boom
		},
	})

	assert.ErrorIs(t, r.Push(context.Background()), boom)
	assert.False(t, r.IsSyncing())
	assert.Zero(t, r.LastSyncAt(), "push never records a sync time")
	assert.Len(t, s.GetAll("Order"), 1)
}

func TestPushWithoutTransportIsNoOp(t *testing.T) {
	s := newTestStore(t)
	r := New(s, Options{})
	assert.NoError(t, r.Push(context.Background()))
}
