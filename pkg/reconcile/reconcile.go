// Package reconcile orchestrates pull and push between a store and a
// caller-supplied transport. Each operation is a full-snapshot exchange: no
// retries, no batching, no diffing. The reconciler's job is orchestration
// and status bookkeeping, not conflict resolution; merging is remote-wins
// replace-by-id (types.MergeTables).
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/stageware/propstore/pkg/types"
)

// PullFunc fetches a full collection table from the remote backend.
type PullFunc func(ctx context.Context) (types.CollectionTable, error)

// PushFunc hands a full snapshot of local state to the remote backend.
type PushFunc func(ctx context.Context, snapshot types.CollectionTable) error

// Store is the surface the reconciler needs from the entity store.
type Store interface {
	MergeData(remote types.CollectionTable)
	Snapshot() types.CollectionTable
	MarkSynced() int64
	LastSyncAt() int64
}

// Options configures a Reconciler. Both transports are optional; a missing
// transport turns the corresponding operation into a no-op.
type Options struct {
	OnPull PullFunc
	OnPush PushFunc
	Logger *zap.Logger
}

// Reconciler tracks sync status for one store. The syncing flag is
// observable so UI can disable concurrent sync triggers, but mutual
// exclusion is not enforced: calling Pull twice concurrently is a caller
// error and races on the sync metadata (last writer wins).
type Reconciler struct {
	store  Store
	onPull PullFunc
	onPush PushFunc
	logger *zap.Logger

	status syncStatus
}

// New creates a Reconciler for the store.
func New(store Store, opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:  store,
		onPull: opts.OnPull,
		onPush: opts.OnPush,
		logger: logger,
	}
}

// Pull fetches the remote collection table, merges it into the store
// (remote wins by id), and records the sync time. A transport failure
// propagates to the caller, but only after the syncing flag is cleared, so
// the store is left consistent and retryable; lastSyncAt is untouched on
// failure. Without a pull transport, Pull is a no-op.
func (r *Reconciler) Pull(ctx context.Context) error {
	if r.onPull == nil {
		return nil
	}

	r.status.set(true)
	defer r.status.set(false)

	remote, err := r.onPull(ctx)
	if err != nil {
		r.logger.Warn("pull transport failed", zap.Error(err))
		return err
	}

	r.store.MergeData(remote)
	ts := r.store.MarkSynced()
	r.logger.Debug("pull complete",
		zap.Int("collections", len(remote)),
		zap.Int64("lastSyncAt", ts))
	return nil
}

// Push hands a snapshot of the entire collection table to the push
// transport. Local state is never mutated by the result. Without a push
// transport, Push is a no-op.
func (r *Reconciler) Push(ctx context.Context) error {
	if r.onPush == nil {
		return nil
	}

	r.status.set(true)
	defer r.status.set(false)

	if err := r.onPush(ctx, r.store.Snapshot()); err != nil {
		r.logger.Warn("push transport failed", zap.Error(err))
		return err
	}
	return nil
}

// IsSyncing reports whether a pull or push is in flight.
func (r *Reconciler) IsSyncing() bool {
	return r.status.get()
}

// LastSyncAt returns the store's last successful pull time in epoch
// milliseconds, or 0 if it has never synced.
func (r *Reconciler) LastSyncAt() int64 {
	return r.store.LastSyncAt()
}
