// Package store implements the namespaced in-memory entity store: CRUD over
// a collection table, id and timestamp assignment, change notification, and
// bulk merge for reconciliation. Durable storage is delegated to a Persister;
// external subsystems observe mutations through subscriptions or a Notifier.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stageware/propstore/pkg/types"
)

// Listener receives entity change events from a store subscription.
type Listener func(event string, payload types.Event)

// Options configures a Store. All fields are optional: a zero Options yields
// a purely in-memory store with no notification fan-out.
type Options struct {
	// Persister durably stores snapshots. Nil means in-memory only.
	Persister types.Persister
	// Notifier receives every non-silent mutation event, tagged with the
	// store's namespace.
	Notifier types.Notifier
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
	// Namespace is the isolation tag passed to the Notifier as the event
	// source. Defaults to "default".
	Namespace string
	// Now returns the current time in epoch milliseconds. Overridable for
	// tests; defaults to the wall clock.
	Now func() int64
}

// Store owns one collection table. Each mutating operation is atomic with
// respect to the notification it emits: subscribers re-reading the store
// always observe the post-mutation state. A Store is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections types.CollectionTable
	lastSyncAt  int64

	persister types.Persister
	notifier  types.Notifier
	logger    *zap.Logger
	namespace string
	now       func() int64

	subMu   sync.Mutex
	subs    map[int]Listener
	nextSub int
}

// New creates a Store. When a Persister is configured its Load result becomes
// the initial collection table; a Load failure is returned so callers do not
// silently start from an empty table.
func New(opts Options) (*Store, error) {
	s := &Store{
		collections: make(types.CollectionTable),
		persister:   opts.Persister,
		notifier:    opts.Notifier,
		logger:      opts.Logger,
		namespace:   opts.Namespace,
		now:         opts.Now,
		subs:        make(map[int]Listener),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.namespace == "" {
		s.namespace = "default"
	}
	if s.now == nil {
		s.now = func() int64 { return time.Now().UnixMilli() }
	}

	if s.persister != nil {
		snap, err := s.persister.Load()
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		if snap.Collections != nil {
			s.collections = snap.Collections
		}
		s.lastSyncAt = snap.LastSyncAt
	}
	return s, nil
}

// CreateOption adjusts a single Create call.
type CreateOption func(*createOptions)

type createOptions struct {
	silent bool
}

// Silent suppresses the entity:created notification for one Create call.
// Used by seeding code that does not want UI bindings to react per entity.
func Silent() CreateOption {
	return func(o *createOptions) { o.silent = true }
}

// Create stores a new entity in the collection and returns the full stored
// record as a fresh copy, never aliasing the caller's map. A missing id is
// generated; a supplied id is honored, which makes seeding idempotent but
// also means a duplicate id silently overwrites the existing entity (caller
// beware, last write wins). Missing timestamps are set to now. Creation
// always succeeds.
func (s *Store) Create(collection string, data types.Entity, opts ...CreateOption) types.Entity {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	e := data.Clone()
	if e == nil {
		e = types.Entity{}
	}
	if e.ID() == "" {
		e[types.FieldID] = generateID()
	}
	now := s.now()
	if _, ok := e[types.FieldCreatedAt]; !ok {
		e[types.FieldCreatedAt] = now
	}
	if _, ok := e[types.FieldUpdatedAt]; !ok {
		e[types.FieldUpdatedAt] = now
	}

	s.mu.Lock()
	c, ok := s.collections[collection]
	if !ok {
		c = make(types.Collection)
		s.collections[collection] = c
	}
	c[e.ID()] = e
	s.saveLocked()
	s.mu.Unlock()

	if !o.silent {
		s.emit(types.EventEntityCreated, types.Event{Collection: collection, Entity: e.Clone()})
	}
	return e.Clone()
}

// Update shallow-merges patch over the existing entity and returns the
// result. The id and createdAt fields cannot be overridden by the patch;
// updatedAt is set to now and never moves backwards. Returns ErrNotFound
// without mutation or notification when the id is absent.
func (s *Store) Update(collection, id string, patch types.Entity) (types.Entity, error) {
	s.mu.Lock()
	existing, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return nil, types.ErrNotFound
	}

	merged := existing.Clone()
	changes := make(types.Entity)
	for k, v := range patch {
		if k == types.FieldID || k == types.FieldCreatedAt {
			continue
		}
		merged[k] = v
		changes[k] = v
	}
	now := s.now()
	if prev := existing.UpdatedAt(); now < prev {
		now = prev
	}
	merged[types.FieldUpdatedAt] = now

	s.collections[collection][id] = merged
	s.saveLocked()
	s.mu.Unlock()

	s.emit(types.EventEntityUpdated, types.Event{
		Collection: collection,
		ID:         id,
		Entity:     merged.Clone(),
		Changes:    changes,
	})
	return merged.Clone(), nil
}

// Delete removes the entity and emits entity:deleted with the removed
// snapshot. Returns ErrNotFound without side effects when the id is absent.
// There is no tombstone: deletion is immediate and unconditional.
func (s *Store) Delete(collection, id string) error {
	s.mu.Lock()
	removed, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return types.ErrNotFound
	}
	delete(s.collections[collection], id)
	s.saveLocked()
	s.mu.Unlock()

	s.emit(types.EventEntityDeleted, types.Event{Collection: collection, ID: id, Entity: removed})
	return nil
}

// GetAll returns a copy of every entity in the collection, ordered by
// creation time then id. The order is an implementation detail; callers
// needing a specific order must sort explicitly.
func (s *Store) GetAll(collection string) []types.Entity {
	s.mu.RLock()
	c := s.collections[collection]
	out := make([]types.Entity, 0, len(c))
	for _, e := range c {
		out = append(out, e.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if a, b := out[i].CreatedAt(), out[j].CreatedAt(); a != b {
			return a < b
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

// GetByID returns a copy of the entity, or ErrNotFound.
func (s *Store) GetByID(collection, id string) (types.Entity, error) {
	s.mu.RLock()
	e, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, types.ErrNotFound
	}
	return e.Clone(), nil
}

// Query returns all entities in the collection for which pred is true, in
// GetAll order. A nil predicate keeps everything.
func (s *Store) Query(collection string, pred func(types.Entity) bool) []types.Entity {
	all := s.GetAll(collection)
	if pred == nil {
		return all
	}
	out := make([]types.Entity, 0, len(all))
	for _, e := range all {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// MergeData unions remote into the collection table in a single logical
// step, remote winning on id collision (see types.MergeTables). Used by the
// reconciler and by fixture seeding; it emits no per-entity events.
func (s *Store) MergeData(remote types.CollectionTable) {
	s.mu.Lock()
	s.collections = types.MergeTables(s.collections, remote)
	s.saveLocked()
	s.mu.Unlock()
}

// Snapshot returns a copy of the entire collection table.
func (s *Store) Snapshot() types.CollectionTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections.Clone()
}

// LastSyncAt returns the timestamp of the last completed pull, in epoch
// milliseconds, or 0 if the store has never synced.
func (s *Store) LastSyncAt() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSyncAt
}

// MarkSynced records now as the last sync time and returns it.
func (s *Store) MarkSynced() int64 {
	s.mu.Lock()
	ts := s.now()
	s.lastSyncAt = ts
	s.saveLocked()
	s.mu.Unlock()
	return ts
}

// Subscribe registers a listener for entity change events and returns its
// unsubscribe function. Within a single dispatch, listeners run in
// registration order.
func (s *Store) Subscribe(l Listener) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = l
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close releases the persister, if any. The store remains usable in memory
// afterwards but stops persisting.
func (s *Store) Close() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Close()
}

// emit dispatches an event to subscribers in registration order, then to the
// external notifier. Called after the mutation lock is released so listeners
// can re-read the store.
func (s *Store) emit(event string, payload types.Event) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.subs[id])
	}
	s.subMu.Unlock()

	for _, l := range listeners {
		l(event, payload)
	}
	if s.notifier != nil {
		s.notifier.Notify(event, payload, s.namespace)
	}
}

// saveLocked persists the current snapshot. Persistence failures are the
// adapter's responsibility; the mutation stays authoritative in memory, so
// failures are logged rather than propagated. Caller must hold s.mu.
func (s *Store) saveLocked() {
	if s.persister == nil {
		return
	}
	snap := types.Snapshot{Collections: s.collections.Clone(), LastSyncAt: s.lastSyncAt}
	if err := s.persister.Save(snap); err != nil {
		s.logger.Warn("persist snapshot", zap.String("namespace", s.namespace), zap.Error(err))
	}
}

// generateID generates a new UUID v7 for entity IDs.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
