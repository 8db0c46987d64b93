package reconcile

import "sync/atomic"

// syncStatus is the observable "sync in flight" flag. Atomic so UI polling
// from another goroutine reads a coherent value.
type syncStatus struct {
	syncing atomic.Bool
}

func (s *syncStatus) set(v bool) { s.syncing.Store(v) }
func (s *syncStatus) get() bool  { return s.syncing.Load() }
