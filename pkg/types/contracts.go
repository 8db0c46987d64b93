package types

import "errors"

// Entity change event names.
const (
	EventEntityCreated = "entity:created"
	EventEntityUpdated = "entity:updated"
	EventEntityDeleted = "entity:deleted"
)

// Event is the payload attached to entity change notifications. Collection
// and Entity are always set; ID is set for updates and deletes; Changes holds
// the updated fields on entity:updated events.
type Event struct {
	Collection string `json:"collection"`
	ID         string `json:"id,omitempty"`
	Entity     Entity `json:"entity"`
	Changes    Entity `json:"changes,omitempty"`
}

// Notifier is the publish/subscribe bus contract. The store calls Notify for
// every non-silent mutation; subscribers are responsible for their own
// filtering. The source tag identifies the emitting store (its namespace).
type Notifier interface {
	Notify(event string, payload Event, source string)
}

// Persister durably stores snapshots across process restarts. The store
// calls Load once at construction and Save after every mutating operation.
// Encoding, storage quotas, and their error handling belong to the adapter.
type Persister interface {
	Load() (Snapshot, error)
	Save(snapshot Snapshot) error
	Close() error
}

// Store operation errors.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrNamespaceEmpty    = errors.New("namespace must not be empty")
	ErrInvalidCollection = errors.New("invalid collection name")
)
