package types

// Reserved entity field names. Every stored entity carries these three;
// any other field is defined by the mock's own collection conventions.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Entity is a single schemaless record: a JSON-shaped map with a string id
// and epoch-millisecond timestamps under the reserved field names.
type Entity map[string]any

// ID returns the entity id, or "" if unset.
func (e Entity) ID() string {
	id, _ := e[FieldID].(string)
	return id
}

// CreatedAt returns the creation timestamp in epoch milliseconds.
func (e Entity) CreatedAt() int64 {
	return EpochMillis(e[FieldCreatedAt])
}

// UpdatedAt returns the last-modification timestamp in epoch milliseconds.
func (e Entity) UpdatedAt() int64 {
	return EpochMillis(e[FieldUpdatedAt])
}

// Clone returns a shallow copy of the entity. Top-level fields are copied;
// nested values are shared, matching the store's shallow-merge semantics.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	cp := make(Entity, len(e))
	for k, v := range e {
		cp[k] = v
	}
	return cp
}

// EpochMillis coerces a timestamp field value to int64 epoch milliseconds.
// JSON decoding turns numbers into float64, so both representations appear
// in practice. Unrecognized values coerce to 0.
func EpochMillis(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Collection is a named set of entities keyed by id.
type Collection map[string]Entity

// Clone returns a copy of the collection with each entity shallow-copied.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	cp := make(Collection, len(c))
	for id, e := range c {
		cp[id] = e.Clone()
	}
	return cp
}

// CollectionTable maps collection names to collections. It is the entire
// store state apart from sync metadata.
type CollectionTable map[string]Collection

// Clone returns a copy of the table with every collection cloned.
func (t CollectionTable) Clone() CollectionTable {
	cp := make(CollectionTable, len(t))
	for name, c := range t {
		cp[name] = c.Clone()
	}
	return cp
}

// MergeTables unions remote into local and returns the merged table without
// mutating either input. Merging is a shallow replace-by-id: an entity in
// remote fully replaces a local entity with the same id, with no field-level
// merge. A future conflict-resolution strategy can swap this function without
// touching the reconciler's orchestration.
func MergeTables(local, remote CollectionTable) CollectionTable {
	merged := local.Clone()
	for name, entities := range remote {
		target, ok := merged[name]
		if !ok {
			target = make(Collection, len(entities))
			merged[name] = target
		}
		for id, e := range entities {
			target[id] = e.Clone()
		}
	}
	return merged
}

// Snapshot is the serializable representation of a store: the collection
// table plus sync metadata.
type Snapshot struct {
	Collections CollectionTable `json:"collections"`
	LastSyncAt  int64           `json:"lastSyncAt,omitempty"`
}
