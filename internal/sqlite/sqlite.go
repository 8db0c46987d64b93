// Package sqlite implements the SQLite persistence adapter. The whole
// snapshot lives in one database file: entities as JSON bodies keyed by
// (collection, id), sync metadata in a key/value table. Save replaces the
// stored snapshot in a single transaction, so readers never observe a
// half-written state.
package sqlite

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/stageware/propstore/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

const (
	dbFileName     = "propstore.db"
	metaLastSyncAt = "last_sync_at"
)

// Adapter persists snapshots in a SQLite database file.
type Adapter struct {
	db *sql.DB
}

// Open creates the data directory if needed, opens (or creates) the database
// file inside it, and applies the schema.
func Open(dataDir string) (*Adapter, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Adapter{db: db}, nil
}

// Load reads every stored entity and the sync metadata into a snapshot.
// An empty database yields an empty snapshot.
func (a *Adapter) Load() (types.Snapshot, error) {
	snap := types.Snapshot{Collections: make(types.CollectionTable)}

	rows, err := a.db.Query("SELECT collection, entity_id, body FROM entities")
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var collection, id, body string
		if err := rows.Scan(&collection, &id, &body); err != nil {
			return types.Snapshot{}, fmt.Errorf("scanning entity: %w", err)
		}
		var e types.Entity
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return types.Snapshot{}, fmt.Errorf("parsing entity %s/%s: %w", collection, id, err)
		}
		c, ok := snap.Collections[collection]
		if !ok {
			c = make(types.Collection)
			snap.Collections[collection] = c
		}
		c[id] = e
	}
	if err := rows.Err(); err != nil {
		return types.Snapshot{}, fmt.Errorf("iterating entities: %w", err)
	}

	lastSync, err := a.readLastSyncAt()
	if err != nil {
		return types.Snapshot{}, err
	}
	snap.LastSyncAt = lastSync
	return snap, nil
}

// Save replaces the stored snapshot with snap in one transaction.
func (a *Adapter) Save(snap types.Snapshot) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entities"); err != nil {
		return fmt.Errorf("clearing entities: %w", err)
	}

	for collection, entities := range snap.Collections {
		for id, e := range entities {
			body, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshaling entity %s/%s: %w", collection, id, err)
			}
			if _, err := tx.Exec(
				"INSERT INTO entities (collection, entity_id, body) VALUES (?, ?, ?)",
				collection, id, string(body),
			); err != nil {
				return fmt.Errorf("inserting entity %s/%s: %w", collection, id, err)
			}
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		metaLastSyncAt, strconv.FormatInt(snap.LastSyncAt, 10),
	); err != nil {
		return fmt.Errorf("persisting sync metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Close closes the database.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) readLastSyncAt() (int64, error) {
	var value string
	err := a.db.QueryRow("SELECT value FROM meta WHERE key = ?", metaLastSyncAt).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading sync metadata: %w", err)
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// A corrupt value loses only the sync timestamp.
		return 0, nil
	}
	return ts, nil
}
