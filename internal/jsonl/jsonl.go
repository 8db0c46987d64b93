// Package jsonl implements the JSONL persistence adapter. Each collection is
// one <name>.jsonl file in the data directory with one entity per line, and
// meta.json carries the sync metadata. Writes use the temp-file, fsync,
// rename pattern so a crash never leaves a half-written file behind.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stageware/propstore/pkg/types"
)

const (
	collectionExt = ".jsonl"
	metaFileName  = "meta.json"
)

// Adapter persists snapshots as JSONL files under a data directory.
type Adapter struct {
	dataDir string
}

// New creates the data directory if needed and returns an Adapter for it.
func New(dataDir string) (*Adapter, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Adapter{dataDir: dataDir}, nil
}

// Load reads every <collection>.jsonl file plus meta.json into a snapshot.
// A missing or empty data directory yields an empty snapshot: first run is
// not an error. Malformed lines and records without an id are skipped.
func (a *Adapter) Load() (types.Snapshot, error) {
	snap := types.Snapshot{Collections: make(types.CollectionTable)}

	entries, err := os.ReadDir(a.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return types.Snapshot{}, fmt.Errorf("reading data dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, collectionExt) {
			continue
		}
		collection := strings.TrimSuffix(name, collectionExt)
		records, err := readRecords(filepath.Join(a.dataDir, name))
		if err != nil {
			return types.Snapshot{}, fmt.Errorf("loading collection %s: %w", collection, err)
		}
		snap.Collections[collection] = records
	}

	meta, err := a.readMeta()
	if err != nil {
		return types.Snapshot{}, err
	}
	snap.LastSyncAt = meta.LastSyncAt
	return snap, nil
}

// Save atomically rewrites every collection file and meta.json, and removes
// files for collections no longer present so deletions survive a restart.
func (a *Adapter) Save(snap types.Snapshot) error {
	for name, entities := range snap.Collections {
		if !validCollectionName(name) {
			return fmt.Errorf("collection %q: %w", name, types.ErrInvalidCollection)
		}
		if err := writeCollection(filepath.Join(a.dataDir, name+collectionExt), entities); err != nil {
			return fmt.Errorf("persisting collection %s: %w", name, err)
		}
	}

	if err := a.removeStale(snap.Collections); err != nil {
		return err
	}

	return a.writeMeta(metaRecord{LastSyncAt: snap.LastSyncAt})
}

// Close is a no-op; every Save is already durable.
func (a *Adapter) Close() error {
	return nil
}

// metaRecord matches the meta.json format.
type metaRecord struct {
	LastSyncAt int64 `json:"lastSyncAt"`
}

func (a *Adapter) readMeta() (metaRecord, error) {
	var meta metaRecord
	data, err := os.ReadFile(filepath.Join(a.dataDir, metaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return meta, fmt.Errorf("reading meta: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		// A corrupt meta file loses only the sync timestamp, not data.
		return metaRecord{}, nil
	}
	return meta, nil
}

func (a *Adapter) writeMeta(meta metaRecord) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	return writeAtomic(filepath.Join(a.dataDir, metaFileName), [][]byte{data})
}

// removeStale deletes .jsonl files whose collection is absent from the
// snapshot.
func (a *Adapter) removeStale(collections types.CollectionTable) error {
	entries, err := os.ReadDir(a.dataDir)
	if err != nil {
		return fmt.Errorf("reading data dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, collectionExt) {
			continue
		}
		if _, ok := collections[strings.TrimSuffix(name, collectionExt)]; !ok {
			if err := os.Remove(filepath.Join(a.dataDir, name)); err != nil {
				return fmt.Errorf("removing stale collection file %s: %w", name, err)
			}
		}
	}
	return nil
}

// readRecords reads one collection file. Each non-empty, parseable line
// becomes an entity keyed by its id; malformed lines are skipped.
func readRecords(path string) (types.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records := make(types.Collection)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e types.Entity
		if err := json.Unmarshal(line, &e); err != nil {
			// Skip malformed lines; a partial file should not block startup.
			continue
		}
		if e.ID() == "" {
			continue
		}
		records[e.ID()] = e
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeCollection writes a collection file with entities ordered by creation
// time then id, keeping the on-disk form stable across saves.
func writeCollection(path string, entities types.Collection) error {
	ordered := make([]types.Entity, 0, len(entities))
	for _, e := range entities {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if a, b := ordered[i].CreatedAt(), ordered[j].CreatedAt(); a != b {
			return a < b
		}
		return ordered[i].ID() < ordered[j].ID()
	})

	lines := make([][]byte, 0, len(ordered))
	for _, e := range ordered {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling entity %s: %w", e.ID(), err)
		}
		lines = append(lines, data)
	}
	return writeAtomic(path, lines)
}

// writeAtomic writes lines to path using the temp-file, fsync, rename
// pattern.
func writeAtomic(path string, lines [][]byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// validCollectionName rejects names that would escape the data directory or
// collide with the adapter's own files.
func validCollectionName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}
