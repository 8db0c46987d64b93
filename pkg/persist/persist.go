// Package persist provides the public factory for persistence adapters,
// selecting a backend from a Config while keeping implementation details
// internal.
package persist

import (
	"fmt"
	"path/filepath"

	"github.com/stageware/propstore/internal/jsonl"
	"github.com/stageware/propstore/internal/sqlite"
	"github.com/stageware/propstore/pkg/types"
)

// Open validates cfg and returns a Persister for its backend. A non-empty
// Namespace becomes a subdirectory of DataDir so each namespace gets its own
// isolated storage; an empty DataDir means the current directory.
//
// Example:
//
//	p, err := persist.Open(types.Config{
//	    Backend:   types.BackendJSONL,
//	    DataDir:   ".propstore-db",
//	    Namespace: "food-delivery",
//	})
//	defer p.Close()
func Open(cfg types.Config) (types.Persister, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if cfg.Namespace != "" {
		dataDir = filepath.Join(dataDir, cfg.Namespace)
	}

	switch cfg.Backend {
	case types.BackendJSONL:
		return jsonl.New(dataDir)
	case types.BackendSQLite:
		return sqlite.Open(dataDir)
	default:
		// Unreachable after Validate.
		return nil, fmt.Errorf("backend %q: %w", cfg.Backend, types.ErrBackendUnknown)
	}
}
