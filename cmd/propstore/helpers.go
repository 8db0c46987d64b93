// Shared helpers for propstore CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/stageware/propstore/pkg/persist"
	"github.com/stageware/propstore/pkg/store"
	"github.com/stageware/propstore/pkg/types"
)

// openStore resolves the data directory and namespace, opens the configured
// persistence adapter, and constructs the store. The caller must defer
// st.Close().
func openStore() (*store.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	namespace := resolveNamespace()

	p, err := persist.Open(types.Config{
		Backend:   resolveBackend(),
		DataDir:   dataDir,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("open persistence: %w", err)
	}

	logger := zap.NewNop()
	if flagVerbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			logger = zap.NewNop()
		}
	}

	st, err := store.New(store.Options{
		Persister: p,
		Logger:    logger,
		Namespace: namespace,
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// parseEntityArg reads entity JSON from the argument, or from stdin when the
// argument is "-".
func parseEntityArg(arg string) (types.Entity, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	var e types.Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse entity JSON: %w", err)
	}
	return e, nil
}

// printEntity writes one entity as indented JSON in --json mode, or as
// sorted "field: value" lines otherwise.
func printEntity(e types.Entity) error {
	if flagJSON {
		return printJSON(e)
	}
	fields := make([]string, 0, len(e))
	for k := range e {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, k := range fields {
		fmt.Fprintf(w, "%s\t%v\n", k, e[k])
	}
	return w.Flush()
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
