// Sync commands reconcile the store against a JSON-file transport. The
// reconciler itself is transport-agnostic; files stand in for whatever
// backend a prototype eventually talks to.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stageware/propstore/pkg/reconcile"
	"github.com/stageware/propstore/pkg/store"
	"github.com/stageware/propstore/pkg/types"
)

var (
	syncFrom string
	syncTo   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull or push a full snapshot",
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Merge a remote snapshot into the store",
	Long: `Pull reads a collection-table JSON file and merges it into the store,
remote entities winning on id collision, then records the sync time.

Example:
  propstore sync pull --from remote.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		rec := newReconciler(st)
		if err := rec.Pull(cmd.Context()); err != nil {
			return fmt.Errorf("pull: %w", err)
		}
		fmt.Println("pulled", syncFrom, "at", formatMillis(rec.LastSyncAt()))
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Write a full local snapshot to a remote file",
	Long: `Push hands the entire collection table to the transport. Local state
is never modified.

Example:
  propstore sync push --to remote.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := newReconciler(st).Push(cmd.Context()); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		fmt.Println("pushed snapshot to", syncTo)
		return nil
	},
}

func init() {
	syncPullCmd.Flags().StringVar(&syncFrom, "from", "", "remote snapshot file to pull")
	syncPullCmd.MarkFlagRequired("from")
	syncPushCmd.Flags().StringVar(&syncTo, "to", "", "remote snapshot file to push")
	syncPushCmd.MarkFlagRequired("to")

	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncPushCmd)
}

// newReconciler wires the store to the JSON-file transport.
func newReconciler(st *store.Store) *reconcile.Reconciler {
	logger := zap.NewNop()
	if flagVerbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}

	opts := reconcile.Options{Logger: logger}
	if syncFrom != "" {
		opts.OnPull = func(ctx context.Context) (types.CollectionTable, error) {
			data, err := os.ReadFile(syncFrom)
			if err != nil {
				return nil, err
			}
			var table types.CollectionTable
			if err := json.Unmarshal(data, &table); err != nil {
				return nil, fmt.Errorf("parse remote snapshot: %w", err)
			}
			return table, nil
		}
	}
	if syncTo != "" {
		opts.OnPush = func(ctx context.Context, snapshot types.CollectionTable) error {
			out, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(syncTo, append(out, '\n'), 0o644)
		}
	}
	return reconcile.New(st, opts)
}
