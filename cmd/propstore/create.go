// Create command adds a mock entity to a collection.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stageware/propstore/pkg/store"
)

var createSilent bool

var createCmd = &cobra.Command{
	Use:   "create <collection> <json>",
	Short: "Create an entity in a collection",
	Long: `Create stores a new entity. A missing id is generated; a supplied id
is honored, so re-running a seed command overwrites rather than duplicates.
Pass "-" to read the entity JSON from stdin.

Example:
  propstore create Restaurant '{"id":"r1","name":"Blue Door"}'
  cat order.json | propstore create Order -`,
	Args: cobra.ExactArgs(2),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().BoolVar(&createSilent, "silent", false, "suppress the entity:created notification")
}

func runCreate(cmd *cobra.Command, args []string) error {
	collection := args[0]
	data, err := parseEntityArg(args[1])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var opts []store.CreateOption
	if createSilent {
		opts = append(opts, store.Silent())
	}
	created := st.Create(collection, data, opts...)

	if flagJSON {
		return printJSON(created)
	}
	fmt.Println("created", collection, created.ID())
	return nil
}
