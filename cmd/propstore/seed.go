// Seed command bulk-merges a fixture file into the store.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stageware/propstore/pkg/types"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Merge a fixture file into the store",
	Long: `Seed reads a JSON fixture mapping collection names to entities keyed
by id and merges it into the store in one step. Fixture entities win on id
collision, so seeding is idempotent and re-runnable.

Fixture format:
  {"Restaurant": {"r1": {"id": "r1", "name": "Blue Door"}},
   "Order":      {"o1": {"id": "o1", "restaurantId": "r1"}}}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read fixture: %w", err)
		}
		var fixture types.CollectionTable
		if err := json.Unmarshal(data, &fixture); err != nil {
			return fmt.Errorf("parse fixture: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		st.MergeData(fixture)

		entities := 0
		for _, c := range fixture {
			entities += len(c)
		}
		fmt.Printf("seeded %d entities across %d collections\n", entities, len(fixture))
		return nil
	},
}
