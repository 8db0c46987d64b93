// Update command shallow-merges a patch over an existing entity.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <collection> <id> <json>",
	Short: "Update an entity with a JSON patch",
	Long: `Update shallow-merges the patch over the stored entity. The id and
createdAt fields cannot be changed. Pass "-" to read the patch from stdin.

Example:
  propstore update Order o1 '{"status":"delivered"}'`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := parseEntityArg(args[2])
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		updated, err := st.Update(args[0], args[1], patch)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(updated)
		}
		fmt.Println("updated", args[0], args[1])
		return nil
	},
}
