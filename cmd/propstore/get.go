// Get command retrieves one entity by id.
package main

import (
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <collection> <id>",
	Short: "Retrieve an entity by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		e, err := st.GetByID(args[0], args[1])
		if err != nil {
			return err
		}
		return printEntity(e)
	},
}
