// Export command writes a snapshot of the store to a file or stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a full snapshot of the store",
	Long: `Export writes the entire collection table as JSON, in the same format
the seed command reads. With no argument the snapshot goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		out, err := json.MarshalIndent(st.Snapshot(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}

		if len(args) == 0 {
			fmt.Println(string(out))
			return nil
		}
		if err := os.WriteFile(args[0], append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		fmt.Println("exported snapshot to", args[0])
		return nil
	},
}
