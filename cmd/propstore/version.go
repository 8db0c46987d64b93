// Version command for the propstore CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stageware/propstore/pkg/propstore"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the propstore version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("propstore", propstore.Version)
	},
}
