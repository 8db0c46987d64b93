// List command queries a collection with sort and pagination.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stageware/propstore/pkg/query"
)

var (
	listSort   string
	listDesc   bool
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List entities in a collection",
	Long: `List fetches all entities in a collection and displays them, with
optional sorting and pagination.

Example:
  propstore list Order
  propstore list Order --sort total --desc --limit 10
  propstore list Order --offset 10 --limit 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort by field (ascending)")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending (with --sort)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of results (0 = no limit)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of results to skip")
}

func runList(cmd *cobra.Command, args []string) error {
	collection := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	opts := query.Options{
		Offset: listOffset,
		Limit:  listLimit,
	}
	if listSort != "" {
		opts.Sort = query.ByField(listSort)
		if listDesc {
			opts.Sort = query.Descending(opts.Sort)
		}
	}

	result := query.Run(st.GetAll(collection), opts)

	if flagJSON {
		return printJSON(map[string]any{
			"items":   result.Items,
			"total":   result.Total,
			"count":   result.Count(),
			"hasMore": result.HasMore(),
		})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tUPDATED")
	for _, e := range result.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			e.ID(),
			formatMillis(e.CreatedAt()),
			formatMillis(e.UpdatedAt()),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d of %d %s entities", result.Count(), result.Total, collection)
	if result.HasMore() {
		fmt.Print(" (more available)")
	}
	fmt.Println()
	return nil
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
