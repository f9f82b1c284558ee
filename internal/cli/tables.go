package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/shelby/internal/model"
)

// TableInfo describes one listable table.
type TableInfo struct {
	Name     string   `json:"name"`
	Sortable []string `json:"sortable"`
	Labeled  bool     `json:"labeled"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tables",
		Short:         "List the tables and their sortable columns",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var tables []TableInfo
	for _, name := range model.TableNames() {
		listing, _ := model.Lookup(name)
		tables = append(tables, TableInfo{
			Name:     name,
			Sortable: listing.Table.SortableColumns(),
			Labeled:  listing.Describe != "",
		})
	}

	return formatter.Render(tables, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TABLE\tSORTABLE")
		for _, t := range tables {
			sortable := strings.Join(t.Sortable, ", ")
			if sortable == "" {
				sortable = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\n", t.Name, sortable)
		}
		return tw.Flush()
	})
}
