package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epf/core/epf"
)

func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the available market groups and their test split dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "GROUP\tTEST DATE")
			for _, r := range epf.Regions() {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", r.Name, r.TestDate.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}
