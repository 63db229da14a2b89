package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epf/app"
)

func newDescribeCmd(o *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "describe GROUP...",
		Short: "Print per-region statistics of the target series",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir != "" {
				o.cfg.Dataset.Directory = dir
			}
			return o.withService(func(ctx context.Context, svc *app.Service) error {
				sums, err := svc.Describe(ctx, args)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
				_, _ = fmt.Fprintln(w, "REGION\tCOUNT\tMEAN\tSTD\tMIN\t25%\t50%\t75%\tMAX\tTRAIN\tTEST\t")
				for _, s := range sums {
					_, _ = fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%d\t\n",
						s.RegionID, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max, s.TrainRows, s.TestRows)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "dataset directory (overrides dataset.directory)")
	return cmd
}
