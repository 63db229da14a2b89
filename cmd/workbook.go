package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epf/app"
	"github.com/kilianp07/epf/core/epf"
)

func newWorkbookCmd(o *rootOptions) *cobra.Command {
	var out outputFlags
	var layout epf.WorkbookLayout
	cmd := &cobra.Command{
		Use:   "workbook PATH",
		Short: "Load an .xlsx workbook, or a directory of them, and export Y, X and S",
		Long: "Every sheet holds one region: the first header cell names the region, " +
			"the first column holds timestamps and the remaining columns are the target " +
			"and its exogenous series.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.apply(o.cfg); err != nil {
				return err
			}
			return o.withService(func(ctx context.Context, svc *app.Service) error {
				ds, err := svc.LoadWorkbook(args[0], layout)
				if err != nil {
					return err
				}
				files, err := svc.Export(ctx, ds)
				if err != nil {
					return err
				}
				return printExport(cmd, ds, files)
			})
		},
	}
	cmd.Flags().IntVar(&layout.TargetColumn, "target-column", 1, "zero-based sheet column holding the target")
	out.register(cmd)
	return cmd
}
