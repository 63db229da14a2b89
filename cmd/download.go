package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epf/app"
	"github.com/kilianp07/epf/core/epf"
)

func newDownloadCmd(o *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Fetch the raw dataset files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir != "" {
				o.cfg.Dataset.Directory = dir
			}
			return o.withService(func(ctx context.Context, svc *app.Service) error {
				if err := svc.Download(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "datasets available in %s\n", epf.DatasetDir(o.cfg.Dataset.Directory))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "dataset directory (overrides dataset.directory)")
	return cmd
}
