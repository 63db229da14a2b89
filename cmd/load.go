package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epf/app"
	"github.com/kilianp07/epf/config"
	"github.com/kilianp07/epf/core/epf"
)

// outputFlags override the output section of the configuration.
type outputFlags struct {
	out     string
	formats []string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.out, "out", "", "results directory (overrides output.results_dir)")
	cmd.Flags().StringSliceVar(&f.formats, "format", nil, "output formats: csv, json, sqlite, chart, influx")
}

func (f *outputFlags) apply(cfg *config.Config) error {
	if f.out != "" {
		cfg.Output.ResultsDir = f.out
	}
	if len(f.formats) > 0 {
		cfg.Output.Formats = f.formats
	}
	return cfg.Output.Validate()
}

func newLoadCmd(o *rootOptions) *cobra.Command {
	var dir string
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "load GROUP...",
		Short: "Load one or more groups and export Y, X and S",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir != "" {
				o.cfg.Dataset.Directory = dir
			}
			if err := out.apply(o.cfg); err != nil {
				return err
			}
			return o.withService(func(ctx context.Context, svc *app.Service) error {
				ds, err := svc.Load(ctx, args)
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
	cmd.Flags().StringVar(&dir, "dir", "", "dataset directory (overrides dataset.directory)")
	out.register(cmd)
	return cmd
}

func printExport(cmd *cobra.Command, ds *epf.Dataset, files []string) error {
	w := cmd.OutOrStdout()
	for _, t := range ds.Tables() {
		if _, err := fmt.Fprintf(w, "%s: %d rows, %d columns\n", t.Name(), t.Len(), len(t.Columns())); err != nil {
			return err
		}
	}
	for _, f := range files {
		if _, err := fmt.Fprintln(w, f); err != nil {
			return err
		}
	}
	return nil
}
