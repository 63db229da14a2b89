package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epf/app"
	"github.com/kilianp07/epf/config"
	"github.com/kilianp07/epf/infra/logger"
)

// rootOptions holds the state shared by every subcommand.
type rootOptions struct {
	cfgPath string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "epf",
		Short:         "Electricity price forecasting datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
				return err
			}
			o.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&o.cfgPath, "config", "c", "", "configuration file (yaml or json)")

	root.AddCommand(
		newGroupsCmd(),
		newDownloadCmd(o),
		newLoadCmd(o),
		newDescribeCmd(o),
		newWorkbookCmd(o),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

// withService builds the service, starts the metrics endpoint and runs fn
// until it returns or the process is interrupted.
func (o *rootOptions) withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(o.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.StartMetricsServer(ctx)
	return fn(ctx, svc)
}
