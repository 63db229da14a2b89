package app

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/kilianp07/epf/config"
	connfactory "github.com/kilianp07/epf/connectors/factory"
	"github.com/kilianp07/epf/core/epf"
	coremetrics "github.com/kilianp07/epf/core/metrics"
	"github.com/kilianp07/epf/infra/logger"
	"github.com/kilianp07/epf/infra/metrics"
	"github.com/kilianp07/epf/infra/mqtt"
	"github.com/kilianp07/epf/pkg/export"
)

// Service wires the loader, its observers and the exporters from the
// configuration.
type Service struct {
	Loader   *epf.Loader
	Exporter *export.Exporter

	cfg      *config.Config
	log      logger.Logger
	sink     coremetrics.MetricsSink
	notifier *mqtt.Notifier
	influx   *export.InfluxWriter
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	fetcher, err := connfactory.NewFetcher(cfg.Dataset.SourceURL, cfg.Dataset.Timeout())
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{cfg: cfg, log: logg, sink: sink}
	opts := []epf.Option{
		epf.WithSourceURL(cfg.Dataset.SourceURL),
		epf.WithLogger(logger.New("loader")),
		epf.WithMetrics(sink),
	}
	if cfg.Notify.Enabled() {
		n, err := mqtt.NewNotifier(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		svc.notifier = n
		opts = append(opts, epf.WithNotifier(n))
	}
	svc.Loader = epf.NewLoader(fetcher, opts...)

	formats := cfg.Output.ExportFormats()
	if slices.Contains(formats, export.FormatInflux) {
		svc.influx = export.NewInfluxWriter(cfg.Output.Influx)
	}
	svc.Exporter = &export.Exporter{
		Dir:     cfg.Output.ResultsDir,
		Formats: formats,
		Influx:  svc.influx,
		Log:     logger.New("export"),
	}
	return svc, nil
}

// StartMetricsServer serves /metrics in the background when an address is
// configured. It stops with ctx.
func (s *Service) StartMetricsServer(ctx context.Context) {
	addr := s.cfg.Metrics.PrometheusAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Download fetches the raw files into the configured directory.
func (s *Service) Download(ctx context.Context) error {
	return s.Loader.Download(ctx, s.cfg.Dataset.Directory)
}

// Load loads one group, or a panel when several are given.
func (s *Service) Load(ctx context.Context, groups []string) (*epf.Dataset, error) {
	if len(groups) == 1 {
		return s.Loader.Load(ctx, s.cfg.Dataset.Directory, groups[0])
	}
	return s.Loader.LoadGroups(ctx, s.cfg.Dataset.Directory, groups)
}

// LoadWorkbook loads a spreadsheet, or every spreadsheet of a directory.
func (s *Service) LoadWorkbook(path string, layout epf.WorkbookLayout) (*epf.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &epf.IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return epf.LoadWorkbookDir(path, layout)
	}
	return epf.LoadWorkbook(path, layout)
}

// Export writes ds with the configured exporter.
func (s *Service) Export(ctx context.Context, ds *epf.Dataset) ([]string, error) {
	files, err := s.Exporter.Export(ctx, ds)
	if err != nil {
		return files, fmt.Errorf("export: %w", err)
	}
	s.log.Infof("exported %d rows to %s", ds.Y.Len(), s.Exporter.Dir)
	return files, nil
}

// Describe loads groups and summarises their targets.
func (s *Service) Describe(ctx context.Context, groups []string) ([]epf.Summary, error) {
	ds, err := s.Load(ctx, groups)
	if err != nil {
		return nil, err
	}
	return epf.Describe(ds.Y), nil
}

// Close releases the notifier and the influx clients.
func (s *Service) Close() error {
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.influx != nil {
		s.influx.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
