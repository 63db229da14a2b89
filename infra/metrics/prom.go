package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/epf/core/metrics"
)

// PromSink records dataset loads and downloads in Prometheus metrics.
type PromSink struct {
	loads         *prometheus.CounterVec
	rows          *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
	downloads     *prometheus.CounterVec
	downloadBytes *prometheus.CounterVec
	panels        prometheus.Counter
	panelRows     prometheus.Gauge
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.loads, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "epf_loads_total",
		Help: "Number of region files loaded",
	}, []string{"region"})); err != nil {
		return nil, err
	}
	if s.rows, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "epf_rows_loaded_total",
		Help: "Number of target rows loaded",
	}, []string{"region"})); err != nil {
		return nil, err
	}
	if s.loadDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "epf_load_duration_seconds",
		Help:    "Time spent parsing and reshaping a region file",
		Buckets: prometheus.DefBuckets,
	}, []string{"region"})); err != nil {
		return nil, err
	}
	if s.downloads, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "epf_downloads_total",
		Help: "Number of raw dataset downloads",
	}, []string{"region", "success"})); err != nil {
		return nil, err
	}
	if s.downloadBytes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "epf_download_bytes_total",
		Help: "Bytes written by successful downloads",
	}, []string{"region"})); err != nil {
		return nil, err
	}
	if s.panels, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "epf_panels_total",
		Help: "Number of multi-region panels assembled",
	})); err != nil {
		return nil, err
	}
	if s.panelRows, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "epf_panel_rows",
		Help: "Rows of the last assembled panel",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordLoad counts the load and its rows and observes its duration.
func (s *PromSink) RecordLoad(ev coremetrics.LoadEvent) error {
	s.loads.WithLabelValues(ev.Region).Inc()
	s.rows.WithLabelValues(ev.Region).Add(float64(ev.Rows))
	s.loadDuration.WithLabelValues(ev.Region).Observe(ev.Duration.Seconds())
	return nil
}

// RecordDownload counts the download attempt.
func (s *PromSink) RecordDownload(ev coremetrics.DownloadEvent) error {
	s.downloads.WithLabelValues(ev.Region, strconv.FormatBool(ev.Success)).Inc()
	if ev.Success {
		s.downloadBytes.WithLabelValues(ev.Region).Add(float64(ev.Bytes))
	}
	return nil
}

// RecordPanel counts the panel and keeps its size.
func (s *PromSink) RecordPanel(ev coremetrics.PanelEvent) error {
	s.panels.Inc()
	s.panelRows.Set(float64(ev.Rows))
	return nil
}
