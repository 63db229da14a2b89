package metrics

import "time"

// LoadEvent describes the load of one region file.
type LoadEvent struct {
	RunID    string
	Region   string
	Rows     int
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records dataset activity for observability purposes.
type MetricsSink interface {
	RecordLoad(ev LoadEvent) error
}

// DownloadEvent describes the fetch of one raw dataset file.
type DownloadEvent struct {
	Region   string
	URL      string
	Bytes    int64
	Success  bool
	Duration time.Duration
	Time     time.Time
}

// DownloadRecorder is implemented by sinks able to record downloads.
type DownloadRecorder interface {
	RecordDownload(ev DownloadEvent) error
}

// PanelEvent describes an assembled multi-region panel.
type PanelEvent struct {
	RunID   string
	Regions []string
	Rows    int
	Time    time.Time
}

// PanelRecorder records panel assembly.
type PanelRecorder interface {
	RecordPanel(ev PanelEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordLoad(LoadEvent) error         { return nil }
func (NopSink) RecordDownload(DownloadEvent) error { return nil }
func (NopSink) RecordPanel(PanelEvent) error       { return nil }
