// Package metrics defines the sink interfaces used to observe dataset
// downloads and loads. The base MetricsSink records loads; sinks may also
// implement DownloadRecorder or PanelRecorder. Sinks are built from
// configuration through a factory registry and combined with NewMultiSink
// when more than one is configured.
package metrics
