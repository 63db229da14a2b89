package metrics

// MultiSink fanouts events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordLoad forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordLoad(ev LoadEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordLoad(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDownload forwards the event to the sinks that support it.
func (m *MultiSink) RecordDownload(ev DownloadEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(DownloadRecorder); ok {
			if err := r.RecordDownload(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPanel forwards the event to the sinks that support it.
func (m *MultiSink) RecordPanel(ev PanelEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(PanelRecorder); ok {
			if err := r.RecordPanel(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
