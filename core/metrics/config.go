package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kilianp07/epf/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr enables the /metrics endpoint when set, e.g. ":9100".
	PrometheusAddr string `json:"prometheus_addr"`
}

// Validate checks that every sink names a registered type. Sink packages
// must be imported before it is called.
func (c Config) Validate() error {
	known := SinkTypes()
	for i, s := range c.Sinks {
		if !slices.Contains(known, s.Type) {
			return fmt.Errorf("metrics.sinks[%d]: unknown sink type %q (known: %s)", i, s.Type, strings.Join(known, ", "))
		}
	}
	return nil
}
