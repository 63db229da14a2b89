package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/epf/pkg/export"
)

// OutputConfig controls where and how loaded datasets are written.
type OutputConfig struct {
	ResultsDir string              `json:"results_dir"`
	Formats    []string            `json:"formats"`
	Influx     export.InfluxConfig `json:"influx"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.ResultsDir == "" {
		c.ResultsDir = "./results"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{string(export.FormatCSV)}
	}
	if c.Influx.Measurement == "" {
		c.Influx.Measurement = export.DefaultMeasurement
	}
}

// Validate checks the formats and the influx settings they require.
func (c OutputConfig) Validate() error {
	formats, err := export.ParseFormats(c.Formats)
	if err != nil {
		return fmt.Errorf("output.formats: %w", err)
	}
	if slices.Contains(formats, export.FormatInflux) {
		if c.Influx.URL == "" || c.Influx.Bucket == "" {
			return errors.New("output.influx: url and bucket are required for the influx format")
		}
	}
	return nil
}

// ExportFormats returns the parsed formats. Call after Validate.
func (c OutputConfig) ExportFormats() []export.Format {
	f, _ := export.ParseFormats(c.Formats)
	return f
}
