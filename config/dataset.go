package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kilianp07/epf/core/epf"
)

// DatasetConfig locates the raw dataset files.
type DatasetConfig struct {
	// Directory receives epf/datasets/{group}.csv.
	Directory string `json:"directory"`
	// SourceURL is the base URL the group files are fetched from.
	SourceURL      string `json:"source_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *DatasetConfig) SetDefaults() {
	if c.Directory == "" {
		c.Directory = "./data"
	}
	if c.SourceURL == "" {
		c.SourceURL = epf.SourceURL
	}
	if !strings.HasSuffix(c.SourceURL, "/") {
		c.SourceURL += "/"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
}

// Timeout returns the per-download timeout.
func (c DatasetConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the source URL.
func (c DatasetConfig) Validate() error {
	u, err := url.Parse(c.SourceURL)
	if err != nil {
		return fmt.Errorf("dataset.source_url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return fmt.Errorf("dataset.source_url: unsupported scheme %q", u.Scheme)
	}
	return nil
}
