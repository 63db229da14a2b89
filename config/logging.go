package config

import "fmt"

// LogConfig selects the level and encoding of the application logs.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level"`
	// Format is "json" or "console". Empty lets APP_ENV=dev pick the
	// console writer and defaults to json otherwise.
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level and format names.
func (c LogConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Level)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Format)
	}
	return nil
}
