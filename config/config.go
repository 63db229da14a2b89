package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/epf/core/metrics"
	_ "github.com/kilianp07/epf/infra/metrics"
	"github.com/kilianp07/epf/infra/mqtt"
)

// Config is the root configuration of the epf tool.
type Config struct {
	Dataset DatasetConfig  `json:"dataset"`
	Output  OutputConfig   `json:"output"`
	Log     LogConfig      `json:"log"`
	Metrics metrics.Config `json:"metrics"`
	Notify  mqtt.Config    `json:"notify"`
}

// Load reads the YAML or JSON file at path, applies K_ prefixed environment
// overrides (K_DATASET__DIRECTORY sets dataset.directory), fills defaults and
// validates every section. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Dataset.SetDefaults()
	c.Output.SetDefaults()
	c.Log.SetDefaults()
	c.Notify.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Dataset.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return c.Notify.Validate()
}
