package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Presets PresetsConfig `yaml:"presets"`
}

type OutputConfig struct {
	Path   string `yaml:"path"` // "-" writes to stdout
	Pretty bool   `yaml:"pretty"`
}

type PresetsConfig struct {
	DNS     string `yaml:"dns"`
	Inbound string `yaml:"inbound"`
}

// Load reads the YAML config file. A missing file is only an error when the
// path was given explicitly; otherwise the defaults are used as-is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = "singforge.yaml"
	}

	var cfg Config
	// Defaults
	cfg.Output.Path = "config.json"
	cfg.Output.Pretty = true
	cfg.Presets.DNS = "default"
	cfg.Presets.Inbound = "mixed"

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	return &cfg, nil
}
