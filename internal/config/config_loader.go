package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load reads the config file at path, applies defaults and environment
// overrides, and validates the result. A missing file is not an error when
// the environment alone yields a valid configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := unmarshalConfig(path, data, cfg); err != nil {
				return nil, err
			}
			log.WithField("path", path).Info("configuration loaded")
		case os.IsNotExist(err):
			log.WithField("path", path).Debug("config file not found, using defaults and environment")
		default:
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshalConfig(path string, data []byte, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("failed to parse config file (tried YAML and JSON)")
			}
		}
	}
	return nil
}
