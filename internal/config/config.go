// Package config loads the foldcodectl run configuration from YAML.
// The encoder core itself takes everything through its API; this file
// only shapes the CLI surface.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of a foldcode.yaml.
type Config struct {
	AssetPath string `yaml:"asset_path"`
	Store     string `yaml:"store,omitempty"`
	DBPath    string `yaml:"db_path,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
	LockPath  string `yaml:"lock_path,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store:   "memory",
		DBPath:  "foldcode.db",
		Workers: 4,
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case "", "memory", "sqlite", "leveldb":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}
