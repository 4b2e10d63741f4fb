package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileLoader reads Config from a YAML file.
type FileLoader struct {
	path string
}

// NewFileLoader returns a loader for path. An empty path selects
// DefaultPath.
func NewFileLoader(path string) *FileLoader {
	if path == "" {
		path = DefaultPath()
	}
	return &FileLoader{path: path}
}

// DefaultPath returns ~/.config/graviton-advisor/config.yaml, or a relative
// config.yaml when the home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "graviton-advisor", "config.yaml")
}

// ConfigPath implements Loader.
func (l *FileLoader) ConfigPath() string { return l.path }

// Load implements Loader. A missing file yields Default().
func (l *FileLoader) Load() (*Config, error) {
	return Load(l.path)
}

// Load reads the YAML file at path and fills unset fields with defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
