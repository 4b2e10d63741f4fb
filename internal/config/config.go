// Package config loads the optional YAML settings file and manages the
// credentials dotfile.
package config

// Config is the top-level application configuration.
// It is loaded from ~/.config/graviton-advisor/config.yaml and must never be
// committed with real secrets.
type Config struct {
	AWS    AWSConfig    `yaml:"aws"    json:"aws"`
	Server ServerConfig `yaml:"server" json:"server"`
	Log    LogConfig    `yaml:"log"    json:"log"`
}

// AWSConfig holds AWS-specific defaults used when flags are not provided.
type AWSConfig struct {
	// DefaultRegion is used when no region flag or profile region is set.
	DefaultRegion string `yaml:"default_region" json:"default_region"`

	// DefaultProfile is used when no --profile flag is provided.
	DefaultProfile string `yaml:"default_profile" json:"default_profile"`

	// CredentialsFile is the dotfile written by "ga login".
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// ServerConfig configures "ga serve".
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080".
	Address string `yaml:"address" json:"address"`
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	// Level is a logrus level name: debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format" json:"format"`
}

// Defaults applied to any field left empty.
const (
	DefaultCredentialsFile = ".env"
	DefaultServerAddress   = ":8080"
	DefaultLogLevel        = "warn"
	DefaultLogFormat       = "text"
)

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.AWS.CredentialsFile == "" {
		c.AWS.CredentialsFile = DefaultCredentialsFile
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultServerAddress
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Loader is the interface for reading Config from disk.
// Default implementation reads from ~/.config/graviton-advisor/config.yaml.
type Loader interface {
	// Load reads, parses, and validates the configuration file.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}
