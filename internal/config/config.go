// Package config provides configuration management for green.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/greencli/internal/gdk"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// Config represents the application configuration.
type Config struct {
	Version int           `yaml:"version"`
	Network string        `yaml:"network"`
	Auth    string        `yaml:"auth"`
	Backend BackendConfig `yaml:"backend"`
	HWI     HWIConfig     `yaml:"hwi"`
	Signing SigningConfig `yaml:"signing"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig defines how the gdk bridge is reached.
type BackendConfig struct {
	URL          string  `yaml:"url"`
	RateLimit    float64 `yaml:"rate_limit"`
	RateBurst    int     `yaml:"rate_burst"`
	DialAttempts int     `yaml:"dial_attempts"`
}

// HWIConfig defines the hardware signer tool.
type HWIConfig struct {
	Path string `yaml:"path"`
}

// SigningConfig defines local signing settings.
type SigningConfig struct {
	// WitnessScriptTypes lists the backend script types the local signer accepts.
	WitnessScriptTypes []int `yaml:"witness_script_types"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	Compact bool `yaml:"compact"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from path on top of Defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, greenerr.WithCause(greenerr.ErrConfigInvalid, fmt.Errorf("%s: %w", path, err))
	}

	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// DefaultDir returns ~/.green-cli/<network>.
func DefaultDir(network string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".green-cli", network)
	}
	return filepath.Join(home, ".green-cli", network)
}

// Validate checks the values other packages rely on.
func (c *Config) Validate() error {
	switch c.Network {
	case NetworkLocaltest, NetworkTestnet:
	case NetworkMainnet:
		return greenerr.ErrMainnetRefused
	default:
		return greenerr.WithDetails(greenerr.ErrConfigInvalid, map[string]string{"network": c.Network})
	}

	switch c.Auth {
	case "default", "wally", "hardware":
	default:
		return greenerr.WithDetails(greenerr.ErrConfigInvalid, map[string]string{"auth": c.Auth})
	}

	if c.Backend.URL == "" {
		return greenerr.WithDetails(greenerr.ErrConfigInvalid, map[string]string{"backend.url": "empty"})
	}
	if err := ValidateBackendURL(c.Backend.URL); err != nil {
		return greenerr.WithCause(greenerr.ErrConfigInvalid, err)
	}

	if c.Backend.DialAttempts < 1 {
		return greenerr.WithDetails(greenerr.ErrConfigInvalid, map[string]string{"backend.dial_attempts": strconv.Itoa(c.Backend.DialAttempts)})
	}

	if err := gdk.ValidateWitnessScriptTypes(c.Signing.WitnessScriptTypes); err != nil {
		return greenerr.WithCause(greenerr.ErrConfigInvalid, err)
	}
	return nil
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}
