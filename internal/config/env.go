package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvConfigDir  = "GREEN_CONFIG_DIR"
	EnvNetwork    = "GREEN_NETWORK"
	EnvBackendURL = "GREEN_BACKEND_URL"
	EnvLogLevel   = "GREEN_LOG_LEVEL"
	EnvHWIPath    = "GREEN_HWI_PATH"
	EnvCompact    = "GREEN_COMPACT"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
// GREEN_CONFIG_DIR is read by the caller before the file is located.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.Network = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Backend.URL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvHWIPath); v != "" {
		cfg.HWI.Path = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvCompact); v != "" {
		cfg.Output.Compact = parseBool(v)
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string by removing invalid characters and trimming whitespace.
// This is useful for cleaning user-provided backend URLs that may contain copy-paste artifacts.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}
