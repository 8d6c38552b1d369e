package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"1", "1", true},
		{"true", "true", true},
		{"TRUE", "TRUE", true},
		{"yes", "yes", true},
		{"on", "on", true},
		{"with spaces", "  true  ", true},
		{"0", "0", false},
		{"false", "false", false},
		{"no", "no", false},
		{"off", "off", false},
		{"empty", "", false},
		{"random", "random", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, parseBool(tc.input))
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean URL", "wss://bridge.example.com/gdk", "wss://bridge.example.com/gdk"},
		{"with leading/trailing spaces", "  wss://bridge.example.com/gdk  ", "wss://bridge.example.com/gdk"},
		{"localhost", "ws://localhost:8765", "ws://localhost:8765"},
		{"127.0.0.1", "http://127.0.0.1:8765", "http://127.0.0.1:8765"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, SanitizeURL(tc.input))
		})
	}
}

func TestValidateBackendURL(t *testing.T) {
	t.Parallel()

	t.Run("valid URLs", func(t *testing.T) {
		t.Parallel()
		for _, u := range []string{
			"wss://bridge.example.com/gdk",
			"https://bridge.example.com",
			"ws://127.0.0.1:8765",
			"http://localhost:8765",
			"ws://[::1]:8765",
			"/run/gdk/bridge.ipc",
			"",
		} {
			assert.NoError(t, ValidateBackendURL(u), u)
		}
	})

	t.Run("malicious schemes must be rejected", func(t *testing.T) {
		t.Parallel()
		for _, u := range []string{
			"javascript:alert(1)",
			"data:text/html,<script>alert(1)</script>",
			"file:///etc/passwd",
		} {
			require.ErrorIs(t, ValidateBackendURL(u), ErrInvalidBackendURL, u)
		}
	})

	t.Run("insecure URLs", func(t *testing.T) {
		t.Parallel()
		for _, u := range []string{"http://example.com:8765", "ws://bridge.example.com/gdk"} {
			require.ErrorIs(t, ValidateBackendURL(u), ErrInsecureBackendURL, u)
		}
	})
}

func TestApplyEnvironment(t *testing.T) {
	// Cannot run in parallel because we modify environment variables

	t.Run("GREEN_NETWORK", func(t *testing.T) {
		cfg := Defaults()
		t.Setenv(EnvNetwork, " TESTNET ")
		ApplyEnvironment(cfg)
		assert.Equal(t, "testnet", cfg.Network)
	})

	t.Run("GREEN_BACKEND_URL with spaces", func(t *testing.T) {
		cfg := Defaults()
		t.Setenv(EnvBackendURL, "  wss://bridge.example.com/gdk  ")
		ApplyEnvironment(cfg)
		assert.Equal(t, "wss://bridge.example.com/gdk", cfg.Backend.URL)
	})

	t.Run("GREEN_LOG_LEVEL", func(t *testing.T) {
		cfg := Defaults()
		t.Setenv(EnvLogLevel, "DEBUG")
		ApplyEnvironment(cfg)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("GREEN_HWI_PATH", func(t *testing.T) {
		cfg := Defaults()
		t.Setenv(EnvHWIPath, "/usr/local/bin/hwi")
		ApplyEnvironment(cfg)
		assert.Equal(t, "/usr/local/bin/hwi", cfg.HWI.Path)
	})

	t.Run("GREEN_COMPACT", func(t *testing.T) {
		for value, expected := range map[string]bool{"1": true, "yes": true, "false": false, "junk": false} {
			cfg := Defaults()
			t.Setenv(EnvCompact, value)
			ApplyEnvironment(cfg)
			assert.Equal(t, expected, cfg.Output.Compact, value)
		}
	})

	t.Run("unset leaves defaults", func(t *testing.T) {
		for _, name := range []string{EnvNetwork, EnvBackendURL, EnvLogLevel, EnvHWIPath, EnvCompact} {
			t.Setenv(name, "")
		}
		cfg := Defaults()
		ApplyEnvironment(cfg)
		assert.Equal(t, Defaults(), cfg)
	})
}
