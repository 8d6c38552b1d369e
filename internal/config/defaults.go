package config

import "github.com/mrz1836/greencli/internal/gdk"

// Network names accepted by --network.
const (
	NetworkLocaltest = "localtest"
	NetworkTestnet   = "testnet"
	NetworkMainnet   = "mainnet"
)

// DefaultBackendURL is a gdk bridge on the local machine. A websocket
// endpoint is needed for notifications.
const DefaultBackendURL = "ws://127.0.0.1:8765"

// Defaults returns the default configuration.
func Defaults() *Config {
	scriptTypes := make([]int, 0, 4)
	for _, st := range gdk.DefaultWitnessScriptTypes() {
		scriptTypes = append(scriptTypes, int(st))
	}

	return &Config{
		Version: 1,
		Network: NetworkLocaltest,
		Auth:    "default",
		Backend: BackendConfig{
			URL:          DefaultBackendURL,
			RateLimit:    20,
			RateBurst:    10,
			DialAttempts: 3,
		},
		HWI: HWIConfig{
			Path: "hwi",
		},
		Signing: SigningConfig{
			WitnessScriptTypes: scriptTypes,
		},
		Output: OutputConfig{
			Compact: false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "",
		},
	}
}
