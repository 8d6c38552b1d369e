package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrInvalidBackendURL indicates a backend URL that cannot be dialed.
	ErrInvalidBackendURL = errors.New("invalid backend url")

	// ErrInsecureBackendURL indicates an unencrypted scheme to a remote host.
	ErrInsecureBackendURL = errors.New("insecure backend url: use https or wss for remote hosts")
)

// ValidateBackendURL accepts http(s) and ws(s) URLs and absolute IPC socket
// paths. Plain http and ws are only allowed to loopback hosts. An empty URL
// is left to Validate.
func ValidateBackendURL(raw string) error {
	if raw == "" || strings.HasPrefix(raw, "/") {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBackendURL, err)
	}

	switch u.Scheme {
	case "https", "wss":
		if u.Host == "" {
			return fmt.Errorf("%w: missing host", ErrInvalidBackendURL)
		}
		return nil
	case "http", "ws":
		if !isLoopback(u.Hostname()) {
			return ErrInsecureBackendURL
		}
		return nil
	default:
		return fmt.Errorf("%w: scheme %q", ErrInvalidBackendURL, u.Scheme)
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
