// Package hwi drives the hwi command line tool to talk to hardware signers.
package hwi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/mrz1836/greencli/internal/gdk"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// DefaultBinary is the hwi executable looked up on PATH.
const DefaultBinary = "hwi"

// ErrCommand indicates hwi failed or reported an error.
var ErrCommand = errors.New("hwi command failed")

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner. Stderr is folded into the error on failure.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // G204: binary comes from config, args are built here
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return stdout.Bytes(), fmt.Errorf("%w: %s", err, msg)
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

// Device is one entry of hwi enumerate.
type Device struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	Model       string `json:"model,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Name identifies the device to the backend, e.g. "ledger@0001:0007:00".
func (d Device) Name() string {
	return d.Type + "@" + d.Path
}

// Client runs hwi commands.
type Client struct {
	binary string
	runner Runner
	logger gdk.Logger
}

// NewClient creates a client for binary. Empty binary means DefaultBinary,
// nil runner means ExecRunner and nil logger discards output.
func NewClient(binary string, runner Runner, logger gdk.Logger) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = gdk.NopLogger{}
	}
	return &Client{binary: binary, runner: runner, logger: logger}
}

// Enumerate lists attached devices.
func (c *Client) Enumerate(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.run(ctx, &devices, "enumerate"); err != nil {
		return nil, err
	}
	c.logger.Debug("hwi devices: %+v", devices)
	return devices, nil
}

// SelectDevice returns the single attached device. No device, more than one
// device, or a device reporting an error are all ErrDeviceUnavailable.
func (c *Client) SelectDevice(ctx context.Context) (Device, error) {
	devices, err := c.Enumerate(ctx)
	if err != nil {
		return Device{}, greenerr.WithCause(greenerr.ErrDeviceUnavailable, err)
	}
	return selectDevice(devices)
}

func selectDevice(devices []Device) (Device, error) {
	switch len(devices) {
	case 0:
		return Device{}, greenerr.ErrDeviceUnavailable
	case 1:
	default:
		return Device{}, greenerr.WithSuggestion(
			greenerr.WithDetails(greenerr.ErrDeviceUnavailable, map[string]string{"devices": strconv.Itoa(len(devices))}),
			"device selection is not supported, attach exactly one device",
		)
	}

	device := devices[0]
	if device.Error != "" {
		return Device{}, greenerr.WithSuggestion(
			greenerr.WithDetails(greenerr.ErrDeviceUnavailable, map[string]string{
				"device": device.Name(),
				"error":  device.Error,
			}),
			"check the device and activate the bitcoin app if necessary",
		)
	}
	return device, nil
}

// GetXpub returns the base58 extended public key at path ("m/1/2").
func (c *Client) GetXpub(ctx context.Context, device Device, path string) (string, error) {
	var out struct {
		Xpub string `json:"xpub"`
	}
	if err := c.run(ctx, &out, c.deviceArgs(device, "getxpub", path)...); err != nil {
		return "", err
	}
	if out.Xpub == "" {
		return "", fmt.Errorf("%w: getxpub returned no xpub", ErrCommand)
	}
	return out.Xpub, nil
}

// SignMessage signs message with the key at path and returns the 65-byte
// recoverable compact signature.
func (c *Client) SignMessage(ctx context.Context, device Device, message, path string) ([]byte, error) {
	var out struct {
		Signature string `json:"signature"`
	}
	if err := c.run(ctx, &out, c.deviceArgs(device, "signmessage", message, path)...); err != nil {
		return nil, err
	}
	sig, err := base64.StdEncoding.DecodeString(out.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding signature: %w", ErrCommand, err)
	}
	return sig, nil
}

func (c *Client) deviceArgs(device Device, args ...string) []string {
	return append([]string{"-t", device.Type, "-d", device.Path}, args...)
}

// run executes hwi and decodes its JSON output into out. hwi reports most
// failures as {"error": ..., "code": ...} on stdout.
func (c *Client) run(ctx context.Context, out any, args ...string) error {
	c.logger.Debug("hwi %v", args)
	stdout, runErr := c.runner.Run(ctx, c.binary, args...)

	var reported struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if json.Unmarshal(stdout, &reported) == nil && reported.Error != "" {
		return fmt.Errorf("%w: %s (code %d)", ErrCommand, reported.Error, reported.Code)
	}
	if runErr != nil {
		return fmt.Errorf("%w: %w", ErrCommand, runErr)
	}

	if err := json.Unmarshal(stdout, out); err != nil {
		return fmt.Errorf("%w: decoding output: %w", ErrCommand, err)
	}
	return nil
}
