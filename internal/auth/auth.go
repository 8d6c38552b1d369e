// Package auth implements the interchangeable authenticators that log in to
// the wallet backend and answer its signing requests.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/hwi"
	"github.com/mrz1836/greencli/internal/keystore"
	"github.com/mrz1836/greencli/internal/wallet"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// Kind selects an authenticator.
type Kind string

// Authenticator kinds accepted by --auth.
const (
	KindDefault  Kind = "default"
	KindWally    Kind = "wally"
	KindHardware Kind = "hardware"
)

// ParseKind validates an authenticator name. Empty means KindDefault.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindDefault:
		return KindDefault, nil
	case KindWally, KindHardware:
		return Kind(s), nil
	default:
		return "", greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"auth": s})
	}
}

// Credentials is what an authenticator hands the backend on login: either
// a device descriptor or a phrase, never both.
type Credentials struct {
	HWDevice json.RawMessage
	Mnemonic string
	Password string
}

// Backend is the part of a gdk.Session an authenticator drives.
type Backend interface {
	GenerateMnemonic(ctx context.Context) (string, error)
	Login(ctx context.Context, hwDevice json.RawMessage, mnemonic, password string) (gdk.AuthHandler, error)
	LoginWithPin(ctx context.Context, pin string, pinData json.RawMessage) error
	RegisterUser(ctx context.Context, hwDevice json.RawMessage, mnemonic string) (gdk.AuthHandler, error)
	SetPin(ctx context.Context, mnemonic, pin, deviceID string) (json.RawMessage, error)
}

// Authenticator authenticates to the backend and answers device requests.
// Operations a variant cannot perform return ErrUnsupportedAction.
type Authenticator interface {
	// Name identifies the authenticator in logs and device descriptors.
	Name() string

	// Credentials returns the login material.
	Credentials() (Credentials, error)

	// Login starts a backend login. A nil handler means login already completed.
	Login(ctx context.Context, backend Backend) (gdk.AuthHandler, error)

	// Register registers the wallet with the backend.
	Register(ctx context.Context, backend Backend) (gdk.AuthHandler, error)

	// Create stores a new backend-generated phrase and registers it.
	Create(ctx context.Context, backend Backend) (gdk.AuthHandler, error)

	// SetMnemonic validates and stores an existing phrase.
	SetMnemonic(phrase string) error

	// SetPin replaces the stored phrase with backend-encrypted PIN data.
	SetPin(ctx context.Context, backend Backend, pin, deviceID string) (json.RawMessage, error)

	// ResolveDeviceAction answers a device request with a JSON response.
	ResolveDeviceAction(ctx context.Context, req gdk.DeviceRequest) (string, error)
}

// PinPrompt asks the user for a PIN.
type PinPrompt func() (string, error)

// Options carries what the authenticator variants need.
type Options struct {
	// Store persists the phrase and PIN data.
	Store keystore.Storage
	// Network selects key versions for locally derived keys.
	Network wallet.Network
	// WitnessScriptTypes lists signable input script types.
	WitnessScriptTypes []int
	// HWI drives the hardware signer.
	HWI *hwi.Client
	// PinPrompt reads a PIN for PIN login.
	PinPrompt PinPrompt
	// Logger receives debug output; nil discards it.
	Logger gdk.Logger
	// Notice receives prompts to interact with a hardware device.
	Notice io.Writer
}

// New builds the authenticator for kind. Hardware selection talks to the
// device, so it needs ctx.
func New(ctx context.Context, kind Kind, opts Options) (Authenticator, error) {
	if opts.Logger == nil {
		opts.Logger = gdk.NopLogger{}
	}

	switch kind {
	case KindDefault, "":
		opts.Logger.Debug("using standard backend authentication")
		return NewPin(opts.Store, opts.PinPrompt, opts.Logger), nil
	case KindWally:
		opts.Logger.Debug("using local key derivation for external authentication")
		return NewWally(opts.Store, opts.Network, opts.WitnessScriptTypes, opts.Logger), nil
	case KindHardware:
		opts.Logger.Debug("using hwi for hardware wallet authentication")
		return NewHardware(ctx, opts.HWI, opts.Logger, opts.Notice)
	default:
		return nil, fmt.Errorf("unknown authenticator %q: %w", kind, greenerr.ErrInvalidInput)
	}
}

// deviceDescriptor renders {"device":{"name":name}}.
func deviceDescriptor(name string) json.RawMessage {
	data, _ := json.Marshal(map[string]map[string]string{"device": {"name": name}}) //nolint:errchkjson // static shape
	return data
}

// marshalResponse renders a device response.
func marshalResponse(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding device response: %w", err)
	}
	return string(data), nil
}

func unsupported(authName, operation string) error {
	return greenerr.WithDetails(greenerr.ErrUnsupportedAction, map[string]string{
		"authenticator": authName,
		"action":        operation,
	})
}
