package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/keystore"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// softwareName identifies the software authenticator.
const softwareName = "software"

// Software hands the stored phrase to the backend, which does all signing.
type Software struct {
	keeper phraseKeeper
}

// NewSoftware creates a software authenticator over store.
func NewSoftware(store keystore.Storage, logger gdk.Logger) *Software {
	if logger == nil {
		logger = gdk.NopLogger{}
	}
	return &Software{keeper: phraseKeeper{store: store, logger: logger}}
}

// Name implements Authenticator.
func (s *Software) Name() string { return softwareName }

// Credentials implements Authenticator.
func (s *Software) Credentials() (Credentials, error) {
	phrase, err := s.keeper.store.Load()
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{HWDevice: json.RawMessage("{}"), Mnemonic: phrase}, nil
}

// Login implements Authenticator.
func (s *Software) Login(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	creds, err := s.Credentials()
	if err != nil {
		return nil, err
	}
	return backend.Login(ctx, creds.HWDevice, creds.Mnemonic, creds.Password)
}

// Register implements Authenticator.
func (s *Software) Register(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	creds, err := s.Credentials()
	if err != nil {
		return nil, err
	}
	return backend.RegisterUser(ctx, creds.HWDevice, creds.Mnemonic)
}

// Create implements Authenticator.
func (s *Software) Create(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	if err := s.keeper.generate(ctx, backend); err != nil {
		return nil, err
	}
	return s.Register(ctx, backend)
}

// SetMnemonic implements Authenticator.
func (s *Software) SetMnemonic(phrase string) error {
	return s.keeper.setMnemonic(phrase)
}

// SetPin implements Authenticator.
func (s *Software) SetPin(context.Context, Backend, string, string) (json.RawMessage, error) {
	return nil, unsupported(s.Name(), "setpin")
}

// ResolveDeviceAction implements Authenticator. The backend holds the keys,
// so there is never a device to answer for.
func (s *Software) ResolveDeviceAction(_ context.Context, req gdk.DeviceRequest) (string, error) {
	return "", unsupported(s.Name(), req.Action())
}

// Pin is the default authenticator: Software plus migration of the stored
// phrase to backend-encrypted PIN data, and PIN login once migrated.
type Pin struct {
	*Software
	prompt PinPrompt
}

// NewPin creates a PIN-capable software authenticator.
func NewPin(store keystore.Storage, prompt PinPrompt, logger gdk.Logger) *Pin {
	return &Pin{Software: NewSoftware(store, logger), prompt: prompt}
}

// Login logs in with the stored phrase, falling back to PIN data when no
// phrase is stored. PIN login completes without an auth handler.
func (p *Pin) Login(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	handler, err := p.Software.Login(ctx, backend)
	if err == nil || !errors.Is(err, greenerr.ErrNotFound) {
		return handler, err
	}

	pinData, err := p.keeper.store.LoadPinData()
	if err != nil {
		return nil, err
	}
	if p.prompt == nil {
		return nil, fmt.Errorf("pin login needs a pin prompt: %w", greenerr.ErrInvalidInput)
	}
	pin, err := p.prompt()
	if err != nil {
		return nil, err
	}

	p.keeper.logger.Debug("logging in with pin data")
	return nil, backend.LoginWithPin(ctx, pin, pinData)
}

// SetPin has the backend encrypt the stored phrase under pin, saves the
// returned PIN data and removes the plaintext phrase.
func (p *Pin) SetPin(ctx context.Context, backend Backend, pin, deviceID string) (json.RawMessage, error) {
	phrase, err := p.keeper.store.Load()
	if err != nil {
		return nil, err
	}

	pinData, err := backend.SetPin(ctx, phrase, pin, deviceID)
	if err != nil {
		return nil, err
	}
	if err := p.keeper.store.StorePinData(pinData); err != nil {
		return nil, err
	}
	if err := p.keeper.store.Erase(); err != nil {
		return nil, err
	}

	p.keeper.logger.Debug("mnemonic replaced by pin data for device %s", deviceID)
	return pinData, nil
}

var (
	_ Authenticator = (*Software)(nil)
	_ Authenticator = (*Pin)(nil)
)
