package auth

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/hwi"
	"github.com/mrz1836/greencli/internal/metrics"
	"github.com/mrz1836/greencli/internal/wallet"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// Hardware answers device requests with an hwi driven signer. It never
// sees key material, so phrase operations are unsupported.
type Hardware struct {
	client  *hwi.Client
	device  hwi.Device
	logger  gdk.Logger
	notice  io.Writer
	metrics *metrics.Metrics
}

// NewHardware selects the single attached device. notice receives the
// "check the device" prompts; nil discards them.
func NewHardware(ctx context.Context, client *hwi.Client, logger gdk.Logger, notice io.Writer) (*Hardware, error) {
	if client == nil {
		client = hwi.NewClient("", nil, nil)
	}
	if logger == nil {
		logger = gdk.NopLogger{}
	}
	if notice == nil {
		notice = io.Discard
	}

	device, err := client.SelectDevice(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("hwi device: %s", device.Name())

	return &Hardware{client: client, device: device, logger: logger, notice: notice, metrics: metrics.Global}, nil
}

// Name implements Authenticator, e.g. "ledger@0001:0007:00".
func (h *Hardware) Name() string { return h.device.Name() }

// Credentials implements Authenticator.
func (h *Hardware) Credentials() (Credentials, error) {
	return Credentials{HWDevice: deviceDescriptor(h.Name())}, nil
}

// Login implements Authenticator.
func (h *Hardware) Login(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	creds, _ := h.Credentials()
	return backend.Login(ctx, creds.HWDevice, "", "")
}

// Register implements Authenticator.
func (h *Hardware) Register(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	creds, _ := h.Credentials()
	return backend.RegisterUser(ctx, creds.HWDevice, "")
}

// Create implements Authenticator.
func (h *Hardware) Create(context.Context, Backend) (gdk.AuthHandler, error) {
	return nil, unsupported(h.Name(), "create")
}

// SetMnemonic implements Authenticator.
func (h *Hardware) SetMnemonic(string) error {
	return unsupported(h.Name(), "setmnemonic")
}

// SetPin implements Authenticator.
func (h *Hardware) SetPin(context.Context, Backend, string, string) (json.RawMessage, error) {
	return nil, unsupported(h.Name(), "setpin")
}

// ResolveDeviceAction implements Authenticator. Transaction signing is not
// available through hwi here.
func (h *Hardware) ResolveDeviceAction(ctx context.Context, req gdk.DeviceRequest) (resp string, err error) {
	defer func() { h.metrics.RecordDeviceRequest(err) }()

	switch r := req.(type) {
	case gdk.GetXpubsRequest:
		return h.getXpubs(ctx, r)
	case gdk.SignMessageRequest:
		return h.signMessage(ctx, r)
	default:
		return "", unsupported(h.Name(), req.Action())
	}
}

func (h *Hardware) getXpubs(ctx context.Context, req gdk.GetXpubsRequest) (string, error) {
	xpubs := make([]string, 0, len(req.Paths))
	for _, path := range req.Paths {
		xpub, err := h.client.GetXpub(ctx, h.device, wallet.Path(path).String())
		if err != nil {
			return "", greenerr.WithCause(greenerr.ErrDeviceUnavailable, err)
		}
		xpubs = append(xpubs, xpub)
	}
	return marshalResponse(map[string][]string{"xpubs": xpubs})
}

func (h *Hardware) signMessage(ctx context.Context, req gdk.SignMessageRequest) (string, error) {
	_, _ = fmt.Fprintf(h.notice, "Signing with hardware device %s\nPlease check the device for interaction\n", h.Name())

	compact, err := h.client.SignMessage(ctx, h.device, req.Message, wallet.Path(req.Path).String())
	if err != nil {
		return "", greenerr.WithCause(greenerr.ErrDeviceUnavailable, err)
	}
	der, err := wallet.CompactToDER(compact)
	if err != nil {
		return "", greenerr.WithCause(greenerr.ErrDeviceUnavailable, err)
	}
	return marshalResponse(map[string]string{"signature": hex.EncodeToString(der)})
}

var _ Authenticator = (*Hardware)(nil)
