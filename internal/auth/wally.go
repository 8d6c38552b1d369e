package auth

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/greencrypto"
	"github.com/mrz1836/greencli/internal/keystore"
	"github.com/mrz1836/greencli/internal/metrics"
	"github.com/mrz1836/greencli/internal/wallet"
	"github.com/mrz1836/greencli/internal/wallet/bitcoin"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// wallyName is the device name the backend sees for the local signer.
const wallyName = "libwally software signer"

// Wally keeps the phrase on disk and answers every device request locally,
// so no key material ever reaches the backend.
type Wally struct {
	keeper  phraseKeeper
	net     wallet.Network
	allowed gdk.ScriptTypeSet
	metrics *metrics.Metrics
}

// NewWally creates a local signer. scriptTypes lists the input script types
// it will sign; empty means gdk.DefaultWitnessScriptTypes.
func NewWally(store keystore.Storage, net wallet.Network, scriptTypes []int, logger gdk.Logger) *Wally {
	if logger == nil {
		logger = gdk.NopLogger{}
	}
	if len(scriptTypes) == 0 {
		for _, st := range gdk.DefaultWitnessScriptTypes() {
			scriptTypes = append(scriptTypes, int(st))
		}
	}
	return &Wally{
		keeper:  phraseKeeper{store: store, logger: logger},
		net:     net,
		allowed: gdk.NewScriptTypeSet(scriptTypes),
		metrics: metrics.Global,
	}
}

// Name implements Authenticator.
func (w *Wally) Name() string { return wallyName }

// Credentials implements Authenticator. Only the descriptor is sent.
func (w *Wally) Credentials() (Credentials, error) {
	return Credentials{HWDevice: deviceDescriptor(w.Name())}, nil
}

// Login implements Authenticator.
func (w *Wally) Login(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	creds, _ := w.Credentials()
	return backend.Login(ctx, creds.HWDevice, "", "")
}

// Register implements Authenticator.
func (w *Wally) Register(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	creds, _ := w.Credentials()
	return backend.RegisterUser(ctx, creds.HWDevice, "")
}

// Create implements Authenticator.
func (w *Wally) Create(ctx context.Context, backend Backend) (gdk.AuthHandler, error) {
	if err := w.keeper.generate(ctx, backend); err != nil {
		return nil, err
	}
	return w.Register(ctx, backend)
}

// SetMnemonic implements Authenticator.
func (w *Wally) SetMnemonic(phrase string) error {
	return w.keeper.setMnemonic(phrase)
}

// SetPin implements Authenticator.
func (w *Wally) SetPin(context.Context, Backend, string, string) (json.RawMessage, error) {
	return nil, unsupported(w.Name(), "setpin")
}

// ResolveDeviceAction implements Authenticator.
func (w *Wally) ResolveDeviceAction(_ context.Context, req gdk.DeviceRequest) (resp string, err error) {
	defer func() { w.metrics.RecordDeviceRequest(err) }()

	switch r := req.(type) {
	case gdk.GetXpubsRequest:
		return w.withMaster(func(master *wallet.KeyPair) (string, error) { return w.getXpubs(master, r) })
	case gdk.SignMessageRequest:
		return w.withMaster(func(master *wallet.KeyPair) (string, error) { return w.signMessage(master, r) })
	case gdk.SignTxRequest:
		// Reject before touching the seed so no partial signature set exists
		if err := w.checkInputs(r.Utxos); err != nil {
			return "", err
		}
		return w.withMaster(func(master *wallet.KeyPair) (string, error) { return w.signTx(master, r) })
	default:
		return "", unsupported(w.Name(), req.Action())
	}
}

// withMaster derives the master key from the stored phrase for one request.
// The seed lives in locked memory and is wiped when fn returns.
func (w *Wally) withMaster(fn func(master *wallet.KeyPair) (string, error)) (string, error) {
	raw, err := w.keeper.seed()
	if err != nil {
		return "", err
	}
	seed := greencrypto.FromSlice(raw)
	defer seed.Destroy()

	master, err := wallet.Derive(seed.Bytes(), nil, w.net)
	if err != nil {
		return "", err
	}
	defer master.Zero()

	return fn(master)
}

func (w *Wally) getXpubs(master *wallet.KeyPair, req gdk.GetXpubsRequest) (string, error) {
	xpubs := make([]string, 0, len(req.Paths))
	for _, path := range req.Paths {
		key, err := master.Derive(path)
		if err != nil {
			return "", err
		}
		xpub, err := key.ExtendedPublicKey()
		release(master, key)
		if err != nil {
			return "", err
		}
		xpubs = append(xpubs, xpub)
	}
	w.keeper.logger.Debug("resolved %d xpubs", len(xpubs))
	return marshalResponse(map[string][]string{"xpubs": xpubs})
}

func (w *Wally) signMessage(master *wallet.KeyPair, req gdk.SignMessageRequest) (string, error) {
	key, err := master.Derive(req.Path)
	if err != nil {
		return "", err
	}
	defer release(master, key)

	w.keeper.logger.Debug("signing message with path %s", wallet.Path(req.Path))
	sig, err := key.SignHash(bitcoin.MessageHash([]byte(req.Message)))
	if err != nil {
		return "", err
	}
	return marshalResponse(map[string]string{"signature": hex.EncodeToString(sig)})
}

func (w *Wally) checkInputs(utxos []gdk.Utxo) error {
	for i, utxo := range utxos {
		if !w.allowed.Contains(utxo.ScriptType) {
			return greenerr.WithDetails(greenerr.ErrUnsupportedInputType, map[string]string{
				"input":       strconv.Itoa(i),
				"script_type": utxo.ScriptType.String(),
			})
		}
	}
	return nil
}

func (w *Wally) signTx(master *wallet.KeyPair, req gdk.SignTxRequest) (string, error) {
	txBytes, err := hex.DecodeString(req.Transaction)
	if err != nil {
		return "", greenerr.WithCause(greenerr.ErrInvalidInput, err)
	}
	tx, err := wallet.DecodeTransaction(txBytes)
	if err != nil {
		return "", greenerr.WithCause(greenerr.ErrInvalidInput, err)
	}

	signatures := make([]string, 0, len(req.Utxos))
	for i, utxo := range req.Utxos {
		key, err := master.Derive(utxo.UserPath)
		if err != nil {
			return "", err
		}
		sig, err := key.SignWitnessInput(tx, i, utxo.PrevoutScript, utxo.Satoshi)
		release(master, key)
		if err != nil {
			return "", greenerr.WithDetails(greenerr.WithCause(greenerr.ErrInvalidInput, err),
				map[string]string{"input": strconv.Itoa(i)})
		}
		signatures = append(signatures, hex.EncodeToString(sig))
		w.keeper.logger.Debug("signed input %d with path %s", i, wallet.Path(utxo.UserPath))
	}
	return marshalResponse(map[string][]string{"signatures": signatures})
}

// release zeroes a derived key. An empty path yields master itself, which
// withMaster still needs.
func release(master, key *wallet.KeyPair) {
	if key != master {
		key.Zero()
	}
}

var _ Authenticator = (*Wally)(nil)
