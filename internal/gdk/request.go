package gdk

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Device request actions.
const (
	ActionGetXpubs    = "get_xpubs"
	ActionSignMessage = "sign_message"
	ActionSignTx      = "sign_tx"
)

// ErrInvalidDeviceRequest indicates required_data could not be decoded.
var ErrInvalidDeviceRequest = errors.New("invalid device request")

// DeviceRequest is a signing backend challenge. It is one of
// GetXpubsRequest, SignMessageRequest, SignTxRequest or UnknownDeviceRequest.
type DeviceRequest interface {
	Challenge
	// Action returns the wire action name.
	Action() string
}

// GetXpubsRequest asks for one extended public key per path.
type GetXpubsRequest struct {
	Paths [][]uint32
}

// SignMessageRequest asks for a signature of Message by the key at Path.
type SignMessageRequest struct {
	Path    []uint32
	Message string
}

// SignTxRequest asks for one signature per input of Transaction.
type SignTxRequest struct {
	// Transaction is the hex serialized unsigned transaction.
	Transaction string
	// Utxos describes the spent outputs in input order.
	Utxos []Utxo
}

// UnknownDeviceRequest is an action this client does not know.
type UnknownDeviceRequest struct {
	Name string
}

// Utxo is the per-input data needed to sign a transaction input.
type Utxo struct {
	ScriptType    ScriptType
	PrevoutScript []byte
	Satoshi       int64
	UserPath      []uint32
}

func (GetXpubsRequest) challenge()      {}
func (SignMessageRequest) challenge()   {}
func (SignTxRequest) challenge()        {}
func (UnknownDeviceRequest) challenge() {}

// Action implements DeviceRequest.
func (GetXpubsRequest) Action() string { return ActionGetXpubs }

// Action implements DeviceRequest.
func (SignMessageRequest) Action() string { return ActionSignMessage }

// Action implements DeviceRequest.
func (SignTxRequest) Action() string { return ActionSignTx }

// Action implements DeviceRequest.
func (r UnknownDeviceRequest) Action() string { return r.Name }

type requiredDataWire struct {
	Action      string          `json:"action"`
	Paths       [][]uint32      `json:"paths"`
	Path        []uint32        `json:"path"`
	Message     string          `json:"message"`
	Transaction json.RawMessage `json:"transaction"`
}

type txDetailsWire struct {
	Transaction  string     `json:"transaction"`
	UsedUtxos    []utxoWire `json:"used_utxos"`
	OldUsedUtxos []utxoWire `json:"old_used_utxos"`
}

type utxoWire struct {
	ScriptType    int      `json:"script_type"`
	PrevoutScript string   `json:"prevout_script"`
	Satoshi       int64    `json:"satoshi"`
	UserPath      []uint32 `json:"user_path"`
}

// ParseDeviceRequest decodes the required_data object of a device challenge.
func ParseDeviceRequest(raw []byte) (DeviceRequest, error) {
	var w requiredDataWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDeviceRequest, err)
	}

	switch w.Action {
	case ActionGetXpubs:
		return GetXpubsRequest{Paths: w.Paths}, nil
	case ActionSignMessage:
		return SignMessageRequest{Path: w.Path, Message: w.Message}, nil
	case ActionSignTx:
		return parseSignTx(w.Transaction)
	case "":
		return nil, fmt.Errorf("%w: missing action", ErrInvalidDeviceRequest)
	default:
		return UnknownDeviceRequest{Name: w.Action}, nil
	}
}

func parseSignTx(raw json.RawMessage) (SignTxRequest, error) {
	var details txDetailsWire
	if err := json.Unmarshal(raw, &details); err != nil {
		return SignTxRequest{}, fmt.Errorf("%w: transaction: %w", ErrInvalidDeviceRequest, err)
	}

	// Fee bumps carry the spent outputs as old_used_utxos
	wires := details.UsedUtxos
	if len(wires) == 0 {
		wires = details.OldUsedUtxos
	}

	utxos := make([]Utxo, 0, len(wires))
	for i, u := range wires {
		script, err := hex.DecodeString(u.PrevoutScript)
		if err != nil {
			return SignTxRequest{}, fmt.Errorf("%w: utxo %d prevout_script: %w", ErrInvalidDeviceRequest, i, err)
		}
		utxos = append(utxos, Utxo{
			ScriptType:    ScriptType(u.ScriptType),
			PrevoutScript: script,
			Satoshi:       u.Satoshi,
			UserPath:      u.UserPath,
		})
	}

	return SignTxRequest{Transaction: details.Transaction, Utxos: utxos}, nil
}
