// Package gdk is the boundary to the remote wallet backend: the pending
// action (auth handler) protocol, its typed statuses and device requests,
// and a JSON-RPC session to a gdk bridge.
package gdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Wire values of the "status" field.
const (
	statusDone        = "done"
	statusError       = "error"
	statusRequestCode = "request_code"
	statusResolveCode = "resolve_code"
	statusCall        = "call"
)

var (
	// ErrInvalidStatus indicates a status payload that could not be decoded.
	ErrInvalidStatus = errors.New("invalid auth handler status")

	// ErrUnknownStatus indicates a status value outside the protocol.
	ErrUnknownStatus = errors.New("unknown auth handler status")
)

// Status is the current state of a pending action. It is one of Done,
// Failed, RequestCode, ResolveCode or Call.
type Status interface {
	// State returns the wire name of the state.
	State() string
}

// Done is terminal: the action completed with Result.
type Done struct {
	Result json.RawMessage
}

// Failed is terminal: the backend rejected the action. Payload is the full
// status object as received.
type Failed struct {
	Error   string
	Payload json.RawMessage
}

// RequestCode asks the caller to pick one of Methods to receive a 2FA code.
type RequestCode struct {
	Action  string
	Methods []string
}

// ResolveCode asks the caller for data answering Challenge.
type ResolveCode struct {
	Challenge Challenge
}

// Call asks the caller to let the backend proceed.
type Call struct{}

// State implements Status.
func (Done) State() string { return statusDone }

// State implements Status.
func (Failed) State() string { return statusError }

// State implements Status.
func (RequestCode) State() string { return statusRequestCode }

// State implements Status.
func (ResolveCode) State() string { return statusResolveCode }

// State implements Status.
func (Call) State() string { return statusCall }

// Challenge is what a ResolveCode status wants answered: either a
// TwoFactorChallenge or a DeviceRequest.
type Challenge interface {
	challenge()
}

// TwoFactorChallenge asks for a code the user received out of band.
type TwoFactorChallenge struct {
	Action            string
	Method            string
	AttemptsRemaining string
}

func (TwoFactorChallenge) challenge() {}

type statusWire struct {
	Status            string          `json:"status"`
	Result            json.RawMessage `json:"result"`
	Error             string          `json:"error"`
	Action            string          `json:"action"`
	Method            string          `json:"method"`
	Methods           []string        `json:"methods"`
	AttemptsRemaining json.RawMessage `json:"attempts_remaining"`
	Device            json.RawMessage `json:"device"`
	RequiredData      json.RawMessage `json:"required_data"`
}

// ParseStatus decodes a status object returned by the backend.
func ParseStatus(raw []byte) (Status, error) {
	var w statusWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}

	switch w.Status {
	case statusDone:
		return Done{Result: w.Result}, nil
	case statusError:
		return Failed{Error: w.Error, Payload: append(json.RawMessage(nil), raw...)}, nil
	case statusRequestCode:
		return RequestCode{Action: w.Action, Methods: w.Methods}, nil
	case statusCall:
		return Call{}, nil
	case statusResolveCode:
		if hasDevice(w.Device) {
			req, err := ParseDeviceRequest(w.RequiredData)
			if err != nil {
				return nil, err
			}
			return ResolveCode{Challenge: req}, nil
		}
		return ResolveCode{Challenge: TwoFactorChallenge{
			Action:            w.Action,
			Method:            w.Method,
			AttemptsRemaining: unquote(w.AttemptsRemaining),
		}}, nil
	case "":
		return nil, fmt.Errorf("%w: missing status field", ErrInvalidStatus)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, w.Status)
	}
}

// hasDevice reports whether a resolve_code status names a device. Absent,
// null and empty objects all mean a 2FA challenge.
func hasDevice(device json.RawMessage) bool {
	trimmed := bytes.TrimSpace(device)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		return len(obj) > 0
	}
	return true
}

// unquote renders a JSON scalar as display text.
func unquote(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
