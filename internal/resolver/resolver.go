// Package resolver drives pending backend actions to completion, answering
// two-factor and device challenges along the way.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/metrics"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// DeviceResolver answers device requests, normally an auth.Authenticator.
type DeviceResolver interface {
	ResolveDeviceAction(ctx context.Context, req gdk.DeviceRequest) (string, error)
}

// TwoFactorResolver picks a 2FA method and supplies the received code.
type TwoFactorResolver interface {
	// SelectMethod returns one of methods.
	SelectMethod(methods []string) (string, error)

	// Resolve returns the code for challenge.
	Resolve(challenge gdk.TwoFactorChallenge) (string, error)
}

// Resolver runs the auth handler state machine.
type Resolver struct {
	Device    DeviceResolver
	TwoFactor TwoFactorResolver
	Logger    gdk.Logger
	Metrics   *metrics.Metrics
}

// Resolve polls handler until it reaches done or error. There is no bound
// on the number of transitions; ctx is checked before each one.
func (r *Resolver) Resolve(ctx context.Context, handler gdk.AuthHandler) (json.RawMessage, error) {
	logger := r.Logger
	if logger == nil {
		logger = gdk.NopLogger{}
	}
	m := r.Metrics
	if m == nil {
		m = metrics.Global
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status, err := handler.Status(ctx)
		if err != nil {
			return nil, err
		}
		logger.Debug("auth handler state = %s", status.State())
		m.RecordTransition(status.State())

		switch s := status.(type) {
		case gdk.Done:
			return s.Result, nil

		case gdk.Failed:
			logger.Debug("auth handler failed: %s", s.Error)
			return nil, greenerr.Remote(string(s.Payload))

		case gdk.RequestCode:
			method, err := r.selectMethod(s.Methods)
			if err != nil {
				return nil, err
			}
			logger.Debug("requesting code for %s", method)
			if err := handler.RequestCode(ctx, method); err != nil {
				return nil, err
			}

		case gdk.ResolveCode:
			data, err := r.resolveChallenge(ctx, logger, s.Challenge)
			if err != nil {
				return nil, err
			}
			if err := handler.ResolveCode(ctx, data); err != nil {
				return nil, err
			}

		case gdk.Call:
			if err := handler.Call(ctx); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("%w: %T", gdk.ErrUnknownStatus, status)
		}
	}
}

func (r *Resolver) selectMethod(methods []string) (string, error) {
	if r.TwoFactor == nil {
		return "", greenerr.WithDetails(greenerr.ErrUnsupportedAction, map[string]string{"action": "request_code"})
	}
	return r.TwoFactor.SelectMethod(methods)
}

func (r *Resolver) resolveChallenge(ctx context.Context, logger gdk.Logger, challenge gdk.Challenge) (string, error) {
	switch c := challenge.(type) {
	case gdk.DeviceRequest:
		logger.Debug("resolving %s with authentication device", c.Action())
		if r.Device == nil {
			return "", greenerr.WithDetails(greenerr.ErrUnsupportedAction, map[string]string{"action": c.Action()})
		}
		resp, err := r.Device.ResolveDeviceAction(ctx, c)
		if err != nil {
			return "", err
		}
		logger.Debug("device resolved %s", c.Action())
		return resp, nil

	case gdk.TwoFactorChallenge:
		logger.Debug("resolving two factor authentication for %s", c.Action)
		if r.TwoFactor == nil {
			return "", greenerr.WithDetails(greenerr.ErrUnsupportedAction, map[string]string{"action": "resolve_code"})
		}
		return r.TwoFactor.Resolve(c)

	default:
		return "", fmt.Errorf("%w: challenge %T", gdk.ErrInvalidStatus, challenge)
	}
}
