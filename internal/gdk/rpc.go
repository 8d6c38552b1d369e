package gdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mrz1836/greencli/internal/metrics"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// notificationBuffer is the subscription channel capacity.
const notificationBuffer = 16

// ErrNoAuthHandler indicates a method expected to return a pending action did not.
var ErrNoAuthHandler = errors.New("backend response carries no auth_handler")

// Options configures an RPCSession.
type Options struct {
	// URL of the gdk bridge. Notifications need a ws:// or ipc endpoint.
	URL string
	// Network is the backend network name passed on connect.
	Network string
	// Limiter throttles calls; nil uses DefaultRateLimiter.
	Limiter *RateLimiter
	// Logger receives call tracing; nil discards it.
	Logger Logger
	// Metrics records call counts and latency; nil uses metrics.Global.
	Metrics *metrics.Metrics
	// Retry bounds connection attempts; a zero value uses DefaultRetryConfig.
	Retry RetryConfig
}

// RPCSession is a Session backed by a JSON-RPC connection to a gdk bridge.
type RPCSession struct {
	client  *rpc.Client
	limiter *RateLimiter
	logger  Logger
	metrics *metrics.Metrics
}

// Dial connects to the bridge and opens a session on opts.Network.
// Transport failures are retried according to opts.Retry.
func Dial(ctx context.Context, opts Options) (*RPCSession, error) {
	cfg := opts.Retry
	if cfg.MaxAttempts == 0 {
		cfg = DefaultRetryConfig()
	}
	return Retry(ctx, cfg, func() (*RPCSession, error) {
		return dialOnce(ctx, opts)
	})
}

func dialOnce(ctx context.Context, opts Options) (*RPCSession, error) {
	client, err := rpc.DialContext(ctx, opts.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, greenerr.WithDetails(
			greenerr.WithCause(greenerr.ErrNetworkError, err),
			map[string]string{"url": opts.URL},
		)
	}

	s := NewRPCSession(client, opts)
	if _, err := s.Call(ctx, MethodConnect, map[string]string{"name": opts.Network}); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// NewRPCSession wraps an established client. It does not send connect.
func NewRPCSession(client *rpc.Client, opts Options) *RPCSession {
	s := &RPCSession{
		client:  client,
		limiter: opts.Limiter,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if s.limiter == nil {
		s.limiter = DefaultRateLimiter()
	}
	if s.logger == nil {
		s.logger = NopLogger{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Global
	}
	return s
}

// call performs one rate limited, measured JSON-RPC call.
func (s *RPCSession) call(ctx context.Context, result any, method string, args ...any) error {
	if err := s.limiter.Wait(ctx, method); err != nil {
		return err
	}

	start := time.Now()
	err := s.client.CallContext(ctx, result, method, args...)
	elapsed := time.Since(start)
	s.metrics.RecordRPCCall(elapsed, err)
	fields := map[string]any{"method": method, "elapsed_ms": elapsed.Milliseconds()}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.logger.DebugFields("gdk call", fields)

	return translateError(ctx, err)
}

// translateError maps backend-reported errors to ErrRemote and transport
// failures to ErrNetworkError. Context errors pass through unchanged.
func translateError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		payload := rpcErr.Error()
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
			if data, mErr := json.Marshal(dataErr.ErrorData()); mErr == nil {
				payload = string(data)
			}
		}
		return greenerr.Remote(payload)
	}
	return greenerr.WithCause(greenerr.ErrNetworkError, err)
}

// Call invokes a method whose result is returned directly.
func (s *RPCSession) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := s.call(ctx, &result, method, args...); err != nil {
		return nil, err
	}
	return result, nil
}

// CallAuth invokes a method returning {"auth_handler": id}.
func (s *RPCSession) CallAuth(ctx context.Context, method string, args ...any) (AuthHandler, error) {
	var result struct {
		AuthHandler json.RawMessage `json:"auth_handler"`
	}
	if err := s.call(ctx, &result, method, args...); err != nil {
		return nil, err
	}
	if len(result.AuthHandler) == 0 || string(result.AuthHandler) == "null" {
		return nil, fmt.Errorf("%s: %w", method, ErrNoAuthHandler)
	}
	return &rpcAuthHandler{id: result.AuthHandler, session: s}, nil
}

// GenerateMnemonic implements Session.
func (s *RPCSession) GenerateMnemonic(ctx context.Context) (string, error) {
	var phrase string
	if err := s.call(ctx, &phrase, MethodGenerateMnemonic); err != nil {
		return "", err
	}
	return phrase, nil
}

// Login implements Session.
func (s *RPCSession) Login(ctx context.Context, hwDevice json.RawMessage, mnemonic, password string) (AuthHandler, error) {
	return s.CallAuth(ctx, MethodLogin, deviceOrEmpty(hwDevice), mnemonic, password)
}

// LoginWithPin implements Session.
func (s *RPCSession) LoginWithPin(ctx context.Context, pin string, pinData json.RawMessage) error {
	_, err := s.Call(ctx, MethodLoginWithPin, pin, pinData)
	return err
}

// RegisterUser implements Session.
func (s *RPCSession) RegisterUser(ctx context.Context, hwDevice json.RawMessage, mnemonic string) (AuthHandler, error) {
	return s.CallAuth(ctx, MethodRegisterUser, deviceOrEmpty(hwDevice), mnemonic)
}

// SetPin implements Session.
func (s *RPCSession) SetPin(ctx context.Context, mnemonic, pin, deviceID string) (json.RawMessage, error) {
	return s.Call(ctx, MethodSetPin, mnemonic, pin, deviceID)
}

// Notifications subscribes to backend notifications. The returned channel
// is closed when ctx is done or the subscription fails.
func (s *RPCSession) Notifications(ctx context.Context) (<-chan json.RawMessage, error) {
	in := make(chan json.RawMessage, notificationBuffer)
	sub, err := s.client.Subscribe(ctx, "gdk", in, notificationsTopic)
	if err != nil {
		return nil, translateError(ctx, err)
	}

	out := make(chan json.RawMessage)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					s.logger.Debug("gdk notifications ended: %v", err)
				}
				return
			case n := <-in:
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close implements Session.
func (s *RPCSession) Close() {
	s.client.Close()
}

func deviceOrEmpty(hwDevice json.RawMessage) json.RawMessage {
	if len(hwDevice) == 0 {
		return json.RawMessage("{}")
	}
	return hwDevice
}

// rpcAuthHandler is an AuthHandler living in the bridge, addressed by id.
type rpcAuthHandler struct {
	id      json.RawMessage
	session *RPCSession
}

func (h *rpcAuthHandler) Status(ctx context.Context) (Status, error) {
	raw, err := h.session.Call(ctx, MethodAuthHandlerGetStatus, h.id)
	if err != nil {
		return nil, err
	}
	return ParseStatus(raw)
}

func (h *rpcAuthHandler) RequestCode(ctx context.Context, method string) error {
	_, err := h.session.Call(ctx, MethodAuthHandlerRequestCode, h.id, method)
	return err
}

func (h *rpcAuthHandler) ResolveCode(ctx context.Context, data string) error {
	_, err := h.session.Call(ctx, MethodAuthHandlerResolveCode, h.id, data)
	return err
}

func (h *rpcAuthHandler) Call(ctx context.Context) error {
	_, err := h.session.Call(ctx, MethodAuthHandlerCall, h.id)
	return err
}

var (
	_ Session     = (*RPCSession)(nil)
	_ AuthHandler = (*rpcAuthHandler)(nil)
)
