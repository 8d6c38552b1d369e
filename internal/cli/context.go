package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/auth"
	"github.com/mrz1836/greencli/internal/config"
	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/hwi"
	"github.com/mrz1836/greencli/internal/keystore"
	"github.com/mrz1836/greencli/internal/output"
	"github.com/mrz1836/greencli/internal/resolver"
	"github.com/mrz1836/greencli/internal/wallet"
)

var _ gdk.Logger = (*config.Logger)(nil)

// Dialer opens a backend session.
type Dialer func(ctx context.Context, cfg *config.Config, logger *config.Logger) (gdk.Session, error)

// dialBridge connects to the configured gdk bridge.
func dialBridge(ctx context.Context, cfg *config.Config, logger *config.Logger) (gdk.Session, error) {
	retry := gdk.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Backend.DialAttempts

	s, err := gdk.Dial(ctx, gdk.Options{
		URL:     cfg.Backend.URL,
		Network: cfg.Network,
		Limiter: gdk.NewRateLimiter(cfg.Backend.RateLimit, cfg.Backend.RateBurst),
		Logger:  logger,
		Retry:   retry,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CommandContext holds dependencies for CLI commands. The session and the
// authenticator are created on first use and login happens at most once.
type CommandContext struct {
	Cfg   *config.Config
	Log   *config.Logger
	Fmt   *output.Formatter
	Store keystore.Storage
	Dial  Dialer

	// HWI drives hardware devices for --auth hardware.
	HWI *hwi.Client
	// TwoFactor answers 2FA prompts.
	TwoFactor resolver.TwoFactorResolver
	// PinPrompt reads the PIN for PIN data login.
	PinPrompt auth.PinPrompt
	// Stdin feeds "-" arguments.
	Stdin io.Reader
	// Notice receives prompts that must not pollute stdout.
	Notice io.Writer

	session  gdk.Session
	authn    auth.Authenticator
	loggedIn bool
}

// NewCommandContext creates a context with the given dependencies and
// console defaults for everything else.
func NewCommandContext(cfg *config.Config, logger *config.Logger, formatter *output.Formatter) *CommandContext {
	if logger == nil {
		logger = config.NullLogger()
	}
	hwiPath := "hwi"
	if cfg != nil && cfg.HWI.Path != "" {
		hwiPath = cfg.HWI.Path
	}
	return &CommandContext{
		Cfg:       cfg,
		Log:       logger,
		Fmt:       formatter,
		Dial:      dialBridge,
		HWI:       hwi.NewClient(hwiPath, hwi.ExecRunner{}, logger),
		TwoFactor: resolver.NewConsole(os.Stdin, os.Stderr),
		PinPrompt: func() (string, error) {
			pin, err := promptPasswordFn("Enter PIN: ")
			if err != nil {
				return "", err
			}
			return string(pin), nil
		},
		Stdin:  os.Stdin,
		Notice: os.Stderr,
	}
}

// WithStore sets the credential storage.
func (c *CommandContext) WithStore(s keystore.Storage) *CommandContext {
	c.Store = s
	return c
}

// WithDialer sets how the backend session is opened.
func (c *CommandContext) WithDialer(d Dialer) *CommandContext {
	c.Dial = d
	return c
}

// WithTwoFactor sets the 2FA resolver.
func (c *CommandContext) WithTwoFactor(r resolver.TwoFactorResolver) *CommandContext {
	c.TwoFactor = r
	return c
}

type cmdContextKey struct{}

// SetCmdContext attaches cc to the command's context.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext returns the CommandContext attached to cmd, or nil.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(cmdContextKey{}).(*CommandContext)
	return cc
}

// Session returns the backend session, connecting on first use.
func (c *CommandContext) Session(ctx context.Context) (gdk.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	s, err := c.Dial(ctx, c.Cfg, c.Log)
	if err != nil {
		return nil, err
	}
	c.session = s
	return s, nil
}

// Authenticator returns the configured authenticator, building it on first use.
func (c *CommandContext) Authenticator(ctx context.Context) (auth.Authenticator, error) {
	if c.authn != nil {
		return c.authn, nil
	}

	kind, err := auth.ParseKind(c.Cfg.Auth)
	if err != nil {
		return nil, err
	}

	opts := auth.Options{
		Store:              c.Store,
		WitnessScriptTypes: c.Cfg.Signing.WitnessScriptTypes,
		HWI:                c.HWI,
		PinPrompt:          c.PinPrompt,
		Logger:             c.Log,
		Notice:             c.Notice,
	}
	if kind == auth.KindWally {
		if opts.Network, err = wallet.NetworkByName(c.Cfg.Network); err != nil {
			return nil, err
		}
	}

	a, err := auth.New(ctx, kind, opts)
	if err != nil {
		return nil, err
	}
	c.authn = a
	return a, nil
}

// Resolver returns an action resolver wired to the authenticator and the
// 2FA resolver.
func (c *CommandContext) Resolver(ctx context.Context) (*resolver.Resolver, error) {
	a, err := c.Authenticator(ctx)
	if err != nil {
		return nil, err
	}
	return &resolver.Resolver{Device: a, TwoFactor: c.TwoFactor, Logger: c.Log}, nil
}

// Resolve drives handler to completion. A nil handler means the operation
// already completed and yields a nil result.
func (c *CommandContext) Resolve(ctx context.Context, handler gdk.AuthHandler) (json.RawMessage, error) {
	if handler == nil {
		return nil, nil
	}
	r, err := c.Resolver(ctx)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, handler)
}

// EnsureLogin returns a logged in session, logging in on the first call.
func (c *CommandContext) EnsureLogin(ctx context.Context) (gdk.Session, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	if c.loggedIn {
		return s, nil
	}

	a, err := c.Authenticator(ctx)
	if err != nil {
		return nil, err
	}
	handler, err := a.Login(ctx, s)
	if err != nil {
		return nil, err
	}
	// PIN login completes without a handler
	if _, err = c.Resolve(ctx, handler); err != nil {
		return nil, err
	}

	c.Log.Debug("logged in with %s", a.Name())
	c.loggedIn = true
	return s, nil
}

// Call logs in if needed and invokes a method returning its result directly.
func (c *CommandContext) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	s, err := c.EnsureLogin(ctx)
	if err != nil {
		return nil, err
	}
	return s.Call(ctx, method, args...)
}

// CallAuth logs in if needed, invokes a method returning a pending action
// and resolves it.
func (c *CommandContext) CallAuth(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	s, err := c.EnsureLogin(ctx)
	if err != nil {
		return nil, err
	}
	handler, err := s.CallAuth(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return c.Resolve(ctx, handler)
}

// Close releases the backend session.
func (c *CommandContext) Close() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}
