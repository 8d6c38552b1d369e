package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/greencli/internal/config"
	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/keystore"
	"github.com/mrz1836/greencli/internal/output"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// fakeCall is one recorded backend call.
type fakeCall struct {
	method string
	args   []any
}

// fakeSession is an in-memory gdk.Session.
type fakeSession struct {
	mu sync.Mutex

	results  map[string]json.RawMessage
	errs     map[string]error
	handlers map[string]gdk.AuthHandler
	calls    []fakeCall

	logins        int
	loginMnemonic string
	pinLogins     int
	pin           string
	registered    int
	closed        bool
	notifications chan json.RawMessage
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		results:  map[string]json.RawMessage{},
		errs:     map[string]error{},
		handlers: map[string]gdk.AuthHandler{},
	}
}

func (f *fakeSession) GenerateMnemonic(context.Context) (string, error) {
	return testMnemonic, nil
}

func (f *fakeSession) Login(_ context.Context, _ json.RawMessage, mnemonic, _ string) (gdk.AuthHandler, error) {
	f.logins++
	f.loginMnemonic = mnemonic
	return &doneHandler{result: json.RawMessage(`{}`)}, nil
}

func (f *fakeSession) LoginWithPin(_ context.Context, pin string, _ json.RawMessage) error {
	f.pinLogins++
	f.pin = pin
	return nil
}

func (f *fakeSession) RegisterUser(context.Context, json.RawMessage, string) (gdk.AuthHandler, error) {
	f.registered++
	return &doneHandler{result: json.RawMessage(`{}`)}, nil
}

func (f *fakeSession) SetPin(context.Context, string, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"encrypted_data":"00"}`), nil
}

func (f *fakeSession) record(method string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{method: method, args: args})
}

func (f *fakeSession) Call(_ context.Context, method string, args ...any) (json.RawMessage, error) {
	f.record(method, args)
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	if r, ok := f.results[method]; ok {
		return r, nil
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeSession) CallAuth(_ context.Context, method string, args ...any) (gdk.AuthHandler, error) {
	f.record(method, args)
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	if h, ok := f.handlers[method]; ok {
		return h, nil
	}
	result, ok := f.results[method]
	if !ok {
		result = json.RawMessage(`{}`)
	}
	return &doneHandler{result: result}, nil
}

func (f *fakeSession) Notifications(context.Context) (<-chan json.RawMessage, error) {
	return f.notifications, nil
}

func (f *fakeSession) Close() { f.closed = true }

// lastCall returns the most recent call of method.
func (f *fakeSession) lastCall(t *testing.T, method string) fakeCall {
	t.Helper()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method {
			return f.calls[i]
		}
	}
	require.Failf(t, "call not recorded", "method %s", method)
	return fakeCall{}
}

// methods lists recorded method names in order.
func (f *fakeSession) methods() []string {
	names := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		names = append(names, c.method)
	}
	return names
}

// doneHandler completes immediately with result.
type doneHandler struct {
	result json.RawMessage
}

func (h *doneHandler) Status(context.Context) (gdk.Status, error) {
	return gdk.Done{Result: h.result}, nil
}
func (h *doneHandler) RequestCode(context.Context, string) error { return nil }
func (h *doneHandler) ResolveCode(context.Context, string) error { return nil }
func (h *doneHandler) Call(context.Context) error                { return nil }

// scriptedHandler walks through statuses and records every answer.
type scriptedHandler struct {
	statuses []gdk.Status
	pos      int
	answers  []string
}

func (h *scriptedHandler) Status(context.Context) (gdk.Status, error) {
	return h.statuses[h.pos], nil
}

func (h *scriptedHandler) RequestCode(_ context.Context, method string) error {
	h.answers = append(h.answers, "request_code:"+method)
	h.pos++
	return nil
}

func (h *scriptedHandler) ResolveCode(_ context.Context, data string) error {
	h.answers = append(h.answers, "resolve_code:"+data)
	h.pos++
	return nil
}

func (h *scriptedHandler) Call(context.Context) error {
	h.answers = append(h.answers, "call")
	h.pos++
	return nil
}

// fakeTwoFactor answers 2FA prompts with fixed values.
type fakeTwoFactor struct {
	code     string
	selected []string
}

func (f *fakeTwoFactor) SelectMethod(methods []string) (string, error) {
	f.selected = methods
	return methods[0], nil
}

func (f *fakeTwoFactor) Resolve(gdk.TwoFactorChallenge) (string, error) {
	return f.code, nil
}

// testEnv bundles a CommandContext wired to fakes.
type testEnv struct {
	cc      *CommandContext
	session *fakeSession
	store   *keystore.FileStore
	out     *bytes.Buffer
	notice  *bytes.Buffer
	dials   int
}

// newTestEnv builds a context on a temp config dir with the fake backend.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		session: newFakeSession(),
		store:   keystore.NewFileStore(t.TempDir()),
		out:     &bytes.Buffer{},
		notice:  &bytes.Buffer{},
	}

	cc := NewCommandContext(config.Defaults(), config.NullLogger(), output.NewFormatter(env.out, false))
	cc.WithStore(env.store).
		WithTwoFactor(&fakeTwoFactor{code: "123456"}).
		WithDialer(func(context.Context, *config.Config, *config.Logger) (gdk.Session, error) {
			env.dials++
			return env.session, nil
		})
	cc.Stdin = strings.NewReader("")
	cc.Notice = env.notice
	env.cc = cc
	return env
}

// withMnemonic stores the test phrase.
func (e *testEnv) withMnemonic(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, e.store.Store(testMnemonic))
	return e
}

// command returns a cobra command carrying the env's context.
func (e *testEnv) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	SetCmdContext(cmd, e.cc)
	return cmd
}

// withMockPrompts replaces prompt functions for testing and restores on cleanup.
func withMockPrompts(t *testing.T, passphrase string) {
	t.Helper()
	origPW := promptPasswordFn
	origNew := promptNewPassphraseFn
	t.Cleanup(func() {
		promptPasswordFn = origPW
		promptNewPassphraseFn = origNew
	})
	promptPasswordFn = func(string) ([]byte, error) {
		return []byte(passphrase), nil
	}
	promptNewPassphraseFn = func() ([]byte, error) {
		return []byte(passphrase), nil
	}
}
