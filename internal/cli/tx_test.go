package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/greencli/internal/gdk"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

const testAddress = "2N2yMH3wBGvwpYPYx3xDKbLq2iBzbZs9Pfn"

func TestParseAddressee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Addressee
		wantErr bool
	}{
		{name: "valid", input: testAddress + ":1000", want: Addressee{Address: testAddress, Satoshi: 1000}},
		{name: "uri style address", input: "bitcoin:" + testAddress + ":5", want: Addressee{Address: "bitcoin:" + testAddress, Satoshi: 5}},
		{name: "no colon", input: testAddress, wantErr: true},
		{name: "empty address", input: ":1000", wantErr: true},
		{name: "empty amount", input: testAddress + ":", wantErr: true},
		{name: "fractional amount", input: testAddress + ":0.5", wantErr: true},
		{name: "zero amount", input: testAddress + ":0", wantErr: true},
		{name: "negative amount", input: testAddress + ":-1", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseAddressee(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, greenerr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// createTransactionCommand mirrors createtransaction's flags on a fresh command.
func createTransactionCommand(env *testEnv) *cobra.Command {
	cmd := env.command()
	cmd.Flags().StringArrayVarP(&createAddressees, "addressee", "a", nil, "")
	cmd.Flags().Uint32Var(&createSubaccount, "subaccount", 0, "")
	cmd.Flags().Int64VarP(&createFeeRate, "fee-rate", "f", 0, "")
	return cmd
}

func TestCreateTransaction(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)
	env.session.results[gdk.MethodCreateTransaction] = json.RawMessage(`{"transaction":"0200"}`)

	cmd := createTransactionCommand(env)
	require.NoError(t, cmd.ParseFlags([]string{"-a", testAddress + ":1000", "-a", testAddress + ":2000", "--subaccount", "1"}))

	require.NoError(t, runCreateTransaction(cmd, nil))

	call := env.session.lastCall(t, gdk.MethodCreateTransaction)
	require.Len(t, call.args, 1)
	details, ok := call.args[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, uint32(1), details["subaccount"])
	assert.Equal(t, []Addressee{{testAddress, 1000}, {testAddress, 2000}}, details["addressees"])
	assert.NotContains(t, details, "fee_rate")
	assert.JSONEq(t, `{"transaction":"0200"}`, env.out.String())
}

func TestCreateTransaction_FeeRate(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)

	cmd := createTransactionCommand(env)
	require.NoError(t, cmd.ParseFlags([]string{"-a", testAddress + ":1000", "-f", "2000"}))

	require.NoError(t, runCreateTransaction(cmd, nil))

	details, ok := env.session.lastCall(t, gdk.MethodCreateTransaction).args[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(2000), details["fee_rate"])
}

func TestCreateTransaction_BadAddressee(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)

	cmd := createTransactionCommand(env)
	require.NoError(t, cmd.ParseFlags([]string{"-a", testAddress}))

	err := runCreateTransaction(cmd, nil)
	require.ErrorIs(t, err, greenerr.ErrInvalidInput)
	assert.Empty(t, env.session.calls, "nothing reaches the backend")
}

func TestSignTransaction_FromStdin(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)
	env.cc.Stdin = strings.NewReader(`{"transaction":"0200"}`)
	env.session.results[gdk.MethodSignTransaction] = json.RawMessage(`{"transaction":"0200ff","error":""}`)

	require.NoError(t, runSignTransaction(env.command(), []string{"-"}))

	call := env.session.lastCall(t, gdk.MethodSignTransaction)
	assert.JSONEq(t, `{"transaction":"0200"}`, string(call.args[0].(json.RawMessage)))
	assert.JSONEq(t, `{"transaction":"0200ff","error":""}`, env.out.String())
}

func TestSendTransaction_FromFile(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)
	path := filepath.Join(t.TempDir(), "signed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"transaction":"0200ff"}`), 0o600))
	env.session.results[gdk.MethodSendTransaction] = json.RawMessage(`{"txhash":"abcd"}`)

	require.NoError(t, runSendTransaction(env.command(), []string{path}))
	assert.JSONEq(t, `{"txhash":"abcd"}`, env.out.String())
}

func TestSignTransaction_InvalidDocument(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)
	env.cc.Stdin = strings.NewReader("not json")

	err := runSignTransaction(env.command(), []string{"-"})
	require.ErrorIs(t, err, greenerr.ErrInvalidInput)
	assert.Empty(t, env.session.calls)
}

func TestSignTransaction_MissingFile(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)

	err := runSignTransaction(env.command(), []string{filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorIs(t, err, greenerr.ErrInvalidInput)
}

func TestSendToAddress(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)
	env.session.results[gdk.MethodConvertAmount] = json.RawMessage(`{"satoshi":100000,"btc":"0.001"}`)
	env.session.results[gdk.MethodCreateTransaction] = json.RawMessage(`{"transaction":"0200"}`)
	env.session.results[gdk.MethodSignTransaction] = json.RawMessage(`{"transaction":"0200ff"}`)
	env.session.results[gdk.MethodSendTransaction] = json.RawMessage(`{"txhash":"abcd"}`)

	require.NoError(t, runSendToAddress(env.command(), []string{testAddress, "0.001"}))

	assert.Equal(t, []string{
		gdk.MethodConvertAmount,
		gdk.MethodCreateTransaction,
		gdk.MethodSignTransaction,
		gdk.MethodSendTransaction,
	}, env.session.methods())
	assert.Equal(t, map[string]string{"btc": "0.001"}, env.session.lastCall(t, gdk.MethodConvertAmount).args[0])

	details, ok := env.session.lastCall(t, gdk.MethodCreateTransaction).args[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []Addressee{{Address: testAddress, Satoshi: 100000}}, details["addressees"])

	// Each step is fed the previous step's result
	assert.JSONEq(t, `{"transaction":"0200"}`, string(env.session.lastCall(t, gdk.MethodSignTransaction).args[0].(json.RawMessage)))
	assert.JSONEq(t, `{"transaction":"0200ff"}`, string(env.session.lastCall(t, gdk.MethodSendTransaction).args[0].(json.RawMessage)))

	assert.Equal(t, "abcd\n", env.out.String())
}

func TestSendToAddress_SignFailure(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)
	env.session.results[gdk.MethodConvertAmount] = json.RawMessage(`{"satoshi":1000}`)
	env.session.handlers[gdk.MethodSignTransaction] = &scriptedHandler{statuses: []gdk.Status{
		gdk.Failed{Error: "id_insufficient_funds", Payload: json.RawMessage(`{"error":"id_insufficient_funds"}`)},
	}}

	err := runSendToAddress(env.command(), []string{testAddress, "1"})
	require.ErrorIs(t, err, greenerr.ErrRemote)
	assert.NotContains(t, env.session.methods(), gdk.MethodSendTransaction)
	assert.Empty(t, env.out.String())
}

func TestSendToAddress_MissingTxHash(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)
	env.session.results[gdk.MethodConvertAmount] = json.RawMessage(`{"satoshi":1000}`)

	err := runSendToAddress(env.command(), []string{testAddress, "0.00001"})
	require.ErrorIs(t, err, greenerr.ErrGeneral)
}

const historyPage = `[
	{"txhash":"aaaa","can_rbf":false,"fee_rate":1000},
	{"txhash":"bbbb","can_rbf":true,"fee_rate":1500}
]`

func TestBumpFee(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		page    string
		feeRate int64
	}{
		{name: "default multiplier", args: []string{"bbbb"}, page: historyPage, feeRate: 3000},
		{name: "explicit multiplier", args: []string{"bbbb", "1.5"}, page: historyPage, feeRate: 2250},
		{name: "wrapped page", args: []string{"bbbb"}, page: `{"transactions":` + historyPage + `}`, feeRate: 3000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t).withMnemonic(t)
			env.session.results[gdk.MethodGetTransactions] = json.RawMessage(tc.page)
			env.session.results[gdk.MethodSendTransaction] = json.RawMessage(`{"txhash":"cccc"}`)

			require.NoError(t, runBumpFee(env.command(), tc.args))

			page, ok := env.session.lastCall(t, gdk.MethodGetTransactions).args[0].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, 0, page["subaccount"])
			assert.Equal(t, defaultTransactionCount, page["count"])

			details, ok := env.session.lastCall(t, gdk.MethodCreateTransaction).args[0].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tc.feeRate, details["fee_rate"])
			assert.Equal(t, 0, details["subaccount"])
			assert.JSONEq(t, `{"txhash":"bbbb","can_rbf":true,"fee_rate":1500}`, string(details["previous_transaction"].(json.RawMessage)))

			assert.Equal(t, "cccc\n", env.out.String())
		})
	}
}

func TestBumpFee_Errors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		suggestion string
	}{
		{name: "not found", args: []string{"ffff"}, suggestion: "previous transaction not found"},
		{name: "not replaceable", args: []string{"aaaa"}, suggestion: "previous transaction not replaceable"},
		{name: "bad multiplier", args: []string{"bbbb", "fast"}},
		{name: "zero multiplier", args: []string{"bbbb", "0"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t).withMnemonic(t)
			env.session.results[gdk.MethodGetTransactions] = json.RawMessage(historyPage)

			err := runBumpFee(env.command(), tc.args)
			require.ErrorIs(t, err, greenerr.ErrInvalidInput)
			if tc.suggestion != "" {
				var ge *greenerr.GreenError
				require.ErrorAs(t, err, &ge)
				assert.Equal(t, tc.suggestion, ge.Suggestion)
			}
			assert.NotContains(t, env.session.methods(), gdk.MethodCreateTransaction)
		})
	}
}

func TestSendTransactionHelper_CallError(t *testing.T) {
	env := newTestEnv(t).withMnemonic(t)
	env.session.errs[gdk.MethodCreateTransaction] = greenerr.ErrNetworkError

	_, err := sendTransaction(context.Background(), env.cc, map[string]any{})
	require.ErrorIs(t, err, greenerr.ErrNetworkError)
}
