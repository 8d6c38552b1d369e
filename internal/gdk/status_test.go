package gdk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		raw      string
		expected Status
	}{
		{
			name:     "done",
			raw:      `{"status":"done","result":{"txhash":"ab"}}`,
			expected: Done{Result: json.RawMessage(`{"txhash":"ab"}`)},
		},
		{
			name:     "request code",
			raw:      `{"status":"request_code","action":"send_raw_tx","methods":["email","sms"]}`,
			expected: RequestCode{Action: "send_raw_tx", Methods: []string{"email", "sms"}},
		},
		{
			name:     "call",
			raw:      `{"status":"call","action":"sign_tx"}`,
			expected: Call{},
		},
		{
			name: "two factor with null device",
			raw:  `{"status":"resolve_code","action":"set_email","method":"email","attempts_remaining":3,"device":null}`,
			expected: ResolveCode{Challenge: TwoFactorChallenge{
				Action: "set_email", Method: "email", AttemptsRemaining: "3",
			}},
		},
		{
			name: "two factor with empty device",
			raw:  `{"status":"resolve_code","action":"enable_2fa","method":"sms","attempts_remaining":"2","device":{}}`,
			expected: ResolveCode{Challenge: TwoFactorChallenge{
				Action: "enable_2fa", Method: "sms", AttemptsRemaining: "2",
			}},
		},
		{
			name: "device get xpubs",
			raw: `{"status":"resolve_code","device":{"name":"libwally software signer"},
				"required_data":{"action":"get_xpubs","paths":[[],[2147501889]]}}`,
			expected: ResolveCode{Challenge: GetXpubsRequest{Paths: [][]uint32{{}, {2147501889}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, err := ParseStatus([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestParseStatus_FailedKeepsPayload(t *testing.T) {
	t.Parallel()
	raw := `{"status":"error","error":"id_invalid_twofactor_code","action":"send_raw_tx"}`

	status, err := ParseStatus([]byte(raw))
	require.NoError(t, err)

	failed, ok := status.(Failed)
	require.True(t, ok)
	assert.Equal(t, "id_invalid_twofactor_code", failed.Error)
	assert.JSONEq(t, raw, string(failed.Payload))
	assert.Equal(t, "error", failed.State())
}

func TestParseStatus_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseStatus([]byte(`not json`))
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus([]byte(`{"result":1}`))
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus([]byte(`{"status":"sleeping"}`))
	require.ErrorIs(t, err, ErrUnknownStatus)

	_, err = ParseStatus([]byte(`{"status":"resolve_code","device":{"name":"x"},"required_data":{}}`))
	require.ErrorIs(t, err, ErrInvalidDeviceRequest)
}

func TestStatusStates(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "done", Done{}.State())
	assert.Equal(t, "error", Failed{}.State())
	assert.Equal(t, "request_code", RequestCode{}.State())
	assert.Equal(t, "resolve_code", ResolveCode{}.State())
	assert.Equal(t, "call", Call{}.State())
}
