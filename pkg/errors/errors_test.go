package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

var errInner = errors.New("inner")

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, greenerr.ExitSuccess},
		{"general error", greenerr.ErrGeneral, greenerr.ExitGeneral},
		{"plain error", errInner, greenerr.ExitGeneral},
		{"input error", greenerr.ErrInvalidInput, greenerr.ExitInput},
		{"not found", greenerr.ErrNotFound, greenerr.ExitNotFound},
		{"refused overwrite", greenerr.ErrRefusedOverwrite, greenerr.ExitPermission},
		{"unsupported action", greenerr.ErrUnsupportedAction, greenerr.ExitUnsupported},
		{"unsupported input", greenerr.ErrUnsupportedInputType, greenerr.ExitUnsupported},
		{"device", greenerr.ErrDeviceUnavailable, greenerr.ExitDevice},
		{"remote", greenerr.ErrRemote, greenerr.ExitAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, greenerr.ExitCode(tt.err))
		})
	}
}

func TestWrapPreservesIdentity(t *testing.T) {
	t.Parallel()
	wrapped := greenerr.Wrap(greenerr.ErrRefusedOverwrite, "mnemonic %s", "/tmp/x")
	require.ErrorIs(t, wrapped, greenerr.ErrRefusedOverwrite)
	assert.Equal(t, greenerr.ExitPermission, greenerr.ExitCode(wrapped))
	assert.Contains(t, wrapped.Error(), "mnemonic /tmp/x")

	plain := greenerr.Wrap(errInner, "context")
	require.ErrorIs(t, plain, errInner)
	assert.Equal(t, "GENERAL_ERROR", greenerr.Code(plain))

	assert.NoError(t, greenerr.Wrap(nil, "ignored"))
}

func TestRemoteCarriesPayload(t *testing.T) {
	t.Parallel()
	err := greenerr.Remote(`{"error":"id_invalid_twofactor_code"}`)
	require.ErrorIs(t, err, greenerr.ErrRemote)

	var ge *greenerr.GreenError
	require.True(t, greenerr.As(err, &ge))
	assert.Equal(t, `{"error":"id_invalid_twofactor_code"}`, ge.Details["payload"])
}

func TestWithDetailsMerges(t *testing.T) {
	t.Parallel()
	err := greenerr.WithDetails(greenerr.ErrUnsupportedInputType, map[string]string{"input": "0"})
	err = greenerr.WithDetails(err, map[string]string{"script_type": "10"})

	var ge *greenerr.GreenError
	require.True(t, greenerr.As(err, &ge))
	assert.Equal(t, map[string]string{"input": "0", "script_type": "10"}, ge.Details)
	assert.Equal(t, "transaction input type cannot be signed (input: 0) (script_type: 10)", err.Error())
}

func TestWithSuggestionAndCause(t *testing.T) {
	t.Parallel()
	err := greenerr.WithSuggestion(greenerr.ErrDeviceUnavailable, "unplug other devices")
	var ge *greenerr.GreenError
	require.True(t, greenerr.As(err, &ge))
	assert.Equal(t, "unplug other devices", ge.Suggestion)

	err = greenerr.WithCause(greenerr.ErrNetworkError, errInner)
	require.ErrorIs(t, err, greenerr.ErrNetworkError)
	require.ErrorIs(t, err, errInner)
}
