package gdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeviceRequest_SignMessage(t *testing.T) {
	t.Parallel()
	req, err := ParseDeviceRequest([]byte(`{"action":"sign_message","path":[1195487518,6],"message":"greenaddress.it      login 1234"}`))
	require.NoError(t, err)
	assert.Equal(t, SignMessageRequest{Path: []uint32{1195487518, 6}, Message: "greenaddress.it      login 1234"}, req)
	assert.Equal(t, ActionSignMessage, req.Action())
}

func TestParseDeviceRequest_SignTx(t *testing.T) {
	t.Parallel()
	raw := `{"action":"sign_tx","transaction":{"transaction":"0200","used_utxos":[
		{"script_type":14,"prevout_script":"5221","satoshi":1000,"user_path":[1,2]},
		{"script_type":10,"prevout_script":"","satoshi":5,"user_path":[3]}]}}`

	req, err := ParseDeviceRequest([]byte(raw))
	require.NoError(t, err)

	tx, ok := req.(SignTxRequest)
	require.True(t, ok)
	assert.Equal(t, "0200", tx.Transaction)
	require.Len(t, tx.Utxos, 2)
	assert.Equal(t, Utxo{
		ScriptType:    ScriptP2SHP2WSHFortifiedOut,
		PrevoutScript: []byte{0x52, 0x21},
		Satoshi:       1000,
		UserPath:      []uint32{1, 2},
	}, tx.Utxos[0])
	assert.Equal(t, ScriptP2SHFortifiedOut, tx.Utxos[1].ScriptType)
}

func TestParseDeviceRequest_SignTxFallsBackToOldUtxos(t *testing.T) {
	t.Parallel()
	raw := `{"action":"sign_tx","transaction":{"transaction":"0200","used_utxos":[],
		"old_used_utxos":[{"script_type":15,"prevout_script":"00","satoshi":7,"user_path":[9]}]}}`

	req, err := ParseDeviceRequest([]byte(raw))
	require.NoError(t, err)

	tx := req.(SignTxRequest)
	require.Len(t, tx.Utxos, 1)
	assert.Equal(t, int64(7), tx.Utxos[0].Satoshi)
}

func TestParseDeviceRequest_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseDeviceRequest([]byte(`[]`))
	require.ErrorIs(t, err, ErrInvalidDeviceRequest)

	_, err = ParseDeviceRequest([]byte(`{"paths":[]}`))
	require.ErrorIs(t, err, ErrInvalidDeviceRequest)

	_, err = ParseDeviceRequest([]byte(`{"action":"sign_tx","transaction":{"used_utxos":[{"prevout_script":"zz"}]}}`))
	require.ErrorIs(t, err, ErrInvalidDeviceRequest)
}

func TestParseDeviceRequest_Unknown(t *testing.T) {
	t.Parallel()
	req, err := ParseDeviceRequest([]byte(`{"action":"get_master_blinding_key"}`))
	require.NoError(t, err)
	assert.Equal(t, UnknownDeviceRequest{Name: "get_master_blinding_key"}, req)
	assert.Equal(t, "get_master_blinding_key", req.Action())
}
