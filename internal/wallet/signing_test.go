package wallet

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/greencli/internal/wallet/bitcoin"
)

func assertCanonical(t *testing.T, der []byte, hash, pubKey []byte) {
	t.Helper()
	sig, err := ecdsa.ParseDERSignature(der)
	require.NoError(t, err)

	pub, err := secp256k1.ParsePubKey(pubKey)
	require.NoError(t, err)
	assert.True(t, sig.Verify(hash, pub), "signature does not verify")

	r := sig.R()
	s := sig.S()
	assert.False(t, s.IsOverHalfOrder(), "S is not low")
	rBytes := r.Bytes()
	assert.Less(t, rBytes[0], byte(0x80), "R is not low")
}

func TestSignMessage(t *testing.T) {
	t.Parallel()
	seed := mustHex(t, bip32Vector1Seed)
	net := mustNetwork(t, NetworkTestnet)
	path := Path{0x4741b11e, 1, 5}

	sig, err := SignMessage(seed, path, []byte("greenaddress.it      login 0123"), net)
	require.NoError(t, err)

	key, err := Derive(seed, path, net)
	require.NoError(t, err)
	assertCanonical(t, sig, bitcoin.MessageHash([]byte("greenaddress.it      login 0123")), key.PublicKey())

	again, err := SignMessage(seed, path, []byte("greenaddress.it      login 0123"), net)
	require.NoError(t, err)
	assert.Equal(t, sig, again, "signing must be deterministic")

	other, err := SignMessage(seed, path, []byte("another message"), net)
	require.NoError(t, err)
	assert.NotEqual(t, sig, other)
}

func TestSignHash_LowRAcrossMessages(t *testing.T) {
	t.Parallel()
	key, err := Derive(mustHex(t, bip32Vector1Seed), Path{7}, mustNetwork(t, NetworkTestnet))
	require.NoError(t, err)

	for i := 0; i < 32; i++ {
		hash := chainhash.DoubleHashB([]byte{byte(i)})
		sig, err := key.SignHash(hash)
		require.NoError(t, err)
		// Low R and low S keep the DER encoding at most 70 bytes
		assert.LessOrEqual(t, len(sig), 70)
		assertCanonical(t, sig, hash, key.PublicKey())
	}
}

func TestSignHash_RepeatedOnOneKeyPair(t *testing.T) {
	t.Parallel()
	key, err := Derive(mustHex(t, bip32Vector1Seed), Path{1, 2}, mustNetwork(t, NetworkTestnet))
	require.NoError(t, err)
	hash := chainhash.DoubleHashB([]byte("same digest"))

	first, err := key.SignHash(hash)
	require.NoError(t, err)
	second, err := key.SignHash(hash)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assertCanonical(t, second, hash, key.PublicKey())
}

func TestDerive_AfterMasterSigned(t *testing.T) {
	t.Parallel()
	seed := mustHex(t, bip32Vector1Seed)
	net := mustNetwork(t, NetworkTestnet)

	master, err := Derive(seed, Path{}, net)
	require.NoError(t, err)
	_, err = master.SignHash(chainhash.DoubleHashB([]byte("login")))
	require.NoError(t, err)

	child, err := master.Derive(Path{1, 2})
	require.NoError(t, err)
	fresh, err := Derive(seed, Path{1, 2}, net)
	require.NoError(t, err)

	assert.Equal(t, fresh.PublicKey(), child.PublicKey())
	hash := chainhash.DoubleHashB([]byte("spend"))
	sig, err := child.SignHash(hash)
	require.NoError(t, err)
	assertCanonical(t, sig, hash, fresh.PublicKey())
}

func buildSpendingTx(t *testing.T, inputs int) *wire.MsgTx {
	t.Helper()
	tx := wire.NewMsgTx(2)
	for i := 0; i < inputs; i++ {
		prev := wire.NewOutPoint(&chainhash.Hash{byte(i + 1)}, uint32(i))
		tx.AddTxIn(wire.NewTxIn(prev, nil, nil))
	}
	tx.AddTxOut(wire.NewTxOut(90_000, []byte{txscript.OP_TRUE}))
	return tx
}

func serializeTx(t *testing.T, tx *wire.MsgTx) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return buf.Bytes()
}

func TestSignTransactionInput_VerifiesUnderScriptEngine(t *testing.T) {
	t.Parallel()
	seed := mustHex(t, bip32Vector1Seed)
	net := mustNetwork(t, NetworkTestnet)
	path := Path{1, 0, 3}
	const value = int64(100_000)

	key, err := Derive(seed, path, net)
	require.NoError(t, err)
	prevoutScript, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(bitcoin.Hash160(key.PublicKey())).
		Script()
	require.NoError(t, err)

	tx := buildSpendingTx(t, 2)
	sig, err := SignTransactionInput(seed, path, serializeTx(t, tx), 1, prevoutScript, value, net)
	require.NoError(t, err)
	assert.Equal(t, byte(SigHashAll), sig[len(sig)-1])

	hash, err := WitnessSigHash(tx, 1, prevoutScript, value)
	require.NoError(t, err)
	assertCanonical(t, sig[:len(sig)-1], hash, key.PublicKey())

	tx.TxIn[1].Witness = wire.TxWitness{sig, key.PublicKey()}
	fetcher := txscript.NewCannedPrevOutputFetcher(prevoutScript, value)
	engine, err := txscript.NewEngine(prevoutScript, tx, 1, txscript.StandardVerifyFlags,
		nil, txscript.NewTxSigHashes(tx, fetcher), value, fetcher)
	require.NoError(t, err)
	require.NoError(t, engine.Execute())
}

func TestSignTransactionInput_Errors(t *testing.T) {
	t.Parallel()
	seed := mustHex(t, bip32Vector1Seed)
	net := mustNetwork(t, NetworkTestnet)
	script := []byte{txscript.OP_0, 0x14}
	script = append(script, make([]byte, 20)...)

	_, err := SignTransactionInput(seed, Path{1}, []byte{0x01, 0x02}, 0, script, 1, net)
	require.ErrorIs(t, err, ErrInvalidTransaction)

	txBytes := serializeTx(t, buildSpendingTx(t, 1))
	_, err = SignTransactionInput(seed, Path{1}, txBytes, 1, script, 1, net)
	require.ErrorIs(t, err, ErrInputIndex)

	_, err = SignTransactionInput(seed, Path{1}, txBytes, -1, script, 1, net)
	require.ErrorIs(t, err, ErrInputIndex)
}

func TestCompactToDER(t *testing.T) {
	t.Parallel()
	key, err := Derive(mustHex(t, bip32Vector1Seed), Path{2}, mustNetwork(t, NetworkTestnet))
	require.NoError(t, err)
	priv, err := key.PrivateKey()
	require.NoError(t, err)

	hash := bitcoin.MessageHash([]byte("hello"))
	compact := ecdsa.SignCompact(priv, hash, true)
	require.Len(t, compact, 65)

	der, err := CompactToDER(compact)
	require.NoError(t, err)

	sig, err := ecdsa.ParseDERSignature(der)
	require.NoError(t, err)
	assert.True(t, sig.Verify(hash, priv.PubKey()))

	_, err = CompactToDER(compact[:64])
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = CompactToDER(make([]byte, 65))
	require.ErrorIs(t, err, ErrInvalidSignature)
}
