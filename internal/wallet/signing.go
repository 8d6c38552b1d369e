package wallet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/mrz1836/greencli/internal/wallet/bitcoin"
)

// SigHashAll is the only signature hash type produced for transaction inputs.
const SigHashAll = txscript.SigHashAll

// compactSigLen is a recovery byte followed by 32-byte R and S.
const compactSigLen = 65

var (
	// ErrInvalidTransaction indicates the transaction bytes could not be decoded.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInputIndex indicates the input index is outside the transaction.
	ErrInputIndex = errors.New("input index out of range")

	// ErrInvalidSignature indicates a signature could not be parsed.
	ErrInvalidSignature = errors.New("invalid signature")
)

// SignHash signs a 32-byte digest and returns the DER encoding.
// Signatures are RFC6979 deterministic, low-S, and ground to a low R.
func (k *KeyPair) SignHash(hash []byte) ([]byte, error) {
	priv, err := k.PrivateKey()
	if err != nil {
		return nil, err
	}
	defer priv.Zero()

	return signGrindR(priv, hash).Serialize(), nil
}

// SignMessage signs message with the key at path using the Bitcoin signed
// message digest, returning a DER signature.
func SignMessage(seed []byte, path Path, message []byte, net Network) ([]byte, error) {
	key, err := Derive(seed, path, net)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	return key.SignHash(bitcoin.MessageHash(message))
}

// SignTransactionInput signs one witness input of a serialized transaction.
// The result is the DER signature followed by the SIGHASH_ALL byte.
func SignTransactionInput(seed []byte, path Path, txBytes []byte, inputIndex int,
	prevoutScript []byte, value int64, net Network,
) ([]byte, error) {
	tx, err := DecodeTransaction(txBytes)
	if err != nil {
		return nil, err
	}

	key, err := Derive(seed, path, net)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	return key.SignWitnessInput(tx, inputIndex, prevoutScript, value)
}

// SignWitnessInput signs input inputIndex of tx with the BIP143 digest.
func (k *KeyPair) SignWitnessInput(tx *wire.MsgTx, inputIndex int, prevoutScript []byte, value int64) ([]byte, error) {
	hash, err := WitnessSigHash(tx, inputIndex, prevoutScript, value)
	if err != nil {
		return nil, err
	}

	sig, err := k.SignHash(hash)
	if err != nil {
		return nil, err
	}
	return append(sig, byte(SigHashAll)), nil
}

// DecodeTransaction parses a serialized transaction, witness data included.
func DecodeTransaction(txBytes []byte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return tx, nil
}

// WitnessSigHash computes the BIP143 SIGHASH_ALL digest for one input.
// A P2WPKH prevout script is expanded to its P2PKH script code by txscript.
func WitnessSigHash(tx *wire.MsgTx, inputIndex int, prevoutScript []byte, value int64) ([]byte, error) {
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInputIndex, inputIndex, len(tx.TxIn))
	}

	fetcher := txscript.NewCannedPrevOutputFetcher(prevoutScript, value)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)
	return txscript.CalcWitnessSigHash(prevoutScript, sigHashes, SigHashAll, tx, inputIndex, value)
}

// CompactToDER converts a 65-byte recoverable compact signature into DER.
func CompactToDER(compact []byte) ([]byte, error) {
	if len(compact) != compactSigLen {
		return nil, fmt.Errorf("%w: compact length %d", ErrInvalidSignature, len(compact))
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(compact[1:33]); overflow || r.IsZero() {
		return nil, fmt.Errorf("%w: bad R", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(compact[33:65]); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: bad S", ErrInvalidSignature)
	}
	return ecdsa.NewSignature(&r, &s).Serialize(), nil
}

// signGrindR produces an RFC6979 signature, retrying with a little-endian
// counter as extra nonce data until R has its top bit clear. Low-R signatures
// DER-encode R in 32 bytes, which keeps transaction size estimates exact.
func signGrindR(priv *secp256k1.PrivateKey, hash []byte) *ecdsa.Signature {
	privBytes := priv.Key.Bytes()
	defer ZeroBytes(privBytes[:])

	var e secp256k1.ModNScalar
	e.SetByteSlice(hash)

	var extra [32]byte
	for counter := uint32(0); ; counter++ {
		var extraData []byte
		if counter > 0 {
			binary.LittleEndian.PutUint32(extra[:4], counter)
			extraData = extra[:]
		}

		for iteration := uint32(0); ; iteration++ {
			k := secp256k1.NonceRFC6979(privBytes[:], hash, extraData, nil, iteration)

			var point secp256k1.JacobianPoint
			secp256k1.ScalarBaseMultNonConst(k, &point)
			point.ToAffine()

			var r secp256k1.ModNScalar
			r.SetBytes(point.X.Bytes())
			if r.IsZero() {
				k.Zero()
				continue
			}

			// s = k^-1 * (e + r*d) mod N
			kInv := new(secp256k1.ModNScalar).Set(k).InverseNonConst()
			s := new(secp256k1.ModNScalar).Mul2(&priv.Key, &r).Add(&e).Mul(kInv)
			k.Zero()
			if s.IsZero() {
				continue
			}
			if s.IsOverHalfOrder() {
				s.Negate()
			}

			rBytes := r.Bytes()
			if rBytes[0] < 0x80 {
				return ecdsa.NewSignature(&r, s)
			}
			break
		}
	}
}
