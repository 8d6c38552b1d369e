// Package bitcoin provides Bitcoin protocol-specific hashing and encoding.
// This package isolates legacy cryptographic primitives required by the
// Bitcoin protocol that cannot be replaced without breaking compatibility.
package bitcoin

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil/base58"

	// RIPEMD160 is deprecated but REQUIRED by Bitcoin protocol (BIP-13, BIP-32).
	//nolint:gosec,staticcheck // G507,SA1019: RIPEMD160 required by Bitcoin protocol
	"golang.org/x/crypto/ripemd160"
)

// messageMagic prefixes every signed message so a message signature can never
// be replayed as a transaction signature.
const messageMagic = "Bitcoin Signed Message:\n"

// checksumLen is the Base58Check checksum length.
const checksumLen = 4

// ErrInvalidChecksum indicates a Base58Check payload failed checksum verification.
var ErrInvalidChecksum = errors.New("invalid base58 checksum")

// Hash160 computes RIPEMD160(SHA256(data)) as required by Bitcoin protocol.
// BIP32 key fingerprints are the first four bytes of this hash.
//
//nolint:gosec // G406: RIPEMD160 usage required by the Bitcoin protocol
func Hash160(data []byte) []byte {
	sha256Hash := sha256.Sum256(data)
	ripemd := ripemd160.New()
	ripemd.Write(sha256Hash[:])
	return ripemd.Sum(nil)
}

// DoubleSHA256 computes SHA256(SHA256(data)) as used by Bitcoin protocol.
func DoubleSHA256(data []byte) []byte {
	return chainhash.DoubleHashB(data)
}

// MessageHash returns the digest signed for an arbitrary text message:
// SHA256d(varstr(magic) || varstr(message)).
func MessageHash(message []byte) []byte {
	var buf bytes.Buffer
	// Writes into a bytes.Buffer cannot fail.
	_ = wire.WriteVarString(&buf, 0, messageMagic)
	_ = wire.WriteVarBytes(&buf, 0, message)
	return chainhash.DoubleHashB(buf.Bytes())
}

// Base58CheckEncode appends a SHA256d checksum to payload and Base58 encodes it.
// Unlike the address form the payload carries its own version prefix, which for
// extended keys is four bytes wide.
func Base58CheckEncode(payload []byte) string {
	data := make([]byte, 0, len(payload)+checksumLen)
	data = append(data, payload...)
	data = append(data, DoubleSHA256(payload)[:checksumLen]...)
	return base58.Encode(data)
}

// Base58CheckDecode decodes a Base58Check string and verifies its checksum.
func Base58CheckDecode(s string) ([]byte, error) {
	decoded := base58.Decode(s)
	if len(decoded) < checksumLen {
		return nil, ErrInvalidChecksum
	}

	payload := decoded[:len(decoded)-checksumLen]
	checksum := decoded[len(decoded)-checksumLen:]
	if !bytes.Equal(checksum, DoubleSHA256(payload)[:checksumLen]) {
		return nil, ErrInvalidChecksum
	}

	return payload, nil
}
