package wallet

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/hdkeychain/v3"

	"github.com/mrz1836/greencli/internal/wallet/bitcoin"
)

// Serialized extended key layout: version(4) depth(1) fingerprint(4) child(4) chaincode(32) key(33).
const serializedKeyLen = 78

var (
	// ErrInvalidSeed indicates the seed length is outside the BIP32 bounds.
	ErrInvalidSeed = errors.New("invalid seed length")

	// ErrInvalidExtendedKey indicates an extended key string could not be decoded.
	ErrInvalidExtendedKey = errors.New("invalid extended public key")

	// ErrDepthExceeded indicates a path deeper than BIP32 allows.
	ErrDepthExceeded = errors.New("derivation depth exceeds 255")

	// ErrKeyZeroed indicates the key pair was used after Zero.
	ErrKeyZeroed = errors.New("key pair has been zeroed")
)

// KeyPair is a private/public key pair at some position of a BIP32 tree.
// It is recomputed per operation and never persisted.
type KeyPair struct {
	key        *hdkeychain.ExtendedKey
	net        Network
	depth      uint8
	parentFP   uint32
	childIndex uint32
}

// Derive walks from the seed's master key through path one index at a time.
// An empty path returns the master key pair.
func Derive(seed []byte, path Path, net Network) (*KeyPair, error) {
	if len(seed) < hdkeychain.MinSeedBytes || len(seed) > hdkeychain.MaxSeedBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSeed, len(seed))
	}

	master, err := hdkeychain.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	return (&KeyPair{key: master, net: net}).Derive(path)
}

// Derive continues derivation from k, so Derive(seed, p1++p2) equals
// Derive(seed, p1).Derive(p2).
func (k *KeyPair) Derive(path Path) (*KeyPair, error) {
	current := k
	for _, index := range path {
		if current.depth == 255 {
			return nil, ErrDepthExceeded
		}

		child, err := current.key.ChildBIP32Std(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", index, err)
		}

		current = &KeyPair{
			key:        child,
			net:        k.net,
			depth:      current.depth + 1,
			parentFP:   fingerprint(current.PublicKey()),
			childIndex: index,
		}
	}
	return current, nil
}

// PublicKey returns the compressed 33-byte public key.
func (k *KeyPair) PublicKey() []byte {
	return k.key.SerializedPubKey()
}

// PrivateKey returns a copy of the secp256k1 private key. Callers should Zero
// the copy after use; the key pair itself is wiped by KeyPair.Zero.
func (k *KeyPair) PrivateKey() (*secp256k1.PrivateKey, error) {
	// raw aliases the extended key's own storage and must not be modified.
	raw, err := k.key.SerializedPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize private key: %w", err)
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

// ChainCode returns the 32-byte BIP32 chain code. hdkeychain keeps it
// unexported, so it is read back from the key's own serialization.
func (k *KeyPair) ChainCode() ([]byte, error) {
	// version(4) depth(1) fingerprint(4) child(4) chaincode(32) key(33) checksum(4)
	decoded := base58.Decode(k.key.String())
	if len(decoded) != serializedKeyLen+4 {
		return nil, ErrKeyZeroed
	}
	return append([]byte(nil), decoded[13:45]...), nil
}

// ExtendedPublicKey serializes the public half as a Base58Check extended key
// (xpub on mainnet, tpub on test networks).
func (k *KeyPair) ExtendedPublicKey() (string, error) {
	chainCode, err := k.ChainCode()
	if err != nil {
		return "", err
	}
	version := k.net.HDPubKeyVersion()

	payload := make([]byte, 0, serializedKeyLen)
	payload = append(payload, version[:]...)
	payload = append(payload, k.depth)
	payload = binary.BigEndian.AppendUint32(payload, k.parentFP)
	payload = binary.BigEndian.AppendUint32(payload, k.childIndex)
	payload = append(payload, chainCode...)
	payload = append(payload, k.PublicKey()...)

	return bitcoin.Base58CheckEncode(payload), nil
}

// Zero clears the private key material held by k.
func (k *KeyPair) Zero() {
	k.key.Zero()
}

// ExtendedPublicKey derives the key at path and returns its serialized public half.
func ExtendedPublicKey(seed []byte, path Path, net Network) (string, error) {
	key, err := Derive(seed, path, net)
	if err != nil {
		return "", err
	}
	defer key.Zero()
	return key.ExtendedPublicKey()
}

// ExtendedPublicKeyInfo is a decoded extended public key.
type ExtendedPublicKeyInfo struct {
	Version           [4]byte
	Depth             uint8
	ParentFingerprint uint32
	ChildIndex        uint32
	ChainCode         []byte
	PublicKey         []byte
}

// ParseExtendedPublicKey decodes a Base58Check extended public key.
func ParseExtendedPublicKey(s string) (*ExtendedPublicKeyInfo, error) {
	payload, err := bitcoin.Base58CheckDecode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExtendedKey, err)
	}
	if len(payload) != serializedKeyLen {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidExtendedKey, len(payload))
	}

	info := &ExtendedPublicKeyInfo{
		Depth:             payload[4],
		ParentFingerprint: binary.BigEndian.Uint32(payload[5:9]),
		ChildIndex:        binary.BigEndian.Uint32(payload[9:13]),
		ChainCode:         append([]byte(nil), payload[13:45]...),
		PublicKey:         append([]byte(nil), payload[45:78]...),
	}
	copy(info.Version[:], payload[:4])

	if _, err := secp256k1.ParsePubKey(info.PublicKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExtendedKey, err)
	}
	return info, nil
}

// fingerprint is the first four bytes of HASH160(pubkey) as a big-endian integer.
func fingerprint(pubKey []byte) uint32 {
	return binary.BigEndian.Uint32(bitcoin.Hash160(pubKey)[:4])
}

// ZeroBytes overwrites a byte slice with zeros.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
