package greencrypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// ErrEmptyPassphrase indicates an empty backup passphrase.
var ErrEmptyPassphrase = errors.New("backup passphrase must not be empty")

// ErrDecrypt indicates the backup could not be opened with the given passphrase.
var ErrDecrypt = errors.New("backup decryption failed")

// Seal encrypts plaintext to a passphrase and returns ASCII-armored age output,
// suitable for printing or pasting.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}

	buf := &bytes.Buffer{}
	armored := armor.NewWriter(buf)
	w, err := age.Encrypt(armored, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armored.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}

	return buf.Bytes(), nil
}

// Open decrypts armored age output produced by Seal into SecureBytes.
func Open(ciphertext []byte, passphrase string) (*SecureBytes, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(armor.NewReader(bytes.NewReader(ciphertext)), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		Zero(plaintext)
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return FromSlice(plaintext), nil
}
