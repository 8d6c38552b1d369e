// Package keystore persists the wallet mnemonic and PIN data for one network.
package keystore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/greencli/internal/fileutil"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

const (
	// MnemonicFile is the file name of the stored mnemonic phrase.
	MnemonicFile = "mnemonic"

	// PinDataFile is the file name of the backend-encrypted PIN data.
	PinDataFile = "pin_data"

	// mnemonicPermissions is the final mode of the mnemonic file.
	mnemonicPermissions = 0o400

	// pinDataPermissions is the mode of the PIN data file.
	pinDataPermissions = 0o600

	// dirPermissions is the mode of the per-network directory.
	dirPermissions = 0o700
)

// Storage defines mnemonic and PIN data persistence.
type Storage interface {
	// Load returns the stored phrase with surrounding whitespace removed.
	Load() (string, error)

	// Store writes the phrase, refusing to replace a read-only file.
	Store(phrase string) error

	// Erase removes the stored phrase. A missing phrase is not an error.
	Erase() error

	// Exists reports whether a phrase is stored.
	Exists() (bool, error)

	// LoadPinData returns the stored PIN data blob.
	LoadPinData() ([]byte, error)

	// StorePinData writes the PIN data blob.
	StorePinData(data []byte) error
}

// FileStore implements Storage in a directory, normally the config directory.
// Nothing is cached; every call goes to disk.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// MnemonicPath returns the mnemonic file location.
func (s *FileStore) MnemonicPath() string {
	return filepath.Join(s.dir, MnemonicFile)
}

// PinDataPath returns the PIN data file location.
func (s *FileStore) PinDataPath() string {
	return filepath.Join(s.dir, PinDataFile)
}

// Load reads the stored mnemonic phrase.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.MnemonicPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", greenerr.WithDetails(greenerr.ErrNotFound, map[string]string{"path": s.MnemonicPath()})
	}
	if err != nil {
		return "", fmt.Errorf("reading mnemonic: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Store writes the phrase and leaves the file read-only. An existing
// read-only file is never replaced: the user has to back it up and remove
// it or change its permissions first.
func (s *FileStore) Store(phrase string) error {
	path := s.MnemonicPath()

	readOnly, err := fileutil.IsReadOnly(path)
	if err != nil {
		return err
	}
	if readOnly {
		return greenerr.WithDetails(greenerr.ErrRefusedOverwrite, map[string]string{"path": path})
	}

	if err := os.MkdirAll(s.dir, dirPermissions); err != nil {
		return fmt.Errorf("creating keystore directory: %w", err)
	}

	if err := fileutil.WriteAtomic(path, []byte(phrase), mnemonicPermissions); err != nil {
		return fmt.Errorf("writing mnemonic: %w", err)
	}
	return nil
}

// Erase removes the mnemonic file.
func (s *FileStore) Erase() error {
	err := os.Remove(s.MnemonicPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing mnemonic: %w", err)
	}
	return nil
}

// Exists reports whether a mnemonic file is present.
func (s *FileStore) Exists() (bool, error) {
	_, err := os.Stat(s.MnemonicPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking mnemonic: %w", err)
	}
	return true, nil
}

// LoadPinData reads the PIN data blob.
func (s *FileStore) LoadPinData() ([]byte, error) {
	data, err := os.ReadFile(s.PinDataPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, greenerr.WithDetails(greenerr.ErrNotFound, map[string]string{"path": s.PinDataPath()})
	}
	if err != nil {
		return nil, fmt.Errorf("reading pin data: %w", err)
	}
	return data, nil
}

// StorePinData writes the PIN data blob.
func (s *FileStore) StorePinData(data []byte) error {
	if err := os.MkdirAll(s.dir, dirPermissions); err != nil {
		return fmt.Errorf("creating keystore directory: %w", err)
	}
	if err := fileutil.WriteAtomic(s.PinDataPath(), data, pinDataPermissions); err != nil {
		return fmt.Errorf("writing pin data: %w", err)
	}
	return nil
}
