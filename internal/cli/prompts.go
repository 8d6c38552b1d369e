package cli

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/mrz1836/greencli/internal/greencrypto"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// minBackupPassphrase is the shortest accepted backup passphrase.
const minBackupPassphrase = 8

// Prompt functions are variables so tests can replace them.
//
//nolint:gochecknoglobals // swapped out in tests
var (
	promptPasswordFn      = promptPassword
	promptNewPassphraseFn = promptNewPassphrase
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

// promptPassword prompts for a secret with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassphrase prompts for a backup passphrase with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassphrase() ([]byte, error) {
	passphrase, err := promptPasswordFn("Enter backup passphrase: ")
	if err != nil {
		return nil, err
	}

	if len(passphrase) < minBackupPassphrase {
		greencrypto.Zero(passphrase)
		return nil, greenerr.WithSuggestion(
			greenerr.ErrInvalidInput,
			fmt.Sprintf("passphrase must be at least %d characters", minBackupPassphrase),
		)
	}

	confirm, err := promptPasswordFn("Confirm passphrase: ")
	if err != nil {
		greencrypto.Zero(passphrase)
		return nil, err
	}
	defer greencrypto.Zero(confirm)

	if string(passphrase) != string(confirm) {
		greencrypto.Zero(passphrase)
		return nil, greenerr.WithSuggestion(
			greenerr.ErrInvalidInput,
			"passphrases do not match",
		)
	}

	return passphrase, nil
}
