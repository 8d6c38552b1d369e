package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/greencrypto"
	"github.com/mrz1836/greencli/internal/output"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import an encrypted mnemonic backup",
	Long: `Write the stored mnemonic to an age-encrypted file, or restore one.

A restore goes through the same checks as setmnemonic, so it never replaces an
existing read-only mnemonic file.`,
	GroupID: groupSecurity,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write an encrypted mnemonic backup",
	Long: `Encrypt the stored mnemonic with a passphrase and write it to FILE.

FILE must not exist yet. Wallets protected by a PIN have no plaintext mnemonic
to export.`,
	Example: `  green backup export ~/green-testnet.age`,
	Args:    cobra.ExactArgs(1),
	RunE:    runBackupExport,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore a mnemonic from an encrypted backup",
	Long: `Decrypt FILE with its passphrase and store the mnemonic it contains.

Move an existing mnemonic file out of the way first.`,
	Example: `  green backup import ~/green-testnet.age`,
	Args:    cobra.ExactArgs(1),
	RunE:    runBackupImport,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
	rootCmd.AddCommand(backupCmd)
	enrichParentLong(backupCmd)
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	path := args[0]

	if _, err := os.Stat(path); err == nil {
		return greenerr.WithDetails(greenerr.ErrRefusedOverwrite, map[string]string{"path": path})
	}

	phrase, err := cc.Store.Load()
	if err != nil {
		return err
	}

	passphrase, err := promptNewPassphraseFn()
	if err != nil {
		return err
	}
	defer greencrypto.Zero(passphrase)

	sealed, err := greencrypto.Seal([]byte(phrase), string(passphrase))
	if err != nil {
		return greenerr.Wrap(err, "encrypting backup")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // user chosen backup path
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return greenerr.WithDetails(greenerr.ErrRefusedOverwrite, map[string]string{"path": path})
		}
		return greenerr.Wrap(err, "creating backup file")
	}
	if _, err = f.Write(sealed); err != nil {
		_ = f.Close()
		return greenerr.Wrap(err, "writing backup file")
	}
	if err = f.Close(); err != nil {
		return greenerr.Wrap(err, "closing backup file")
	}

	output.Info(cc.Notice, "mnemonic backup written to "+path)
	return nil
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	sealed, err := os.ReadFile(args[0]) //nolint:gosec // user chosen backup path
	if err != nil {
		return greenerr.WithDetails(
			greenerr.WithCause(greenerr.ErrInvalidInput, err),
			map[string]string{"path": args[0]},
		)
	}

	passphrase, err := promptPasswordFn("Enter backup passphrase: ")
	if err != nil {
		return err
	}
	defer greencrypto.Zero(passphrase)

	plain, err := greencrypto.Open(sealed, string(passphrase))
	if errors.Is(err, greencrypto.ErrDecrypt) {
		return greenerr.WithCause(greenerr.ErrDecryptionFailed, err)
	}
	if err != nil {
		return greenerr.WithCause(greenerr.ErrInvalidInput, err)
	}
	defer plain.Destroy()

	a, err := cc.Authenticator(cmd.Context())
	if err != nil {
		return err
	}
	if err = a.SetMnemonic(string(plain.Bytes())); err != nil {
		return err
	}

	output.Info(cc.Notice, "mnemonic restored")
	return nil
}
