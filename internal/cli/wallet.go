package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// createCmd creates a new wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new wallet",
	Long: `Create a new wallet and register it with the backend.

The default authenticator stores a freshly generated mnemonic in the config
directory before registering. The mnemonic file is read-only and create
refuses to replace it. Hardware devices cannot create wallets.`,
	Example: `  green --network testnet create
  green --auth wally create`,
	GroupID: groupWallet,
	Args:    cobra.NoArgs,
	RunE:    runCreate,
}

// registerCmd registers an existing wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an existing wallet",
	Long: `Register an existing wallet with the backend.

The default authenticator sends the stored mnemonic. Hardware devices and the
local signer only send a device descriptor and answer key requests themselves.`,
	Example: `  green setmnemonic ./mnemonic.txt && green register
  green --auth hardware register`,
	GroupID: groupWallet,
	Args:    cobra.NoArgs,
	RunE:    runRegister,
}

// setmnemonicCmd stores an existing mnemonic.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var setmnemonicCmd = &cobra.Command{
	Use:   "setmnemonic <mnemonic|file|->",
	Short: "Set the mnemonic",
	Long: `Store an existing mnemonic in the config directory.

The argument is read as a file when it names one, from stdin when it is "-",
and is otherwise taken as the phrase itself. Whitespace is normalized and the
phrase is checked against the BIP39 wordlist and checksum before it is written.`,
	Example: `  green setmnemonic ./mnemonic.txt
  cat mnemonic.txt | green setmnemonic -`,
	GroupID: groupWallet,
	Args:    cobra.ExactArgs(1),
	RunE:    runSetMnemonic,
}

// setpinCmd replaces the plaintext mnemonic with PIN data.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var setpinCmd = &cobra.Command{
	Use:   "setpin <pin> <device_id>",
	Short: "Replace the stored mnemonic with PIN encrypted data",
	Long: `Replace the locally stored plaintext mnemonic with one encrypted with a PIN.

The key to decrypt the mnemonic is stored on the server and will be permanently
deleted after too many PIN attempts. Later logins prompt for the PIN.`,
	Example: `  green setpin 123456 my-laptop`,
	GroupID: groupSecurity,
	Args:    cobra.ExactArgs(2),
	RunE:    runSetPin,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(createCmd, registerCmd, setmnemonicCmd, setpinCmd)
}

func runCreate(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx := cmd.Context()

	s, err := cc.Session(ctx)
	if err != nil {
		return err
	}
	a, err := cc.Authenticator(ctx)
	if err != nil {
		return err
	}
	handler, err := a.Create(ctx, s)
	if err != nil {
		return err
	}
	_, err = cc.Resolve(ctx, handler)
	return err
}

func runRegister(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx := cmd.Context()

	s, err := cc.Session(ctx)
	if err != nil {
		return err
	}
	a, err := cc.Authenticator(ctx)
	if err != nil {
		return err
	}
	handler, err := a.Register(ctx, s)
	if err != nil {
		return err
	}
	_, err = cc.Resolve(ctx, handler)
	return err
}

func runSetMnemonic(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	phrase, err := mnemonicArgument(cc, args[0])
	if err != nil {
		return err
	}

	a, err := cc.Authenticator(cmd.Context())
	if err != nil {
		return err
	}
	return a.SetMnemonic(phrase)
}

// mnemonicArgument resolves a setmnemonic argument. Anything that is not
// "-" or a readable file is the phrase itself.
func mnemonicArgument(cc *CommandContext, arg string) (string, error) {
	if arg != "-" {
		if info, err := os.Stat(arg); err != nil || info.IsDir() {
			return arg, nil
		}
	}

	data, err := readSource(cc, arg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runSetPin(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	ctx := cmd.Context()

	s, err := cc.EnsureLogin(ctx)
	if err != nil {
		return err
	}
	a, err := cc.Authenticator(ctx)
	if err != nil {
		return err
	}
	_, err = a.SetPin(ctx, s, args[0], args[1])
	return err
}
