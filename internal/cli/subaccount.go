package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/gdk"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var createsubaccountCmd = &cobra.Command{
	Use:   "createsubaccount <name> <2of2|2of3>",
	Short: "Create a subaccount",
	Long: `Create a new subaccount of the given type and print it.

2of3 subaccounts add a recovery key so funds can be moved without the
service after the nlocktime period.`,
	Example:   `  green createsubaccount savings 2of3`,
	GroupID:   groupWallet,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"2of2", "2of3"},
	RunE:      runCreateSubaccount,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getsubaccountsCmd = &cobra.Command{
	Use:     "getsubaccounts",
	Short:   "List subaccounts",
	Long:    `Print every subaccount of the logged in wallet.`,
	Example: `  green getsubaccounts`,
	GroupID: groupWallet,
	Args:    cobra.NoArgs,
	RunE:    runGetSubaccounts,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getsubaccountCmd = &cobra.Command{
	Use:     "getsubaccount <pointer>",
	Short:   "Show a subaccount",
	Long:    `Print the subaccount with the given pointer.`,
	Example: `  green getsubaccount 1`,
	GroupID: groupWallet,
	Args:    cobra.ExactArgs(1),
	RunE:    runGetSubaccount,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var renamesubaccountCmd = &cobra.Command{
	Use:     "renamesubaccount <pointer> <name>",
	Short:   "Rename a subaccount",
	Long:    `Change the display name of the subaccount with the given pointer.`,
	Example: `  green renamesubaccount 1 "cold savings"`,
	GroupID: groupWallet,
	Args:    cobra.ExactArgs(2),
	RunE:    runRenameSubaccount,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var setwatchonlyCmd = &cobra.Command{
	Use:   "setwatchonly <username> <password>",
	Short: "Set watch-only login details",
	Long: `Set the username and password for watch-only access to this wallet.

Watch-only logins can see balances and transactions but cannot spend.`,
	Example: `  green setwatchonly viewer s3cret-phrase`,
	GroupID: groupSecurity,
	Args:    cobra.ExactArgs(2),
	RunE:    runSetWatchOnly,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getwatchonlyCmd = &cobra.Command{
	Use:     "getwatchonly",
	Short:   "Get watch-only login details",
	Long:    `Print the watch-only username configured for this wallet.`,
	Example: `  green getwatchonly`,
	GroupID: groupSecurity,
	Args:    cobra.NoArgs,
	RunE:    runGetWatchOnly,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getsettingsCmd = &cobra.Command{
	Use:     "getsettings",
	Short:   "Print wallet settings",
	Long:    `Print the wallet settings stored by the backend.`,
	Example: `  green getsettings > settings.json`,
	GroupID: groupConfig,
	Args:    cobra.NoArgs,
	RunE:    runGetSettings,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var changesettingsCmd = &cobra.Command{
	Use:   "changesettings <file|->",
	Short: "Change wallet settings",
	Long: `Replace the wallet settings with a JSON document.

The document is usually an edited copy of getsettings output. Changes that
need two-factor authentication prompt for the code.`,
	Example: `  green getsettings > settings.json && $EDITOR settings.json && green changesettings settings.json`,
	GroupID: groupConfig,
	Args:    cobra.ExactArgs(1),
	RunE:    runChangeSettings,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(
		createsubaccountCmd, getsubaccountsCmd, getsubaccountCmd, renamesubaccountCmd,
		setwatchonlyCmd, getwatchonlyCmd, getsettingsCmd, changesettingsCmd,
	)
}

// parsePointer parses a subaccount pointer argument.
func parsePointer(arg string) (uint32, error) {
	pointer, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, greenerr.WithDetails(
			greenerr.WithCause(greenerr.ErrInvalidInput, err),
			map[string]string{"pointer": arg},
		)
	}
	return uint32(pointer), nil
}

func runCreateSubaccount(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	name, kind := args[0], args[1]
	if kind != "2of2" && kind != "2of3" {
		return greenerr.WithSuggestion(
			greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"type": kind}),
			"subaccount type must be 2of2 or 2of3",
		)
	}

	result, err := cc.CallAuth(cmd.Context(), gdk.MethodCreateSubaccount, map[string]string{
		"name": name,
		"type": kind,
	})
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runGetSubaccounts(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodGetSubaccounts)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runGetSubaccount(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	pointer, err := parsePointer(args[0])
	if err != nil {
		return err
	}
	result, err := cc.Call(cmd.Context(), gdk.MethodGetSubaccount, pointer)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runRenameSubaccount(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	pointer, err := parsePointer(args[0])
	if err != nil {
		return err
	}
	_, err = cc.Call(cmd.Context(), gdk.MethodRenameSubaccount, pointer, args[1])
	return err
}

func runSetWatchOnly(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	_, err := cc.Call(cmd.Context(), gdk.MethodSetWatchOnly, args[0], args[1])
	return err
}

func runGetWatchOnly(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodGetWatchOnlyUsername)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runGetSettings(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodGetSettings)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runChangeSettings(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	settings, err := readJSONSource(cc, args[0])
	if err != nil {
		return err
	}
	_, err = cc.CallAuth(cmd.Context(), gdk.MethodChangeSettings, settings)
	return err
}
