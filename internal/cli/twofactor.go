package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/gdk"
)

// twoFactorSettings is the change request for one authentication factor.
type twoFactorSettings struct {
	Confirmed bool   `json:"confirmed"`
	Enabled   bool   `json:"enabled"`
	Data      string `json:"data,omitempty"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaCmd = &cobra.Command{
	Use:     "2fa",
	Short:   "Two-factor authentication",
	Long:    `Inspect and change the wallet's two-factor authentication.`,
	GroupID: groupSecurity,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaGetConfigCmd = &cobra.Command{
	Use:     "getconfig",
	Short:   "Print two-factor authentication configuration",
	Long:    `Print the enabled factors, their confirmed data and the spending limits.`,
	Example: `  green 2fa getconfig`,
	Args:    cobra.NoArgs,
	RunE:    runTwoFactorGetConfig,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaEnableCmd = &cobra.Command{
	Use:   "enable <factor> <data>",
	Short: "Enable an authentication factor",
	Long: `Enable FACTOR (email, sms, phone or gauth) with DATA, for example the
email address or phone number. The backend sends a code to confirm it.`,
	Example: `  green 2fa enable email user@example.com`,
	Args:    cobra.ExactArgs(2),
	RunE:    runTwoFactorEnable,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaDisableCmd = &cobra.Command{
	Use:     "disable <factor>",
	Short:   "Disable an authentication factor",
	Long:    `Disable FACTOR. Another enabled factor confirms the change.`,
	Example: `  green 2fa disable sms`,
	Args:    cobra.ExactArgs(1),
	RunE:    runTwoFactorDisable,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaSetThresholdCmd = &cobra.Command{
	Use:   "setthreshold <threshold> <key>",
	Short: "Set the two-factor threshold",
	Long: `Set the amount that can be spent without two-factor authentication.

KEY is the unit of THRESHOLD: a bitcoin unit such as btc or satoshi, or fiat.`,
	Example: `  green 2fa setthreshold 0.01 btc
  green 2fa setthreshold 50 fiat`,
	Args: cobra.ExactArgs(2),
	RunE: runTwoFactorSetThreshold,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Two-factor authentication reset",
	Long:  `Request, dispute or cancel a two-factor authentication reset.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaResetRequestCmd = &cobra.Command{
	Use:   "request <reset_email>",
	Short: "Request a 2fa reset",
	Long: `Start a two-factor reset to RESET_EMAIL.

The wallet is locked until the reset period ends or the reset is cancelled.`,
	Example: `  green 2fa reset request user@example.com`,
	Args:    cobra.ExactArgs(1),
	RunE:    runTwoFactorResetRequest,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaResetDisputeCmd = &cobra.Command{
	Use:     "dispute <reset_email>",
	Short:   "Dispute a 2fa reset",
	Long:    `Dispute a two-factor reset that another party requested.`,
	Example: `  green 2fa reset dispute user@example.com`,
	Args:    cobra.ExactArgs(1),
	RunE:    runTwoFactorResetDispute,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var twofaResetCancelCmd = &cobra.Command{
	Use:     "cancel",
	Short:   "Cancel a 2fa reset",
	Long:    `Cancel a pending two-factor reset.`,
	Example: `  green 2fa reset cancel`,
	Args:    cobra.NoArgs,
	RunE:    runTwoFactorResetCancel,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	twofaResetCmd.AddCommand(twofaResetRequestCmd, twofaResetDisputeCmd, twofaResetCancelCmd)
	twofaCmd.AddCommand(twofaGetConfigCmd, twofaEnableCmd, twofaDisableCmd, twofaSetThresholdCmd, twofaResetCmd)
	rootCmd.AddCommand(twofaCmd)

	enrichParentLong(twofaResetCmd)
	enrichParentLong(twofaCmd)
}

func runTwoFactorGetConfig(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodGetTwofactorConfig)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runTwoFactorEnable(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	_, err := cc.CallAuth(cmd.Context(), gdk.MethodChangeSettingsTwofactor, args[0],
		twoFactorSettings{Confirmed: true, Enabled: true, Data: args[1]})
	return err
}

func runTwoFactorDisable(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	_, err := cc.CallAuth(cmd.Context(), gdk.MethodChangeSettingsTwofactor, args[0],
		twoFactorSettings{Confirmed: true, Enabled: false})
	return err
}

// thresholdDetails builds the limits change: {"is_fiat": bool, key: threshold}.
func thresholdDetails(threshold, key string) map[string]any {
	return map[string]any{
		"is_fiat": key == "fiat",
		key:       threshold,
	}
}

func runTwoFactorSetThreshold(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	_, err := cc.CallAuth(cmd.Context(), gdk.MethodTwofactorChangeLimits, thresholdDetails(args[0], args[1]))
	return err
}

func runTwoFactorResetRequest(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	_, err := cc.CallAuth(cmd.Context(), gdk.MethodTwofactorReset, args[0], false)
	return err
}

func runTwoFactorResetDispute(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	_, err := cc.CallAuth(cmd.Context(), gdk.MethodTwofactorReset, args[0], true)
	return err
}

func runTwoFactorResetCancel(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	_, err := cc.CallAuth(cmd.Context(), gdk.MethodTwofactorCancelReset)
	return err
}
