package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/output"
)

// defaultTransactionCount is the page size of gettransactions.
const defaultTransactionCount = 30

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// receiveSubaccount is the subaccount for getnewaddress.
	receiveSubaccount uint32
	// receiveAddressType asks for a specific address type.
	receiveAddressType string
	// receiveQR renders the address as a QR code.
	receiveQR bool

	// balanceSubaccount and balanceNumConfs filter getbalance and getunspentoutputs.
	balanceSubaccount uint32
	balanceNumConfs   uint32

	// txListSubaccount, txListFirst and txListCount page gettransactions.
	txListSubaccount uint32
	txListFirst      uint32
	txListCount      uint32
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getnewaddressCmd = &cobra.Command{
	Use:   "getnewaddress",
	Short: "Get a new receive address",
	Long: `Print a new receive address for a subaccount.

With --qr the address is also drawn as a QR code when stdout is a terminal.`,
	Example: `  green getnewaddress
  green getnewaddress --subaccount 1 --qr`,
	GroupID: groupWallet,
	Args:    cobra.NoArgs,
	RunE:    runGetNewAddress,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getfeeestimatesCmd = &cobra.Command{
	Use:     "getfeeestimates",
	Short:   "Get fee estimates",
	Long:    `Print the backend's fee rate estimates in satoshi per 1000 bytes.`,
	Example: `  green getfeeestimates`,
	GroupID: groupTx,
	Args:    cobra.NoArgs,
	RunE:    runGetFeeEstimates,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getbalanceCmd = &cobra.Command{
	Use:     "getbalance",
	Short:   "Get balance",
	Long:    `Print the balance of a subaccount in every unit the backend knows.`,
	Example: `  green getbalance --subaccount 1 --num-confs 1`,
	GroupID: groupWallet,
	Args:    cobra.NoArgs,
	RunE:    runGetBalance,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getunspentoutputsCmd = &cobra.Command{
	Use:     "getunspentoutputs",
	Short:   "Get unspent outputs",
	Long:    `Print the unspent outputs of a subaccount grouped by asset.`,
	Example: `  green getunspentoutputs --num-confs 1`,
	GroupID: groupWallet,
	Args:    cobra.NoArgs,
	RunE:    runGetUnspentOutputs,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var gettransactionsCmd = &cobra.Command{
	Use:     "gettransactions",
	Short:   "List transactions",
	Long:    `Print one page of a subaccount's transaction history, newest first.`,
	Example: `  green gettransactions --first 30 --count 30`,
	GroupID: groupTx,
	Args:    cobra.NoArgs,
	RunE:    runGetTransactions,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(getnewaddressCmd, getfeeestimatesCmd, getbalanceCmd, getunspentoutputsCmd, gettransactionsCmd)

	getnewaddressCmd.Flags().Uint32Var(&receiveSubaccount, "subaccount", 0, "subaccount pointer")
	getnewaddressCmd.Flags().StringVar(&receiveAddressType, "address-type", "", "address type, for example csv or p2wsh")
	getnewaddressCmd.Flags().BoolVar(&receiveQR, "qr", false, "also render the address as a QR code")

	for _, c := range []*cobra.Command{getbalanceCmd, getunspentoutputsCmd} {
		c.Flags().Uint32Var(&balanceSubaccount, "subaccount", 0, "subaccount pointer")
		c.Flags().Uint32Var(&balanceNumConfs, "num-confs", 0, "minimum confirmations")
	}

	gettransactionsCmd.Flags().Uint32Var(&txListSubaccount, "subaccount", 0, "subaccount pointer")
	gettransactionsCmd.Flags().Uint32Var(&txListFirst, "first", 0, "index of the first transaction")
	gettransactionsCmd.Flags().Uint32Var(&txListCount, "count", defaultTransactionCount, "number of transactions")
}

func runGetNewAddress(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	result, err := cc.Call(cmd.Context(), gdk.MethodGetReceiveAddress, map[string]any{
		"subaccount":   receiveSubaccount,
		"address_type": receiveAddressType,
	})
	if err != nil {
		return err
	}

	var address string
	if err = decodeField(result, "address", &address); err != nil {
		return err
	}

	if err = cc.Fmt.Print(address); err != nil {
		return err
	}
	if receiveQR {
		return output.RenderQR(cc.Fmt.Writer(), address, output.DefaultQRConfig())
	}
	return nil
}

func runGetFeeEstimates(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodGetFeeEstimates)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runGetBalance(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodGetBalance, balanceDetails())
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runGetUnspentOutputs(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodGetUnspentOutputs, balanceDetails())
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func balanceDetails() map[string]any {
	return map[string]any{
		"subaccount": balanceSubaccount,
		"num_confs":  balanceNumConfs,
	}
}

func runGetTransactions(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	result, err := cc.Call(cmd.Context(), gdk.MethodGetTransactions, map[string]any{
		"subaccount": txListSubaccount,
		"first":      txListFirst,
		"count":      txListCount,
	})
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}
