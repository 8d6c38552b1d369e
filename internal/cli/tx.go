package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/gdk"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// defaultFeeMultiplier is bumpfee's fee rate multiplier.
const defaultFeeMultiplier = 2.0

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// createAddressees are ADDRESS:SATOSHI outputs for createtransaction.
	createAddressees []string
	// createSubaccount spends from this subaccount.
	createSubaccount uint32
	// createFeeRate overrides the fee rate in satoshi per 1000 bytes.
	createFeeRate int64

	// sendSubaccount spends from this subaccount in sendtoaddress.
	sendSubaccount uint32
)

// Addressee is one transaction output.
type Addressee struct {
	Address string `json:"address"`
	Satoshi int64  `json:"satoshi"`
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var createtransactionCmd = &cobra.Command{
	Use:   "createtransaction",
	Short: "Create an outgoing transaction",
	Long: `Create an unsigned transaction paying the given addressees.

The output is the transaction details document that signtransaction takes.`,
	Example: `  green createtransaction -a 2N2yMH3wBGvwpYPYx3xDKbLq2iBzbZs9Pfn:1000 -f 2000 > tx.json`,
	GroupID: groupTx,
	Args:    cobra.NoArgs,
	RunE:    runCreateTransaction,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signtransactionCmd = &cobra.Command{
	Use:   "signtransaction <details|->",
	Short: "Sign a transaction",
	Long: `Sign a transaction created by createtransaction.

DETAILS is a file name, or - to read from standard input. Inputs the active
authenticator cannot sign fail the whole command and no signature is returned.`,
	Example: `  green createtransaction -a <address>:1000 | green signtransaction -`,
	GroupID: groupTx,
	Args:    cobra.ExactArgs(1),
	RunE:    runSignTransaction,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendtransactionCmd = &cobra.Command{
	Use:   "sendtransaction <details|->",
	Short: "Send a transaction",
	Long: `Broadcast a transaction previously returned by signtransaction.

DETAILS is a file name, or - to read from standard input.`,
	Example: `  green createtransaction -a <address>:1000 | green signtransaction - | green sendtransaction -`,
	GroupID: groupTx,
	Args:    cobra.ExactArgs(1),
	RunE:    runSendTransaction,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendtoaddressCmd = &cobra.Command{
	Use:   "sendtoaddress <address> <amount>",
	Short: "Send an amount in BTC to an address",
	Long: `Create, sign and send a transaction paying AMOUNT to ADDRESS, printing the txid.

AMOUNT is in BTC like bitcoin-cli. It is converted to satoshi by the backend.`,
	Example: `  green sendtoaddress 2N2yMH3wBGvwpYPYx3xDKbLq2iBzbZs9Pfn 0.001`,
	GroupID: groupTx,
	Args:    cobra.ExactArgs(2),
	RunE:    runSendToAddress,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var bumpfeeCmd = &cobra.Command{
	Use:   "bumpfee <previous_txid> [fee_multiplier]",
	Short: "Replace a transaction with a higher fee",
	Long: `Replace an unconfirmed RBF transaction with one paying a higher fee rate.

The new fee rate is the previous one times FEE_MULTIPLIER, 2 by default. The
previous transaction must be in the first page of the history.`,
	Example: `  green bumpfee 3f2a...c1 1.5`,
	GroupID: groupTx,
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runBumpFee,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(createtransactionCmd, signtransactionCmd, sendtransactionCmd, sendtoaddressCmd, bumpfeeCmd)

	createtransactionCmd.Flags().StringArrayVarP(&createAddressees, "addressee", "a", nil, "output as ADDRESS:SATOSHI (repeatable)")
	createtransactionCmd.Flags().Uint32Var(&createSubaccount, "subaccount", 0, "subaccount pointer")
	createtransactionCmd.Flags().Int64VarP(&createFeeRate, "fee-rate", "f", 0, "fee rate in satoshi per 1000 bytes")

	sendtoaddressCmd.Flags().Uint32Var(&sendSubaccount, "subaccount", 0, "subaccount pointer")
}

// parseAddressee parses ADDRESS:SATOSHI. The split is on the last colon.
func parseAddressee(s string) (Addressee, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return Addressee{}, greenerr.WithSuggestion(
			greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"addressee": s}),
			"use ADDRESS:SATOSHI",
		)
	}
	satoshi, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || satoshi <= 0 {
		return Addressee{}, greenerr.WithSuggestion(
			greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"addressee": s}),
			"the amount must be a positive integer number of satoshi",
		)
	}
	return Addressee{Address: s[:i], Satoshi: satoshi}, nil
}

func runCreateTransaction(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	addressees := make([]Addressee, 0, len(createAddressees))
	for _, a := range createAddressees {
		addressee, err := parseAddressee(a)
		if err != nil {
			return err
		}
		addressees = append(addressees, addressee)
	}

	details := map[string]any{
		"subaccount": createSubaccount,
		"addressees": addressees,
	}
	if cmd.Flags().Changed("fee-rate") {
		details["fee_rate"] = createFeeRate
	}

	result, err := cc.Call(cmd.Context(), gdk.MethodCreateTransaction, details)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

func runSignTransaction(cmd *cobra.Command, args []string) error {
	return resolveDocument(cmd, gdk.MethodSignTransaction, args[0])
}

func runSendTransaction(cmd *cobra.Command, args []string) error {
	return resolveDocument(cmd, gdk.MethodSendTransaction, args[0])
}

// resolveDocument passes a JSON document to a method returning a pending
// action and prints the resolved result.
func resolveDocument(cmd *cobra.Command, method, source string) error {
	cc := GetCmdContext(cmd)
	details, err := readJSONSource(cc, source)
	if err != nil {
		return err
	}
	result, err := cc.CallAuth(cmd.Context(), method, details)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

// sendTransaction creates, signs and sends a transaction and returns its txid.
func sendTransaction(ctx context.Context, cc *CommandContext, details map[string]any) (string, error) {
	created, err := cc.Call(ctx, gdk.MethodCreateTransaction, details)
	if err != nil {
		return "", err
	}
	signed, err := cc.CallAuth(ctx, gdk.MethodSignTransaction, created)
	if err != nil {
		return "", err
	}
	sent, err := cc.CallAuth(ctx, gdk.MethodSendTransaction, signed)
	if err != nil {
		return "", err
	}

	var txhash string
	if err = decodeField(sent, "txhash", &txhash); err != nil {
		return "", err
	}
	return txhash, nil
}

func runSendToAddress(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	ctx := cmd.Context()

	converted, err := cc.Call(ctx, gdk.MethodConvertAmount, map[string]string{"btc": args[1]})
	if err != nil {
		return err
	}
	var satoshi int64
	if err = decodeField(converted, "satoshi", &satoshi); err != nil {
		return err
	}

	txhash, err := sendTransaction(ctx, cc, map[string]any{
		"subaccount": sendSubaccount,
		"addressees": []Addressee{{Address: args[0], Satoshi: satoshi}},
	})
	if err != nil {
		return err
	}
	return cc.Fmt.Print(txhash)
}

// historyEntry is the part of a transaction list entry bumpfee reads.
type historyEntry struct {
	TxHash  string  `json:"txhash"`
	CanRBF  bool    `json:"can_rbf"`
	FeeRate float64 `json:"fee_rate"`
}

// findTransaction looks txid up in the first page of subaccount 0.
func findTransaction(ctx context.Context, cc *CommandContext, txid string) (json.RawMessage, historyEntry, error) {
	result, err := cc.Call(ctx, gdk.MethodGetTransactions, map[string]any{
		"subaccount": 0,
		"first":      0,
		"count":      defaultTransactionCount,
	})
	if err != nil {
		return nil, historyEntry{}, err
	}

	var list []json.RawMessage
	if err = json.Unmarshal(result, &list); err != nil {
		// Newer bridges wrap the page in an object
		if err = decodeField(result, "transactions", &list); err != nil {
			return nil, historyEntry{}, err
		}
	}

	for _, raw := range list {
		var entry historyEntry
		if err = json.Unmarshal(raw, &entry); err != nil {
			return nil, historyEntry{}, fmt.Errorf("decoding transaction: %w", err)
		}
		if entry.TxHash == txid {
			return raw, entry, nil
		}
	}
	return nil, historyEntry{}, greenerr.WithSuggestion(
		greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"txid": txid}),
		"previous transaction not found",
	)
}

func runBumpFee(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	ctx := cmd.Context()

	multiplier := defaultFeeMultiplier
	if len(args) > 1 {
		m, err := strconv.ParseFloat(args[1], 64)
		if err != nil || m <= 0 {
			return greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"fee_multiplier": args[1]})
		}
		multiplier = m
	}

	previous, entry, err := findTransaction(ctx, cc, args[0])
	if err != nil {
		return err
	}
	if !entry.CanRBF {
		return greenerr.WithSuggestion(
			greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"txid": args[0]}),
			"previous transaction not replaceable",
		)
	}

	txhash, err := sendTransaction(ctx, cc, map[string]any{
		"previous_transaction": previous,
		"subaccount":           0,
		"fee_rate":             int64(entry.FeeRate * multiplier),
	})
	if err != nil {
		return err
	}
	return cc.Fmt.Print(txhash)
}
