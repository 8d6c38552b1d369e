package cli

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/gdk"
	"github.com/mrz1836/greencli/internal/output"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// listenPollInterval is how often listen wakes while no notification arrives.
const listenPollInterval = time.Second

// amountUnits are the units convertamount accepts.
//
//nolint:gochecknoglobals // fixed lookup table
var amountUnits = []string{"bits", "btc", "mbtc", "ubtc", "satoshi", "sats"}

// getnetworksCmd lists backend networks.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getnetworksCmd = &cobra.Command{
	Use:   "getnetworks",
	Short: "List the networks known to the backend",
	Long: `Print the parameters of every network the backend supports.

No login is needed.`,
	Example: `  green getnetworks`,
	GroupID: groupConfig,
	Args:    cobra.NoArgs,
	RunE:    runGetNetworks,
}

// getnetworkCmd shows the active network.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var getnetworkCmd = &cobra.Command{
	Use:   "getnetwork",
	Short: "Show the active network",
	Long: `Print the backend parameters of the network selected with --network.

No login is needed.`,
	Example: `  green --network testnet getnetwork`,
	GroupID: groupConfig,
	Args:    cobra.NoArgs,
	RunE:    runGetNetwork,
}

// listenCmd prints notifications.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Listen for notifications",
	Long: `Wait indefinitely for notifications from the backend and print them.

Press ctrl-c to stop.`,
	Example: `  green listen
  green -c listen | jq .event`,
	GroupID: groupWallet,
	Args:    cobra.NoArgs,
	RunE:    runListen,
}

// convertamountCmd converts between units.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var convertamountCmd = &cobra.Command{
	Use:   "convertamount <amount> <unit>",
	Short: "Convert an amount between units",
	Long: `Convert an amount given in one unit into every unit the backend knows,
including the fiat value at the current exchange rate.

Units: bits, btc, mbtc, ubtc, satoshi, sats. Satoshi amounts must be integers.`,
	Example: `  green convertamount 0.001 btc
  green convertamount 100000 satoshi`,
	GroupID:   groupWallet,
	Args:      cobra.ExactArgs(2),
	ValidArgs: amountUnits,
	RunE:      runConvertAmount,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(getnetworksCmd, getnetworkCmd, listenCmd, convertamountCmd)
}

func runGetNetworks(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	networks, err := getNetworks(cmd.Context(), cc)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(networks)
}

func getNetworks(ctx context.Context, cc *CommandContext) (json.RawMessage, error) {
	s, err := cc.Session(ctx)
	if err != nil {
		return nil, err
	}
	return s.Call(ctx, gdk.MethodGetNetworks)
}

func runGetNetwork(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	raw, err := getNetworks(cmd.Context(), cc)
	if err != nil {
		return err
	}

	var networks map[string]json.RawMessage
	if err = json.Unmarshal(raw, &networks); err != nil {
		return greenerr.Wrap(err, "decoding networks")
	}
	network, ok := networks[cc.Cfg.Network]
	if !ok {
		return greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"network": cc.Cfg.Network})
	}
	return cc.Fmt.PrintRaw(network)
}

func runListen(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := cc.EnsureLogin(ctx)
	if err != nil {
		return err
	}
	notifications, err := s.Notifications(ctx)
	if err != nil {
		return err
	}

	return listen(ctx, cc, notifications, listenPollInterval)
}

// listen prints notifications until ctx is done or the stream closes.
func listen(ctx context.Context, cc *CommandContext, notifications <-chan json.RawMessage, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notifications:
			if !ok {
				output.Warn(cc.Notice, "notification stream closed")
				return nil
			}
			if err := cc.Fmt.PrintRaw(n); err != nil {
				return err
			}
		case <-ticker.C:
		}
	}
}

func runConvertAmount(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	details, err := amountDetails(args[0], args[1])
	if err != nil {
		return err
	}

	result, err := cc.Call(cmd.Context(), gdk.MethodConvertAmount, details)
	if err != nil {
		return err
	}
	return cc.Fmt.PrintRaw(result)
}

// amountDetails builds {unit: amount}. Satoshi is an integer, every other
// unit is passed as a string.
func amountDetails(amount, unit string) (map[string]any, error) {
	unit = strings.ToLower(unit)
	valid := false
	for _, u := range amountUnits {
		if u == unit {
			valid = true
			break
		}
	}
	if !valid {
		return nil, greenerr.WithSuggestion(
			greenerr.WithDetails(greenerr.ErrInvalidInput, map[string]string{"unit": unit}),
			"use one of: "+strings.Join(amountUnits, ", "),
		)
	}

	if unit != "satoshi" {
		return map[string]any{unit: amount}, nil
	}
	satoshi, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return nil, greenerr.WithDetails(
			greenerr.WithCause(greenerr.ErrInvalidInput, err),
			map[string]string{"amount": amount},
		)
	}
	return map[string]any{unit: satoshi}, nil
}
