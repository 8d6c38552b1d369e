// Package cli implements the green command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and released by Execute.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/greencli/internal/config"
	"github.com/mrz1836/greencli/internal/keystore"
	"github.com/mrz1836/greencli/internal/metrics"
	"github.com/mrz1836/greencli/internal/output"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

// Command group IDs for organized help output.
const (
	groupWallet   = "wallet"
	groupTx       = "tx"
	groupSecurity = "security"
	groupConfig   = "config"
)

var (
	// Global flags
	debug       bool
	networkName string
	authKind    string
	configDir   string
	compact     bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	cmdCtx    *CommandContext
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var buildInfo BuildInfo

// SetBuildInfo records version details injected at link time.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
}

// formatVersion renders BuildInfo for the version command.
func formatVersion(info BuildInfo) string {
	v, c, d := info.Version, info.Commit, info.Date
	if v == "" {
		v = "dev"
	}
	if c == "" {
		c = "unknown"
	}
	if d == "" {
		d = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "green",
	Short: "Command line interface for a Green multisig wallet",
	Long: `green drives a Green 2of2/2of3 multisig wallet through a gdk bridge.

Wallet credentials are kept in the config directory, either as a plaintext
mnemonic or as PIN data encrypted by the backend. Signing can also be done
locally (--auth wally) or by a hardware device through hwi (--auth hardware).
Actions that need two-factor authentication prompt for the code on the console.`,
	Example: `  green --network testnet create
  green getbalance --subaccount 0
  green createtransaction -a 2N2yMH3wBGvwpYPYx3xDKbLq2iBzbZs9Pfn:1000 | green signtransaction - | green sendtransaction -`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print version information",
	Long:    `Print the version, commit and build date of this binary.`,
	Example: `  green version`,
	GroupID: groupConfig,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outln(cmd.OutOrStdout(), "green "+formatVersion(buildInfo))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	cleanup()
	if err != nil {
		_ = output.FormatError(os.Stderr, err, output.DetectFormat(os.Stderr, output.FormatAuto))
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return greenerr.ExitCode(err)
}

// resolveNetwork picks the network before any file is read, since the
// default config directory depends on it.
func resolveNetwork(cmd *cobra.Command) string {
	if cmd.Flags().Changed("network") {
		return strings.ToLower(strings.TrimSpace(networkName))
	}
	if v := os.Getenv(config.EnvNetwork); v != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return config.NetworkLocaltest
}

// resolveConfigDir returns --config-dir, GREEN_CONFIG_DIR or the per-network default.
func resolveConfigDir(network string) string {
	if configDir != "" {
		return configDir
	}
	if v := os.Getenv(config.EnvConfigDir); v != "" {
		return v
	}
	return config.DefaultDir(network)
}

// initGlobals loads configuration and builds the command context.
// Precedence is defaults, then config file, then environment, then flags.
func initGlobals(cmd *cobra.Command) error {
	network := resolveNetwork(cmd)
	if network == config.NetworkMainnet {
		return greenerr.ErrMainnetRefused
	}

	dir := resolveConfigDir(network)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return greenerr.WithDetails(
			greenerr.Wrap(err, "creating config directory"),
			map[string]string{"path": dir},
		)
	}

	var err error
	cfg, err = config.LoadOrDefault(config.Path(dir))
	if err != nil {
		return err
	}
	config.ApplyEnvironment(cfg)

	if cmd.Flags().Changed("network") || os.Getenv(config.EnvNetwork) != "" || configDir == "" {
		cfg.Network = network
	}
	if cmd.Flags().Changed("auth") {
		cfg.Auth = authKind
	}
	if compact {
		cfg.Output.Compact = true
	}
	if debug {
		cfg.Logging.Level = config.LogLevelDebug.String()
	}

	if err = cfg.Validate(); err != nil {
		return err
	}

	level := config.ParseLogLevel(cfg.GetLoggingLevel())
	if file := cfg.GetLoggingFile(); file != "" {
		logger, err = config.NewLogger(level, file)
		if err != nil {
			output.Warnf(os.Stderr, "cannot open log file %s (%v), logging to stderr", file, err)
			logger = config.NewConsoleLogger(level, os.Stderr)
		}
	} else {
		logger = config.NewConsoleLogger(level, os.Stderr)
	}
	logger.Debug("config dir %s network %s auth %s", dir, cfg.Network, cfg.Auth)

	formatter = output.NewFormatter(os.Stdout, cfg.Output.Compact)

	cmdCtx = NewCommandContext(cfg, logger, formatter).
		WithStore(keystore.NewFileStore(dir))
	SetCmdContext(cmd, cmdCtx)

	return nil
}

// cleanup releases resources. It is safe to call more than once.
func cleanup() {
	if cmdCtx != nil {
		cmdCtx.Close()
		cmdCtx = nil
	}
	if logger != nil {
		logger.Debug("metrics: %s", metrics.Global.Snapshot())
		_ = logger.Close()
		logger = nil
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupWallet, Title: "Wallet Operations:"},
		&cobra.Group{ID: groupTx, Title: "Transactions:"},
		&cobra.Group{ID: groupSecurity, Title: "Security & Access:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(groupConfig)
	rootCmd.SetCompletionCommandGroupID(groupConfig)

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose debug logging")
	rootCmd.PersistentFlags().StringVar(&networkName, "network", config.NetworkLocaltest, "network: localtest|testnet|mainnet")
	rootCmd.PersistentFlags().StringVar(&authKind, "auth", "", "authenticator: default|wally|hardware")
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "C", "", "override config directory (default: ~/.green-cli/<network>)")
	rootCmd.PersistentFlags().BoolVarP(&compact, "compact", "c", false, "compact json output (no pretty printing)")

	// version works without a config directory
	versionCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error { return nil }
	rootCmd.AddCommand(versionCmd)
}
