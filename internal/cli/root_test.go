package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/greencli/internal/config"
	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{name: "defaults", info: BuildInfo{}, want: "dev (commit: unknown, built: unknown)"},
		{
			name: "release",
			info: BuildInfo{Version: "v0.3.0", Commit: "1a2b3c", Date: "2026-10-01"},
			want: "v0.3.0 (commit: 1a2b3c, built: 2026-10-01)",
		},
		{name: "version only", info: BuildInfo{Version: "v0.3.0"}, want: "v0.3.0 (commit: unknown, built: unknown)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, formatVersion(tc.info))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	orig := buildInfo
	t.Cleanup(func() { SetBuildInfo(orig) })
	SetBuildInfo(BuildInfo{Version: "v1.0.0", Commit: "abc", Date: "today"})

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	assert.Equal(t, "green v1.0.0 (commit: abc, built: today)\n", buf.String())
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, greenerr.ExitSuccess, ExitCode(nil))
	assert.Equal(t, greenerr.ExitNotFound, ExitCode(greenerr.ErrNotFound))
	assert.Equal(t, greenerr.ExitPermission, ExitCode(greenerr.ErrRefusedOverwrite))
	assert.Equal(t, greenerr.ExitDevice, ExitCode(greenerr.ErrDeviceUnavailable))
}

// withConfigDir sets the --config-dir global for one test.
func withConfigDir(t *testing.T, dir string) {
	t.Helper()
	orig := configDir
	t.Cleanup(func() { configDir = orig })
	configDir = dir
}

func TestResolveConfigDir(t *testing.T) {
	t.Setenv(config.EnvConfigDir, "")

	withConfigDir(t, "")
	assert.Equal(t, config.DefaultDir("testnet"), resolveConfigDir("testnet"))

	t.Setenv(config.EnvConfigDir, "/tmp/from-env")
	assert.Equal(t, "/tmp/from-env", resolveConfigDir("testnet"))

	withConfigDir(t, "/tmp/from-flag")
	assert.Equal(t, "/tmp/from-flag", resolveConfigDir("testnet"))
}

func TestResolveNetwork(t *testing.T) {
	t.Setenv(config.EnvNetwork, "")
	cmd := &cobra.Command{}
	assert.Equal(t, config.NetworkLocaltest, resolveNetwork(cmd))

	t.Setenv(config.EnvNetwork, " Testnet ")
	assert.Equal(t, config.NetworkTestnet, resolveNetwork(cmd))
}

func TestInitGlobals_RefusesMainnet(t *testing.T) {
	t.Setenv(config.EnvNetwork, "mainnet")
	withConfigDir(t, t.TempDir())

	err := initGlobals(&cobra.Command{})
	require.ErrorIs(t, err, greenerr.ErrMainnetRefused)
}

func TestInitGlobals_BuildsContext(t *testing.T) {
	t.Setenv(config.EnvNetwork, "testnet")
	t.Setenv(config.EnvConfigDir, "")
	dir := filepath.Join(t.TempDir(), "green")
	withConfigDir(t, dir)
	t.Cleanup(cleanup)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	require.NoError(t, initGlobals(cmd))

	cc := GetCmdContext(cmd)
	require.NotNil(t, cc)
	assert.Same(t, cc, cmdCtx)
	assert.Equal(t, "testnet", Config().Network)
	assert.NotNil(t, Logger())
	assert.NotNil(t, Formatter())
	assert.DirExists(t, dir)

	cleanup()
	assert.Nil(t, cmdCtx)
	assert.Nil(t, Logger())
}
