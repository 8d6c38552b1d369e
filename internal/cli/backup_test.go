package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	greenerr "github.com/mrz1836/greencli/pkg/errors"
)

const testBackupPassphrase = "correct horse battery"

func TestBackup_ExportImportRoundtrip(t *testing.T) {
	withMockPrompts(t, testBackupPassphrase)
	path := filepath.Join(t.TempDir(), "green.age")

	src := newTestEnv(t).withMnemonic(t)
	require.NoError(t, runBackupExport(src.command(), []string{path}))
	assert.Contains(t, src.notice.String(), "mnemonic backup written to "+path)
	assert.Empty(t, src.out.String())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	sealed, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "abandon", "backup must not contain the plaintext phrase")

	dst := newTestEnv(t)
	require.NoError(t, runBackupImport(dst.command(), []string{path}))
	assert.Contains(t, dst.notice.String(), "mnemonic restored")

	phrase, err := dst.store.Load()
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, phrase)
	assert.Empty(t, dst.session.calls, "backups never touch the backend")
}

func TestBackupExport_RefusesExistingFile(t *testing.T) {
	withMockPrompts(t, testBackupPassphrase)
	path := filepath.Join(t.TempDir(), "green.age")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o600))

	env := newTestEnv(t).withMnemonic(t)
	err := runBackupExport(env.command(), []string{path})
	require.ErrorIs(t, err, greenerr.ErrRefusedOverwrite)

	data, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestBackupExport_NoMnemonic(t *testing.T) {
	withMockPrompts(t, testBackupPassphrase)
	path := filepath.Join(t.TempDir(), "green.age")

	env := newTestEnv(t)
	err := runBackupExport(env.command(), []string{path})
	require.ErrorIs(t, err, greenerr.ErrNotFound)
	assert.NoFileExists(t, path)
}

func TestBackupImport_WrongPassphrase(t *testing.T) {
	withMockPrompts(t, testBackupPassphrase)
	path := filepath.Join(t.TempDir(), "green.age")
	require.NoError(t, runBackupExport(newTestEnv(t).withMnemonic(t).command(), []string{path}))

	withMockPrompts(t, "not the passphrase")
	env := newTestEnv(t)
	err := runBackupImport(env.command(), []string{path})
	require.ErrorIs(t, err, greenerr.ErrDecryptionFailed)

	_, err = env.store.Load()
	require.ErrorIs(t, err, greenerr.ErrNotFound)
}

func TestBackupImport_NotABackup(t *testing.T) {
	withMockPrompts(t, testBackupPassphrase)
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte(testMnemonic), 0o600))

	err := runBackupImport(newTestEnv(t).command(), []string{path})
	require.ErrorIs(t, err, greenerr.ErrDecryptionFailed)
}

func TestBackupImport_EmptyPassphrase(t *testing.T) {
	withMockPrompts(t, testBackupPassphrase)
	path := filepath.Join(t.TempDir(), "green.age")
	require.NoError(t, runBackupExport(newTestEnv(t).withMnemonic(t).command(), []string{path}))

	withMockPrompts(t, "")
	err := runBackupImport(newTestEnv(t).command(), []string{path})
	require.ErrorIs(t, err, greenerr.ErrInvalidInput)
}

func TestBackupImport_MissingFile(t *testing.T) {
	withMockPrompts(t, testBackupPassphrase)

	err := runBackupImport(newTestEnv(t).command(), []string{filepath.Join(t.TempDir(), "missing.age")})
	require.ErrorIs(t, err, greenerr.ErrInvalidInput)
}

func TestBackupImport_RefusesOverwrite(t *testing.T) {
	withMockPrompts(t, testBackupPassphrase)
	path := filepath.Join(t.TempDir(), "green.age")
	require.NoError(t, runBackupExport(newTestEnv(t).withMnemonic(t).command(), []string{path}))

	env := newTestEnv(t).withMnemonic(t)
	err := runBackupImport(env.command(), []string{path})
	require.ErrorIs(t, err, greenerr.ErrRefusedOverwrite)
}
