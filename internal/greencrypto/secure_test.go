package greencrypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/greencli/internal/greencrypto"
)

func TestSecureBytes_Creation(t *testing.T) {
	t.Parallel()
	sb := greencrypto.NewSecureBytes(64)
	defer sb.Destroy()

	assert.Len(t, sb.Bytes(), 64)
	assert.Equal(t, 64, sb.Len())
	// Locking depends on RLIMIT_MEMLOCK; only check it does not panic
	_ = sb.IsLocked()
}

func TestSecureBytes_DestroyZeroes(t *testing.T) {
	t.Parallel()
	sb := greencrypto.NewSecureBytes(4)
	data := sb.Bytes()
	copy(data, []byte{1, 2, 3, 4})

	sb.Destroy()
	assert.Equal(t, []byte{0, 0, 0, 0}, data)
	assert.Nil(t, sb.Bytes())
	assert.Zero(t, sb.Len())

	// Second destroy is a no-op
	sb.Destroy()
}

func TestFromSlice_ZeroesSource(t *testing.T) {
	t.Parallel()
	src := []byte("seed material")
	sb := greencrypto.FromSlice(src)
	defer sb.Destroy()

	assert.Equal(t, []byte("seed material"), sb.Bytes())
	assert.Equal(t, make([]byte, len(src)), src)
}

func TestSecureBytes_ZeroSize(t *testing.T) {
	t.Parallel()
	sb := greencrypto.NewSecureBytes(0)
	defer sb.Destroy()
	assert.Empty(t, sb.Bytes())
	assert.False(t, sb.IsLocked())
}
