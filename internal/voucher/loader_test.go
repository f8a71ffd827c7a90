package voucher

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeVoucherFile writes a gzipped voucher file with one code per line.
func writeVoucherFile(t *testing.T, codes []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vouchers.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	for _, code := range codes {
		_, err := gw.Write([]byte(code + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gw.Close())

	return path
}

func TestFileLoader_Load(t *testing.T) {
	path := writeVoucherFile(t, []string{"SAVE10NOW", "HALFPRICE", "", "  TRIMMED1  "})

	loader := NewFileLoader(zerolog.Nop())
	set, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 3, set.Size())
	assert.True(t, set.Contains("SAVE10NOW"))
	assert.True(t, set.Contains("HALFPRICE"))
	assert.True(t, set.Contains("TRIMMED1"), "codes are trimmed of surrounding whitespace")
	assert.False(t, set.Contains("MISSING99"))
}

func TestFileLoader_MissingFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	set, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.gz"))

	assert.Error(t, err)
	assert.Nil(t, set)
}

func TestFileLoader_NotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("SAVE10NOW\n"), 0o600))

	loader := NewFileLoader(zerolog.Nop())
	set, err := loader.Load(context.Background(), path)

	assert.Error(t, err)
	assert.Nil(t, set)
}

func TestFileLoader_CancelledContext(t *testing.T) {
	path := writeVoucherFile(t, []string{"SAVE10NOW"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewFileLoader(zerolog.Nop())
	set, err := loader.Load(ctx, path)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, set)
}
