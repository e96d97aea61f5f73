package fileops

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/glcache/internal/cachetype"
	"github.com/meigma/glcache/internal/rle"
	"github.com/meigma/glcache/internal/testutil"
)

func TestDecompressPool_Get(t *testing.T) {
	t.Parallel()

	original := []byte("NVuc shader microcode archive, compressed with zstd for the cache")
	compressed := testutil.CompressZstd(t, original)

	pool := NewDecompressPool(0)

	t.Run("basic decode", func(t *testing.T) {
		t.Parallel()
		dec, release, err := pool.Get(bytes.NewReader(compressed))
		require.NoError(t, err)
		defer release()

		result, err := io.ReadAll(dec)
		require.NoError(t, err)
		assert.Equal(t, original, result)
	})

	t.Run("decoder reuse", func(t *testing.T) {
		t.Parallel()
		for i := range 5 {
			dec, release, err := pool.Get(bytes.NewReader(compressed))
			require.NoError(t, err, "iteration %d", i)
			result, err := io.ReadAll(dec)
			release()
			require.NoError(t, err, "iteration %d", i)
			assert.Equal(t, original, result, "iteration %d", i)
		}
	})

	t.Run("nil pool", func(t *testing.T) {
		t.Parallel()
		var p *DecompressPool
		dec, release, err := p.Get(bytes.NewReader(compressed))
		require.NoError(t, err)
		defer release()

		result, err := io.ReadAll(dec)
		require.NoError(t, err)
		assert.Equal(t, original, result)
	})
}

func TestUnpack(t *testing.T) {
	t.Parallel()

	object := append([]byte("NVuc"), bytes.Repeat([]byte{0, 0, 0, 0, 0xFF, 0xFF, 1, 2, 3}, 40)...)
	size := uint32(len(object)) //nolint:gosec // fixture is small

	u := NewUnpacker()

	t.Run("raw passthrough", func(t *testing.T) {
		t.Parallel()
		payload := []byte("anything at all")
		got, err := u.Unpack(cachetype.PackingRaw, payload, 3)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("rle", func(t *testing.T) {
		t.Parallel()
		got, err := u.Unpack(cachetype.PackingRLE, testutil.EncodeRLE(object), size)
		require.NoError(t, err)
		assert.Equal(t, object, got)
	})

	t.Run("rle size mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := u.Unpack(cachetype.PackingRLE, testutil.EncodeRLE(object), size+1)
		require.ErrorIs(t, err, cachetype.ErrSizeMismatch)
	})

	t.Run("rle zero length record", func(t *testing.T) {
		t.Parallel()
		_, err := u.Unpack(cachetype.PackingRLE, []byte{0x02, 'a', 'b', 0x40}, 2)
		require.ErrorIs(t, err, cachetype.ErrDecompression)
		require.ErrorIs(t, err, rle.ErrInvalidEncoding)
	})

	t.Run("rle truncated", func(t *testing.T) {
		t.Parallel()
		_, err := u.Unpack(cachetype.PackingRLE, []byte{0x05, 'N', 'V'}, 5)
		require.ErrorIs(t, err, rle.ErrTruncatedInput)
	})

	t.Run("zstd", func(t *testing.T) {
		t.Parallel()
		got, err := u.Unpack(cachetype.PackingZstd, testutil.CompressZstd(t, object), size)
		require.NoError(t, err)
		assert.Equal(t, object, got)
	})

	t.Run("zstd shorter than declared", func(t *testing.T) {
		t.Parallel()
		_, err := u.Unpack(cachetype.PackingZstd, testutil.CompressZstd(t, object), size+10)
		require.ErrorIs(t, err, cachetype.ErrSizeMismatch)
	})

	t.Run("zstd longer than declared", func(t *testing.T) {
		t.Parallel()
		_, err := u.Unpack(cachetype.PackingZstd, testutil.CompressZstd(t, object), size-1)
		require.ErrorIs(t, err, cachetype.ErrSizeMismatch)
	})

	t.Run("zstd corrupt", func(t *testing.T) {
		t.Parallel()
		payload := []byte{0x28, 0xB5, 0x2F, 0xFD, 0xFF, 0xFF, 0xFF, 0xFF}
		_, err := u.Unpack(cachetype.PackingZstd, payload, 100)
		require.Error(t, err)
		assert.True(t, isDecodeFailure(err), "unexpected error %v", err)
	})

	t.Run("unknown packing", func(t *testing.T) {
		t.Parallel()
		_, err := u.Unpack(cachetype.PackingUnknown, object, size)
		require.ErrorIs(t, err, cachetype.ErrUnknownPacking)
	})
}

func TestUnpackSizeLimit(t *testing.T) {
	t.Parallel()

	u := NewUnpacker(WithMaxObjectSize(16))

	_, err := u.Unpack(cachetype.PackingRLE, []byte{0xD1}, 17)
	require.ErrorIs(t, err, cachetype.ErrSizeOverflow)

	got, err := u.Unpack(cachetype.PackingRLE, []byte{0xD0}, 16)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), got)

	unlimited := NewUnpacker(WithMaxObjectSize(0))
	got, err = unlimited.Unpack(cachetype.PackingRLE, []byte{0xD1}, 17)
	require.NoError(t, err)
	assert.Len(t, got, 17)
}

func isDecodeFailure(err error) bool {
	return errors.Is(err, cachetype.ErrDecompression) || errors.Is(err, cachetype.ErrSizeMismatch)
}
