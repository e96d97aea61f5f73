package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/glcache/internal/testutil"
)

func writeCache(t *testing.T, dir string) string {
	t.Helper()
	payload := []byte{0x0B, 0, 0, 0, 'a', 'b', 'c', 'd'}
	c := testutil.BuildTestCache([]testutil.TestSection{{Payload: payload, UnpackedSize: uint32(len(payload))}})

	indexPath := filepath.Join(dir, "cache.toc")
	require.NoError(t, os.WriteFile(indexPath, c.Index, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache.bin"), c.Blob, 0o600))
	return indexPath
}

func TestRunExtract(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	indexPath := writeCache(t, dir)
	outDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--json", "--manifest", indexPath, outDir}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "1 entries: 1 unpacked, 0 skipped, 0 unknown packing\n", stdout.String())

	for _, name := range []string{"header00000.bin", "object00000.raw", "object00000.arbbin", "manifest.json"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	t.Run("no clobber keeps existing files", func(t *testing.T) {
		headerPath := filepath.Join(outDir, "header00000.bin")
		require.NoError(t, os.WriteFile(headerPath, []byte("keep"), 0o600))

		stdout.Reset()
		require.NoError(t, run([]string{"--no-clobber", indexPath, outDir}, &stdout, &stderr))
		got, err := os.ReadFile(headerPath)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(got))
		assert.Equal(t, "1 entries: 1 unpacked, 0 skipped, 0 unknown packing, 3 existing files kept\n", stdout.String())
	})
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run([]string{"only-one-arg"}, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "Usage:")

	stderr.Reset()
	require.NoError(t, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--workers")
}

func TestRunScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	indexPath := writeCache(t, dir)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--scan", dir}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "ENTRIES")
	assert.Contains(t, stdout.String(), indexPath)
}
