package glcache

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/glcache/internal/testutil"
)

func TestCachePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path      string
		wantIndex string
		wantBlob  string
		wantErr   bool
	}{
		{path: "GLCache/abc.toc", wantIndex: "GLCache/abc.toc", wantBlob: "GLCache/abc.bin"},
		{path: "a.b.toc", wantIndex: "a.b.toc", wantBlob: "a.b.bin"},
		{path: ".toc", wantIndex: ".toc", wantBlob: ".bin"},
		{path: "toc", wantErr: true},
		{path: "abc.bin", wantErr: true},
		{path: "abc.TOC", wantErr: true},
		{path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			index, blob, err := CachePaths(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotIndexPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, index)
			assert.Equal(t, tt.wantBlob, blob)
		})
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv(CachePathEnv, "/tmp/shaders")
		dir, err := DefaultCacheDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/shaders", dir)
	})

	t.Run("platform default", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("home layout differs on windows")
		}
		t.Setenv(CachePathEnv, "")
		t.Setenv("HOME", "/home/gl")
		dir, err := DefaultCacheDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/gl", ".nv", "GLCache"), dir)
	})
}

func TestFindCaches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := testutil.BuildTestCache([]testutil.TestSection{{}, {}, {}})

	nested := filepath.Join(dir, "a1", "b2")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "x.toc"), c.Index, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "x.bin"), c.Blob, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toc"), []byte("CDVN"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))

	found, err := FindCaches(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, filepath.Join(nested, "x.toc"), found[0].IndexPath)
	assert.Equal(t, 3, found[0].Entries)
	assert.NoError(t, found[0].Err)

	assert.Equal(t, filepath.Join(dir, "broken.toc"), found[1].IndexPath)
	assert.ErrorIs(t, found[1].Err, ErrIndexSize)

	_, err = FindCaches(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestFindCachesSkipsUnreadableDir(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}

	dir := t.TempDir()
	c := testutil.BuildTestCache([]testutil.TestSection{{}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.toc"), c.Index, 0o600))

	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.MkdirAll(locked, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "hidden.toc"), c.Index, 0o600))
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o750) }) //nolint:errcheck // best-effort so TempDir can be removed

	found, err := FindCaches(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(dir, "a.toc"), found[0].IndexPath)
	assert.Equal(t, 1, found[0].Entries)
}
