package glcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/meigma/glcache/internal/logctx"
	"github.com/meigma/glcache/internal/toc"
)

const (
	// IndexExt is the extension of a cache index file.
	IndexExt = ".toc"

	// BlobExt is the extension of the blob file next to an index.
	BlobExt = ".bin"

	// CachePathEnv overrides where the driver stores its shader cache.
	CachePathEnv = "__GL_SHADER_DISK_CACHE_PATH"
)

// CachePaths returns the index and blob paths for a cache given the path of
// its index file.
func CachePaths(path string) (indexPath, blobPath string, err error) {
	if !strings.HasSuffix(path, IndexExt) {
		return "", "", fmt.Errorf("%w: %s", ErrNotIndexPath, path)
	}
	return path, strings.TrimSuffix(path, IndexExt) + BlobExt, nil
}

// DefaultCacheDir returns the directory the driver writes GL shader caches
// to: $__GL_SHADER_DISK_CACHE_PATH if set, otherwise
// %LOCALAPPDATA%\NVIDIA\GLCache on Windows and $HOME/.nv/GLCache elsewhere.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv(CachePathEnv); dir != "" {
		return dir, nil
	}
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "NVIDIA", "GLCache"), nil
		}
		return "", errors.New("glcache: LOCALAPPDATA is not set")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("glcache: %w", err)
	}
	return filepath.Join(home, ".nv", "GLCache"), nil
}

// CacheInfo describes one cache found by FindCaches.
type CacheInfo struct {
	IndexPath string
	Entries   int

	// Err is set when the index could not be read or is malformed.
	Err error
}

// FindCaches walks dir and returns every index file below it, sorted by
// path, with its entry count. Subdirectories that cannot be read are logged
// and skipped; only an unreadable dir fails the scan.
func FindCaches(ctx context.Context, dir string) ([]CacheInfo, error) {
	log := logctx.FromContext(ctx)
	var found []CacheInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), IndexExt) {
			return nil
		}
		info := CacheInfo{IndexPath: path}
		data, err := os.ReadFile(path) //nolint:gosec // walking a caller-supplied directory
		if err == nil {
			var idx *toc.Index
			if idx, err = toc.Load(data); err == nil {
				info.Entries = idx.Len()
			}
		}
		info.Err = err
		found = append(found, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	slices.SortFunc(found, func(a, b CacheInfo) int {
		return strings.Compare(a.IndexPath, b.IndexPath)
	})
	return found, nil
}
