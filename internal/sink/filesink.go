// Package sink writes extracted artifacts.
package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrInvalidName is returned for artifact names that are not plain file names.
	ErrInvalidName = errors.New("sink: invalid artifact name")

	// ErrExists is returned by a sink that keeps existing artifacts when the
	// named artifact is already present. Nothing is written.
	ErrExists = errors.New("sink: artifact exists")
)

// DefaultFileMode is the permission applied to written artifacts.
const DefaultFileMode fs.FileMode = 0o644

// FileSink writes artifacts into a directory with atomic writes.
//
// Each artifact is written to a temporary file in the destination directory
// and renamed into place, so a partially written artifact is never visible
// under its final name. It is safe for concurrent use with distinct names.
type FileSink struct {
	destDir   string
	overwrite bool
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithOverwrite controls whether existing artifacts are replaced.
// By default they are.
func WithOverwrite(overwrite bool) FileSinkOption {
	return func(s *FileSink) {
		s.overwrite = overwrite
	}
}

// NewFileSink creates a FileSink that writes to destDir. The directory is
// created on first use.
func NewFileSink(destDir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{
		destDir:   destDir,
		overwrite: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put writes data as the artifact name. With overwriting disabled, an
// existing artifact is left untouched and ErrExists is returned.
func (s *FileSink) Put(name string, data []byte) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	destPath := filepath.Join(s.destDir, name)

	if !s.overwrite {
		if _, err := os.Lstat(destPath); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, name)
		}
	}

	if err := os.MkdirAll(s.destDir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", s.destDir, err)
	}

	tempFile, err := os.CreateTemp(s.destDir, ".glcache-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()    //nolint:errcheck // we're cleaning up
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, DefaultFileMode); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", destPath, err)
	}
	return nil
}
