package glcache

import (
	"errors"

	"github.com/meigma/glcache/internal/cachetype"
	"github.com/meigma/glcache/internal/rle"
	"github.com/meigma/glcache/internal/sink"
)

// Fatal errors re-exported from internal/cachetype. Extract returns these and
// stops.
var (
	// ErrIndexSize is returned when the index file length is not 32+24n.
	ErrIndexSize = cachetype.ErrIndexSize

	// ErrIndexMagic is returned when the index file has the wrong magic.
	ErrIndexMagic = cachetype.ErrIndexMagic

	// ErrOutOfRange is returned when an index entry addresses bytes past the
	// end of the blob file.
	ErrOutOfRange = cachetype.ErrOutOfRange
)

// Per-entry errors re-exported from internal/cachetype. These are recorded in
// EntryResult.Err and the run continues.
var (
	ErrSectionTooSmall  = cachetype.ErrSectionTooSmall
	ErrSizeDisagreement = cachetype.ErrSizeDisagreement
	ErrSectionMagic     = cachetype.ErrSectionMagic
	ErrDecompression    = cachetype.ErrDecompression
	ErrSizeMismatch     = cachetype.ErrSizeMismatch
	ErrSizeOverflow     = cachetype.ErrSizeOverflow
)

// RLE decoder errors, wrapped by ErrDecompression.
var (
	ErrInvalidEncoding = rle.ErrInvalidEncoding
	ErrTruncatedInput  = rle.ErrTruncatedInput
)

// ErrNotIndexPath is returned when a cache path does not name a .toc file.
var ErrNotIndexPath = errors.New("glcache: expected a .toc file")

// ErrExists is returned by a Sink that keeps existing artifacts. Extract
// records such artifacts as Kept instead of failing.
var ErrExists = sink.ErrExists
