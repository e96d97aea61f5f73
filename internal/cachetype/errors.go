package cachetype

import "errors"

// Fatal errors. Any of these means the addressing data cannot be trusted and
// the run stops.
var (
	// ErrIndexSize is returned when the index file length is not 32+24n.
	ErrIndexSize = errors.New("glcache: unexpected index length")

	// ErrIndexMagic is returned when the index file does not start with CDVN.
	ErrIndexMagic = errors.New("glcache: unexpected index magic")

	// ErrOutOfRange is returned when an index entry addresses bytes past the
	// end of the blob file.
	ErrOutOfRange = errors.New("glcache: index entry out of range for blob")
)

// Per-entry errors. The entry is skipped and the run continues.
var (
	// ErrSectionTooSmall is returned when an entry declares fewer than 4 bytes.
	ErrSectionTooSmall = errors.New("glcache: section size below reserved overhead")

	// ErrSizeDisagreement is returned when the section header and the index
	// entry declare different section sizes.
	ErrSizeDisagreement = errors.New("glcache: section length disagrees with index entry")

	// ErrSectionMagic is returned when a section header has the wrong magic.
	ErrSectionMagic = errors.New("glcache: unexpected section magic")

	// ErrUnknownPacking is returned when no packing could be determined.
	ErrUnknownPacking = errors.New("glcache: unknown packing")

	// ErrDecompression is returned when a codec rejects a payload.
	ErrDecompression = errors.New("glcache: decompression failed")

	// ErrSizeMismatch is returned when a payload does not decode to its
	// declared uncompressed size.
	ErrSizeMismatch = errors.New("glcache: uncompressed size mismatch")

	// ErrSizeOverflow is returned when a declared size exceeds configured limits.
	ErrSizeOverflow = errors.New("glcache: size overflow")
)
