// Package fileops decodes packed section payloads.
package fileops

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/glcache/internal/cachetype"
	"github.com/meigma/glcache/internal/rle"
)

const (
	// DefaultMaxObjectSize is the default limit on a declared object size (256MB).
	DefaultMaxObjectSize = 256 << 20

	// DefaultMaxDecoderMemory is the default maximum zstd decoder memory (256MB).
	DefaultMaxDecoderMemory = 256 << 20
)

// Unpacker decodes section payloads into objects.
// It is safe for concurrent use.
type Unpacker struct {
	maxObjectSize    uint64
	maxDecoderMemory uint64
	pool             *DecompressPool
}

// Option configures an Unpacker.
type Option func(*Unpacker)

// WithMaxObjectSize sets the largest declared object size that will be
// decoded. Set to 0 to disable the limit.
func WithMaxObjectSize(limit uint64) Option {
	return func(u *Unpacker) {
		u.maxObjectSize = limit
	}
}

// WithMaxDecoderMemory sets the maximum zstd decoder memory.
// Set to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(u *Unpacker) {
		u.maxDecoderMemory = limit
	}
}

// NewUnpacker creates an Unpacker.
func NewUnpacker(opts ...Option) *Unpacker {
	u := &Unpacker{
		maxObjectSize:    DefaultMaxObjectSize,
		maxDecoderMemory: DefaultMaxDecoderMemory,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.pool = NewDecompressPool(u.maxDecoderMemory)
	return u
}

// Unpack decodes payload according to packing and checks that the result is
// exactly size bytes long.
//
// Raw payloads are returned as is, without a size check. For other packings
// the returned slice is freshly allocated; on error nothing is retained.
func (u *Unpacker) Unpack(packing cachetype.Packing, payload []byte, size uint32) ([]byte, error) {
	switch packing {
	case cachetype.PackingRaw:
		return payload, nil
	case cachetype.PackingRLE:
		if err := u.checkSize(size); err != nil {
			return nil, err
		}
		return unpackRLE(payload, size)
	case cachetype.PackingZstd:
		if err := u.checkSize(size); err != nil {
			return nil, err
		}
		return u.unpackZstd(payload, size)
	default:
		return nil, cachetype.ErrUnknownPacking
	}
}

func (u *Unpacker) checkSize(size uint32) error {
	if u.maxObjectSize != 0 && uint64(size) > u.maxObjectSize {
		return fmt.Errorf("%w: object of %d bytes exceeds limit %d",
			cachetype.ErrSizeOverflow, size, u.maxObjectSize)
	}
	return nil
}

func unpackRLE(payload []byte, size uint32) ([]byte, error) {
	dst := make([]byte, size)
	n, err := rle.Decode(dst, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cachetype.ErrDecompression, err)
	}
	if uint64(n) != uint64(size) {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", cachetype.ErrSizeMismatch, n, size)
	}
	return dst, nil
}

func (u *Unpacker) unpackZstd(payload []byte, size uint32) ([]byte, error) {
	dec, release, err := u.pool.Get(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cachetype.ErrDecompression, err)
	}
	defer release()

	dst := make([]byte, size)
	n, err := io.ReadFull(dec, dst)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", cachetype.ErrSizeMismatch, n, size)
		}
		return nil, fmt.Errorf("%w: %v", cachetype.ErrDecompression, err)
	}
	if err := ensureNoExtra(dec); err != nil {
		return nil, err
	}
	return dst, nil
}

// ensureNoExtra returns an error if r yields any more data.
func ensureNoExtra(r io.Reader) error {
	var scratch [1]byte
	n, err := r.Read(scratch[:])
	if n > 0 {
		return fmt.Errorf("%w: more than declared size", cachetype.ErrSizeMismatch)
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", cachetype.ErrDecompression, err)
}
