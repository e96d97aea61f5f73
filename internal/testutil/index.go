package testutil

import (
	"encoding/binary"

	"github.com/meigma/glcache/internal/toc"
)

// TestSection holds data for building one cache entry.
type TestSection struct {
	Payload      []byte
	UnpackedSize uint32
}

// TestCache is a synthetic index and blob pair.
type TestCache struct {
	Index   []byte
	Blob    []byte
	Offsets []uint32
}

// BuildTestCache lays sections out back to back in a blob and builds a
// matching index. Every header carries the correct magic and sizes; tests
// corrupt individual fields with PatchEntry and PatchHeader.
func BuildTestCache(sections []TestSection) *TestCache {
	c := &TestCache{
		Index: make([]byte, toc.HeaderSize, toc.HeaderSize+len(sections)*toc.EntrySize),
	}
	copy(c.Index, toc.Magic)

	for _, s := range sections {
		offset := uint32(len(c.Blob)) //nolint:gosec // test fixtures stay small
		size := uint32(len(s.Payload)) + toc.SectionOverhead

		entry := make([]byte, toc.EntrySize)
		binary.LittleEndian.PutUint32(entry[16:], offset)
		binary.LittleEndian.PutUint32(entry[20:], size)
		c.Index = append(c.Index, entry...)

		header := make([]byte, toc.SectionHeaderSize)
		binary.LittleEndian.PutUint32(header[0:], toc.SectionMagic)
		binary.LittleEndian.PutUint32(header[28:], size)
		binary.LittleEndian.PutUint32(header[32:], s.UnpackedSize)
		c.Blob = append(c.Blob, header...)
		c.Blob = append(c.Blob, s.Payload...)
		c.Offsets = append(c.Offsets, offset)
	}
	return c
}

// PatchEntry overwrites word field of index entry i.
func (c *TestCache) PatchEntry(i, field int, v uint32) {
	binary.LittleEndian.PutUint32(c.Index[toc.HeaderSize+i*toc.EntrySize+4*field:], v)
}

// PatchHeader overwrites word field of the section header for entry i.
func (c *TestCache) PatchHeader(i, field int, v uint32) {
	binary.LittleEndian.PutUint32(c.Blob[int(c.Offsets[i])+4*field:], v)
}
