// Package toc reads the shader cache index (.toc) file and locates the
// sections it addresses inside the blob (.bin) file.
//
// All accessors return views that alias the caller's buffers. The buffers
// must not be modified while views are in use.
package toc

import (
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/meigma/glcache/internal/cachetype"
)

const (
	// Magic is the tag at the start of every index file.
	Magic = "CDVN"

	// HeaderSize is the size of the index file header.
	HeaderSize = 0x20

	// EntrySize is the size of one index record.
	EntrySize = 0x18

	// SectionMagic is the first word of every section header in the blob.
	SectionMagic uint32 = 0x9846A19D

	// SectionHeaderSize is the size of a section header in the blob.
	SectionHeaderSize = 0x24

	// SectionOverhead is the part of a declared section size not stored as
	// payload. Its meaning is unknown.
	SectionOverhead = 4
)

const (
	entryFieldOffset = 4
	entryFieldSize   = 5

	headerFieldMagic    = 0
	headerFieldSize     = 7
	headerFieldUnpacked = 8
)

// Index is a validated view over an index file.
type Index struct {
	data []byte
	n    int
}

// Load validates an index file and returns a view over it.
//
// The file must start with Magic and hold a whole number of records after
// the header. A file holding only the header has zero entries.
func Load(data []byte) (*Index, error) {
	if len(data) < HeaderSize || (len(data)-HeaderSize)%EntrySize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", cachetype.ErrIndexSize, len(data))
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, cachetype.ErrIndexMagic
	}
	return &Index{
		data: data,
		n:    (len(data) - HeaderSize) / EntrySize,
	}, nil
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int {
	return idx.n
}

// Entry returns entry i. It panics if i is out of range.
func (idx *Index) Entry(i int) Entry {
	if i < 0 || i >= idx.n {
		panic(fmt.Sprintf("toc: entry %d out of range [0,%d)", i, idx.n))
	}
	var e Entry
	base := HeaderSize + i*EntrySize
	for j := range e.Fields {
		e.Fields[j] = binary.LittleEndian.Uint32(idx.data[base+4*j:])
	}
	return e
}

// Entries returns an iterator over entries and their positions.
func (idx *Index) Entries() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i := range idx.n {
			if !yield(i, idx.Entry(i)) {
				return
			}
		}
	}
}

// Entry is one index record. Only the blob offset and section size fields
// are understood.
type Entry struct {
	Fields [EntrySize / 4]uint32
}

// BlobOffset returns the offset of the section header in the blob.
func (e Entry) BlobOffset() uint32 {
	return e.Fields[entryFieldOffset]
}

// SectionSize returns the declared section size.
func (e Entry) SectionSize() uint32 {
	return e.Fields[entryFieldSize]
}

// PayloadSize returns the number of packed payload bytes stored after the
// section header.
func (e Entry) PayloadSize() (uint32, error) {
	if e.SectionSize() < SectionOverhead {
		return 0, fmt.Errorf("%w: %d", cachetype.ErrSectionTooSmall, e.SectionSize())
	}
	return e.SectionSize() - SectionOverhead, nil
}

// SectionHeader is the fixed header in front of every section in the blob.
type SectionHeader struct {
	Fields [SectionHeaderSize / 4]uint32
}

// Magic returns the header magic word.
func (h SectionHeader) Magic() uint32 {
	return h.Fields[headerFieldMagic]
}

// SectionSize returns the section size declared by the header.
func (h SectionHeader) SectionSize() uint32 {
	return h.Fields[headerFieldSize]
}

// UnpackedSize returns the declared size of the decoded object.
func (h SectionHeader) UnpackedSize() uint32 {
	return h.Fields[headerFieldUnpacked]
}

// Section is a view over one section in the blob.
type Section struct {
	Header SectionHeader

	// Raw holds the header bytes exactly as stored.
	Raw []byte

	// Payload holds the packed payload.
	Payload []byte
}

// Locate returns the section that e addresses in blob.
//
// An entry whose declared size is below the reserved overhead yields
// ErrSectionTooSmall. An entry addressing bytes past the end of blob yields
// ErrOutOfRange, which callers treat as fatal.
func Locate(blob []byte, e Entry) (Section, error) {
	payloadSize, err := e.PayloadSize()
	if err != nil {
		return Section{}, err
	}
	start := uint64(e.BlobOffset())
	payloadStart := start + SectionHeaderSize
	end := payloadStart + uint64(payloadSize)
	if start > uint64(len(blob)) || end > uint64(len(blob)) {
		return Section{}, fmt.Errorf("%w: [%#x,%#x) exceeds %#x",
			cachetype.ErrOutOfRange, start, end, len(blob))
	}

	s := Section{
		Raw:     blob[start:payloadStart:payloadStart],
		Payload: blob[payloadStart:end:end],
	}
	for j := range s.Header.Fields {
		s.Header.Fields[j] = binary.LittleEndian.Uint32(s.Raw[4*j:])
	}
	return s, nil
}

// Validate cross-checks the section header against the index entry that
// addressed it.
func (s Section) Validate(e Entry) error {
	if s.Header.SectionSize() != e.SectionSize() {
		return fmt.Errorf("%w: header %d, index %d",
			cachetype.ErrSizeDisagreement, s.Header.SectionSize(), e.SectionSize())
	}
	if s.Header.Magic() != SectionMagic {
		return fmt.Errorf("%w: %#08x", cachetype.ErrSectionMagic, s.Header.Magic())
	}
	return nil
}
