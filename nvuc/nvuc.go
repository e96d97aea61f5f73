// Package nvuc splits NVIDIA shader microcode archives into their sections.
//
// An archive starts with a 32-byte header: the tag "NVuc" and, in the low 16
// bits of the word at byte 8, the number of sections. A table of 32-byte
// section records follows, each giving a type code, a length and an offset
// into the archive. Offsets are 4-byte aligned.
package nvuc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic is the tag at the start of every archive.
	Magic = "NVuc"

	// HeaderSize is the size of the archive header.
	HeaderSize = 0x20

	// EntrySize is the size of one section table record.
	EntrySize = 0x20

	countOffset = 8
	countMask   = 0xFFFF
	alignMask   = 0x3
)

// Fatal errors returned by Parse.
var (
	// ErrTooShort is returned when data cannot hold an archive header.
	ErrTooShort = errors.New("nvuc: object too short")

	// ErrMagicMismatch is returned when data does not start with Magic.
	ErrMagicMismatch = errors.New("nvuc: unexpected magic")

	// ErrTruncatedTable is returned when the section table runs past the end
	// of the archive.
	ErrTruncatedTable = errors.New("nvuc: truncated section table")
)

// Per-section errors returned by Slice.
var (
	// ErrMisaligned is returned for a section whose offset is not 4-byte aligned.
	ErrMisaligned = errors.New("nvuc: unexpected section alignment")

	// ErrOutOfRange is returned for a section extending past the archive.
	ErrOutOfRange = errors.New("nvuc: section out of range")
)

// Section is one record of the section table.
type Section struct {
	Index  int
	Type   uint32
	Length uint32
	Offset uint32
}

// Name returns the artifact name for the section.
func (s Section) Name() string {
	return fmt.Sprintf("section%d_%04X.bin", s.Index, s.Type)
}

// Archive is a parsed view over a microcode archive.
type Archive struct {
	data     []byte
	sections []Section
}

// Parse validates the archive header and section table.
//
// Only whole 32-bit words count towards the archive size; trailing bytes are
// ignored. The returned archive aliases data.
func Parse(data []byte) (*Archive, error) {
	data = data[:len(data)&^alignMask]
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(data))
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, ErrMagicMismatch
	}

	n := int(binary.LittleEndian.Uint32(data[countOffset:]) & countMask)
	if len(data) < HeaderSize+n*EntrySize {
		return nil, fmt.Errorf("%w: %d sections need %d bytes, have %d",
			ErrTruncatedTable, n, HeaderSize+n*EntrySize, len(data))
	}

	a := &Archive{data: data, sections: make([]Section, n)}
	for i := range a.sections {
		rec := data[HeaderSize+i*EntrySize:]
		a.sections[i] = Section{
			Index:  i,
			Type:   binary.LittleEndian.Uint32(rec[0:]),
			Length: binary.LittleEndian.Uint32(rec[4:]),
			Offset: binary.LittleEndian.Uint32(rec[8:]),
		}
	}
	return a, nil
}

// Len returns the number of sections in the table.
func (a *Archive) Len() int {
	return len(a.sections)
}

// Sections returns the section table.
func (a *Archive) Sections() []Section {
	return a.sections
}

// Size returns the archive size used for range checks.
func (a *Archive) Size() int {
	return len(a.data)
}

// Slice returns the bytes of s. The result aliases the archive data.
func (a *Archive) Slice(s Section) ([]byte, error) {
	if s.Offset&alignMask != 0 {
		return nil, fmt.Errorf("%w: offset %#x", ErrMisaligned, s.Offset)
	}
	start := uint64(s.Offset)
	end := start + uint64(s.Length)
	if start > uint64(len(a.data)) || end > uint64(len(a.data)) {
		return nil, fmt.Errorf("%w: [%#x,%#x) exceeds %#x", ErrOutOfRange, start, end, len(a.data))
	}
	return a.data[start:end:end], nil
}
