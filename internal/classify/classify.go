// Package classify recognizes section packings and decoded object types from
// their leading bytes.
package classify

import (
	"bytes"
	"encoding/binary"

	"github.com/meigma/glcache/internal/cachetype"
	"github.com/meigma/glcache/internal/rle"
)

// signature is one row of a classification table. Tables are checked in
// order and the first matching prefix wins.
type signature[K any] struct {
	prefix []byte
	kind   K
	strip  int
}

// packings recognizes payloads by their first bytes. The RLE row is a copy-5
// record carrying the NVuc tag, which is how every RLE-packed microcode
// archive begins.
var packings = []signature[cachetype.Packing]{
	{prefix: []byte{0x05, 'N', 'V', 'u', 'c'}, kind: cachetype.PackingRLE},
	{prefix: []byte{0x28, 0xB5, 0x2F, 0xFD}, kind: cachetype.PackingZstd},
	{prefix: []byte{0x0A, 0x00, 0x00, 0x00}, kind: cachetype.PackingRaw},
	{prefix: []byte{0x0B, 0x00, 0x00, 0x00}, kind: cachetype.PackingRaw},
}

var objects = []signature[cachetype.Object]{
	{prefix: []byte("NVuc"), kind: cachetype.ObjectNVuc},
	{prefix: []byte("NVVMNVuc"), kind: cachetype.ObjectNVVMNVuc, strip: 4},
	{prefix: []byte("NVDANVVMNVuc"), kind: cachetype.ObjectNVDANVVMNVuc, strip: 8},
	{prefix: []byte{0x0A, 0x00, 0x00, 0x00}, kind: cachetype.ObjectARB},
	{prefix: []byte{0x0B, 0x00, 0x00, 0x00}, kind: cachetype.ObjectARB},
	{prefix: []byte{0x50, 0x02, 0x00, 0x00, 0x7F, 'E', 'L', 'F'}, kind: cachetype.ObjectELF, strip: 4},
}

// arbVersion is the second header word of an ARB archive whose first word
// holds its own length.
const arbVersion = 0x0A

func match[K any](table []signature[K], data []byte) (signature[K], bool) {
	for _, sig := range table {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig, true
		}
	}
	return signature[K]{}, false
}

// Packing determines how payload is stored. unpackedSize is the size the
// section header declares for the decoded object.
//
// When no signature matches, Packing falls back to size checks: a payload as
// long as the declared size is taken as raw, and one whose RLE decoding has
// the declared size is taken as RLE. guessed reports that a fallback decided.
func Packing(payload []byte, unpackedSize uint32) (kind cachetype.Packing, guessed bool) {
	if sig, ok := match(packings, payload); ok {
		return sig.kind, false
	}
	if len(payload) == 1 && payload[0] == 0 {
		return cachetype.PackingRaw, false
	}
	if uint64(len(payload)) == uint64(unpackedSize) {
		return cachetype.PackingRaw, true
	}
	if n, err := rle.DecodedLen(payload); err == nil && uint64(n) == uint64(unpackedSize) {
		return cachetype.PackingRLE, true
	}
	return cachetype.PackingUnknown, false
}

// Object determines the type of a decoded payload and returns the object body
// with any wrapper tag removed. The body aliases data.
func Object(data []byte) (cachetype.Object, []byte) {
	if sig, ok := match(objects, data); ok {
		return sig.kind, data[sig.strip:]
	}
	if len(data) >= 8 &&
		uint64(binary.LittleEndian.Uint32(data[0:4])) == uint64(len(data)-4) &&
		binary.LittleEndian.Uint32(data[4:8]) == arbVersion {
		return cachetype.ObjectARB, data
	}
	if isZero(data) {
		return cachetype.ObjectEmpty, data
	}
	return cachetype.ObjectUnknown, data
}

func isZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
