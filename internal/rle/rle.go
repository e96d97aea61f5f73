// Package rle decodes the run-length format used by older driver releases to
// pack shader cache sections.
//
// A stream is a sequence of records. Each record starts with a control byte:
// the low 6 bits hold the run length (1-63) and the top 2 bits select the
// operation.
//
//	00 copy:   the next L input bytes are copied verbatim
//	01 repeat: the next input byte is emitted L times
//	10 ones:   L bytes of 0xFF, no input consumed
//	11 zeros:  L bytes of 0x00, no input consumed
package rle

import "errors"

// Sentinel errors returned by Decode.
var (
	// ErrInvalidEncoding is returned for a record whose length field is zero.
	ErrInvalidEncoding = errors.New("rle: invalid encoding")

	// ErrTruncatedInput is returned when a record needs more input than remains.
	ErrTruncatedInput = errors.New("rle: truncated input")
)

const (
	opCopy = iota
	opRepeat
	opOnes
	opZeros
)

const (
	lengthMask = 0x3F
	opShift    = 6
)

// Decode decodes src into dst and returns the decoded length.
//
// len(dst) is the output capacity. Output past the capacity is not written
// but is still counted, so the returned length is the same for any dst.
// On error the contents of dst are unspecified.
func Decode(dst, src []byte) (int, error) {
	n := 0
	for r := 0; r < len(src); {
		ctrl := src[r]
		r++
		l := int(ctrl & lengthMask)
		if l == 0 {
			return 0, ErrInvalidEncoding
		}

		switch ctrl >> opShift {
		case opCopy:
			if len(src)-r < l {
				return 0, ErrTruncatedInput
			}
			if n < len(dst) {
				copy(dst[n:], src[r:r+l])
			}
			r += l
		case opRepeat:
			if r == len(src) {
				return 0, ErrTruncatedInput
			}
			fill(dst, n, l, src[r])
			r++
		case opOnes:
			fill(dst, n, l, 0xFF)
		case opZeros:
			fill(dst, n, l, 0x00)
		}
		n += l
	}
	return n, nil
}

// DecodedLen returns the length src decodes to without materializing it.
func DecodedLen(src []byte) (int, error) {
	return Decode(nil, src)
}

// fill writes l copies of b at dst[at:], clipped to len(dst).
func fill(dst []byte, at, l int, b byte) {
	if at >= len(dst) {
		return
	}
	end := min(at+l, len(dst))
	for i := at; i < end; i++ {
		dst[i] = b
	}
}
