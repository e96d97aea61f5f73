package testutil

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// CompressZstd returns data as a single zstd frame.
func CompressZstd(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		tb.Fatalf("failed to create encoder: %v", err)
	}
	if _, err := enc.Write(data); err != nil {
		tb.Fatalf("failed to write: %v", err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("failed to close encoder: %v", err)
	}
	return buf.Bytes()
}

// EncodeRLE packs data in the driver run-length format. Runs of 0x00 and
// 0xFF use fill records, other runs of three or more use repeat records, and
// everything else is copied. Payloads starting with an NVuc tag open with a
// copy-5 record, as driver-written streams do.
func EncodeRLE(data []byte) []byte {
	const maxRun = 63
	var out, lit []byte
	flush := func() {
		for len(lit) > 0 {
			n := min(len(lit), maxRun)
			out = append(out, byte(n))
			out = append(out, lit[:n]...)
			lit = lit[n:]
		}
	}

	i := 0
	if bytes.HasPrefix(data, []byte("NVuc")) && len(data) >= 5 {
		out = append(out, 0x05)
		out = append(out, data[:5]...)
		i = 5
	}
	for i < len(data) {
		b := data[i]
		run := 1
		for i+run < len(data) && data[i+run] == b && run < maxRun {
			run++
		}
		switch {
		case b == 0x00 && run >= 2:
			flush()
			out = append(out, 0xC0|byte(run))
		case b == 0xFF && run >= 2:
			flush()
			out = append(out, 0x80|byte(run))
		case run >= 3:
			flush()
			out = append(out, 0x40|byte(run), b)
		default:
			lit = append(lit, data[i:i+run]...)
		}
		i += run
	}
	flush()
	return out
}
