package nvuc

import (
	"context"
	"fmt"
	"os"

	"github.com/meigma/glcache/internal/logctx"
	"github.com/meigma/glcache/internal/sink"
)

// Sink receives extracted sections.
type Sink interface {
	Put(name string, data []byte) error
}

// DumpResult summarizes a Dump.
type DumpResult struct {
	// Sections lists every record of the section table.
	Sections []Section

	// Written lists the names of sections that were extracted.
	Written []string

	// Skipped maps the index of each skipped section to the reason.
	Skipped map[int]error
}

// Dump writes every section of the archive in data to dst, naming each with
// Section.Name.
//
// A malformed header or section table fails the whole dump. A misaligned or
// out-of-range section is logged, recorded in the result and skipped. A sink
// error stops the dump.
func Dump(ctx context.Context, data []byte, dst Sink) (*DumpResult, error) {
	log := logctx.FromContext(ctx)

	a, err := Parse(data)
	if err != nil {
		return nil, err
	}
	log.Info().Int("sections", a.Len()).Msg("parsed section table")

	res := &DumpResult{
		Sections: a.Sections(),
		Skipped:  make(map[int]error),
	}
	for _, s := range a.Sections() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		secLog := log.With().
			Int("section", s.Index).
			Str("type", fmt.Sprintf("0x%04X", s.Type)).
			Uint32("offset", s.Offset).
			Uint32("length", s.Length).
			Logger()

		body, err := a.Slice(s)
		if err != nil {
			secLog.Warn().Err(err).Msg("skipping section")
			res.Skipped[s.Index] = err
			continue
		}
		if err := dst.Put(s.Name(), body); err != nil {
			return nil, fmt.Errorf("write %s: %w", s.Name(), err)
		}
		secLog.Debug().Msg("extracted section")
		res.Written = append(res.Written, s.Name())
	}
	return res, nil
}

// DumpFile reads the archive at path and writes its sections into outDir,
// creating the directory if needed.
func DumpFile(ctx context.Context, path, outDir string) (*DumpResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-supplied input path
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return Dump(logctx.WithStr(ctx, "archive", path), data, sink.NewFileSink(outDir))
}
