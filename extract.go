package glcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/glcache/internal/cachetype"
	"github.com/meigma/glcache/internal/classify"
	"github.com/meigma/glcache/internal/fileops"
	"github.com/meigma/glcache/internal/logctx"
	"github.com/meigma/glcache/internal/sink"
	"github.com/meigma/glcache/internal/toc"
)

// ManifestName is the artifact name used by WithManifest.
const ManifestName = "manifest.json"

// Extractor unpacks shader cache index/blob pairs.
// It is safe for concurrent use.
type Extractor struct {
	unpacker         *fileops.Unpacker
	workers          int
	maxObjectSize    uint64
	maxDecoderMemory uint64
	progress         ProgressFunc
	overwrite        bool
	manifest         bool
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{
		maxObjectSize:    fileops.DefaultMaxObjectSize,
		maxDecoderMemory: fileops.DefaultMaxDecoderMemory,
		overwrite:        true,
	}
	for _, opt := range opts {
		opt(x)
	}
	x.unpacker = fileops.NewUnpacker(
		fileops.WithMaxObjectSize(x.maxObjectSize),
		fileops.WithMaxDecoderMemory(x.maxDecoderMemory),
	)
	return x
}

// plan is the located section for one entry, or the reason it is skipped.
type plan struct {
	entry   toc.Entry
	section toc.Section
	err     error
}

// Extract unpacks every entry of index, reading sections from blob and
// writing artifacts to dst. The logger in ctx (see WithLogger) receives one
// record per noteworthy event.
//
// Every entry is range checked against blob before any artifact is written.
// A malformed index or an entry addressing bytes past the end of blob stops
// the run with an error. Problems local to one entry are recorded in its
// EntryResult and the run continues. A sink error stops the run.
func (x *Extractor) Extract(ctx context.Context, index, blob []byte, dst Sink) (*Report, error) {
	log := logctx.FromContext(ctx)

	idx, err := toc.Load(index)
	if err != nil {
		return nil, err
	}
	n := idx.Len()
	log.Debug().Int("entries", n).Int("blob_size", len(blob)).Msg("index loaded")
	x.emit(ProgressEvent{Stage: StageValidating, Entry: -1, EntriesTotal: n})

	plans := make([]plan, n)
	for i, e := range idx.Entries() {
		s, err := toc.Locate(blob, e)
		switch {
		case errors.Is(err, cachetype.ErrSectionTooSmall):
			plans[i] = plan{entry: e, err: err}
		case err != nil:
			return nil, fmt.Errorf("entry %05d: %w", i, err)
		default:
			plans[i] = plan{entry: e, section: s}
		}
	}

	report := &Report{Entries: make([]EntryResult, n)}
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workerCount(n))
	for i := range plans {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := x.processEntry(logctx.WithInt(gctx, "entry", i), i, &plans[i], dst)
			report.Entries[i] = res
			if err != nil {
				return fmt.Errorf("entry %05d: %w", i, err)
			}
			x.emit(ProgressEvent{
				Stage:        StageUnpacking,
				Entry:        i,
				EntriesDone:  int(done.Add(1)),
				EntriesTotal: n,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.tally()
	x.emit(ProgressEvent{Stage: StageDone, Entry: -1, EntriesDone: n, EntriesTotal: n})
	log.Info().
		Int("entries", n).
		Int("unpacked", report.Unpacked).
		Int("skipped", report.Skipped).
		Int("unknown_packing", report.UnknownPacking).
		Msg("processed entries")
	return report, nil
}

// processEntry runs one entry through validation, classification and
// decoding. The returned error is fatal; per-entry failures are recorded in
// the result.
func (x *Extractor) processEntry(ctx context.Context, i int, p *plan, dst Sink) (EntryResult, error) {
	log := logctx.FromContext(ctx)
	res := EntryResult{
		Index:       i,
		Offset:      p.entry.BlobOffset(),
		SectionSize: p.entry.SectionSize(),
	}
	if p.err != nil {
		return res.skip(log, p.err), nil
	}

	s := p.section
	if err := s.Validate(p.entry); err != nil {
		return res.skip(log, err), nil
	}
	res.UnpackedSize = s.Header.UnpackedSize()

	if err := res.put(dst, headerName(i), s.Raw); err != nil {
		return res, err
	}

	res.Packing, res.Guessed = classify.Packing(s.Payload, res.UnpackedSize)
	ev := log.Debug()
	if res.Guessed {
		ev = log.Warn()
	}
	ev.Stringer("packing", res.Packing).
		Bool("guessed", res.Guessed).
		Int("packed_size", len(s.Payload)).
		Uint32("unpacked_size", res.UnpackedSize).
		Msg("classified packing")

	if err := res.put(dst, objectName(i, res.Packing.Ext()), s.Payload); err != nil {
		return res, err
	}
	if res.Packing == PackingUnknown {
		log.Warn().Hex("lead", s.Payload[:min(len(s.Payload), 8)]).Msg("unknown packing")
		return res, nil
	}

	obj, err := x.unpacker.Unpack(res.Packing, s.Payload, res.UnpackedSize)
	if err != nil {
		return res.skip(log, err), nil
	}

	var body []byte
	res.Object, body = classify.Object(obj)
	ev = log.Debug()
	if !res.Object.Known() {
		ev = log.Info()
	}
	ev.Stringer("object", res.Object).Int("size", len(body)).Msg("classified object")

	if err := res.put(dst, objectName(i, res.Object.Ext()), body); err != nil {
		return res, err
	}
	res.Unpacked = true
	return res, nil
}

func (x *Extractor) workerCount(entries int) int {
	switch {
	case x.workers < 0:
		return 1
	case x.workers > 0:
		return x.workers
	default:
		return max(1, min(runtime.GOMAXPROCS(0), entries))
	}
}

func (x *Extractor) emit(ev ProgressEvent) {
	if x.progress != nil {
		x.progress(ev)
	}
}

// ExtractFiles unpacks the cache whose index is at indexPath into outDir.
// The blob path is derived with CachePaths. outDir is created if needed.
func (x *Extractor) ExtractFiles(ctx context.Context, indexPath, outDir string) (*Report, error) {
	indexPath, blobPath, err := CachePaths(indexPath)
	if err != nil {
		return nil, err
	}
	index, err := os.ReadFile(indexPath) //nolint:gosec // caller-supplied input path
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	blob, err := os.ReadFile(blobPath) //nolint:gosec // derived from caller-supplied path
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	ctx = logctx.WithStr(ctx, "cache", indexPath)
	out := sink.NewFileSink(outDir, sink.WithOverwrite(x.overwrite))
	report, err := x.Extract(ctx, index, blob, out)
	if err != nil {
		return nil, err
	}
	if x.manifest {
		data, err := report.MarshalManifest()
		if err != nil {
			return nil, err
		}
		// The manifest describes this run, so it always replaces an old one.
		if err := sink.NewFileSink(outDir).Put(ManifestName, data); err != nil {
			return nil, fmt.Errorf("write manifest: %w", err)
		}
	}
	return report, nil
}

func headerName(i int) string {
	return fmt.Sprintf("header%05d.bin", i)
}

func objectName(i int, ext string) string {
	return fmt.Sprintf("object%05d.%s", i, ext)
}

// WithLogger returns a context carrying logger for Extract and ExtractFiles.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logctx.WithLogger(ctx, logger)
}
