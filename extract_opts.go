package glcache

// Option configures an Extractor.
type Option func(*Extractor)

// WithWorkers sets the number of entries decoded concurrently.
// Values < 0 force serial processing. Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(x *Extractor) {
		x.workers = n
	}
}

// WithMaxObjectSize limits the declared uncompressed size of a section.
// Larger sections are skipped with ErrSizeOverflow. Set limit to 0 to
// disable the limit.
func WithMaxObjectSize(limit uint64) Option {
	return func(x *Extractor) {
		x.maxObjectSize = limit
	}
}

// WithMaxDecoderMemory limits the maximum memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(x *Extractor) {
		x.maxDecoderMemory = limit
	}
}

// WithProgress registers a callback for progress events.
func WithProgress(fn ProgressFunc) Option {
	return func(x *Extractor) {
		x.progress = fn
	}
}

// WithOverwrite controls whether ExtractFiles replaces existing artifacts.
// By default it does. Artifacts left in place are reported as Kept. The
// manifest is always rewritten.
func WithOverwrite(overwrite bool) Option {
	return func(x *Extractor) {
		x.overwrite = overwrite
	}
}

// WithManifest makes ExtractFiles write a manifest.json describing every
// entry and artifact.
func WithManifest(enabled bool) Option {
	return func(x *Extractor) {
		x.manifest = enabled
	}
}
