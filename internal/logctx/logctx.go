// Package logctx carries a zerolog logger through context.Context.
//
// Callers attach a logger once at the top of a run and enrich it per unit
// of work:
//
//	ctx = logctx.WithLogger(ctx, logger)
//	entryCtx := logctx.WithInt(ctx, "entry", i)
//	log := logctx.FromContext(entryCtx)
//	log.Warn().Err(err).Msg("skipping entry")
//
// Without an attached logger, FromContext returns a disabled logger so that
// library callers see no output unless they ask for it.
package logctx

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts the logger from the context. If the context is nil
// or carries no logger, it returns a disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return zerolog.Nop()
	}
	if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithStr returns a new context whose logger has the string field added.
func WithStr(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, logger)
}

// WithInt returns a new context whose logger has the int field added.
func WithInt(ctx context.Context, key string, value int) context.Context {
	logger := FromContext(ctx).With().Int(key, value).Logger()
	return WithLogger(ctx, logger)
}

// NewConfiguredLogger creates a logger writing to w.
// If debug is true, the level is Debug, otherwise Info.
// If human is true, records are rendered by a console writer instead of JSON.
func NewConfiguredLogger(w io.Writer, debug, human bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	var output zerolog.LevelWriter
	if human {
		output = zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}}
	} else {
		output = zerolog.LevelWriterAdapter{Writer: w}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
