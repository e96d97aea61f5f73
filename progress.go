package glcache

import "github.com/meigma/glcache/internal/cachetype"

// Re-export progress types from internal/cachetype.
type (
	// ProgressEvent represents a progress update during extraction.
	ProgressEvent = cachetype.ProgressEvent

	// ProgressStage identifies the current phase of an extraction.
	ProgressStage = cachetype.ProgressStage

	// ProgressFunc receives progress updates during extraction.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = cachetype.ProgressFunc
)

// Re-export progress stage constants.
const (
	// StageValidating indicates index entries are being range checked.
	StageValidating = cachetype.StageValidating

	// StageUnpacking indicates sections are being classified and decoded.
	StageUnpacking = cachetype.StageUnpacking

	// StageDone indicates every entry has been handled.
	StageDone = cachetype.StageDone
)
