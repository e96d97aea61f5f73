package cachetype

// ProgressEvent reports progress while unpacking a cache.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Entry is the index entry just finished, or -1 outside StageUnpacking.
	Entry int

	// EntriesDone is the number of entries completed.
	EntriesDone int

	// EntriesTotal is the number of entries in the index.
	EntriesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageValidating indicates index entries are being range checked.
	StageValidating ProgressStage = iota

	// StageUnpacking indicates sections are being classified and decoded.
	StageUnpacking

	// StageDone indicates every entry has been handled.
	StageDone
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageValidating:
		return "validating"
	case StageUnpacking:
		return "unpacking"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
