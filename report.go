package glcache

import (
	_ "crypto/sha256" // registers digest.Canonical
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"
)

// Report summarizes an extraction.
type Report struct {
	// Entries holds one result per index entry, in index order.
	Entries []EntryResult `json:"entries"`

	// Unpacked counts entries whose object was decoded and written.
	Unpacked int `json:"unpacked"`

	// Skipped counts entries abandoned because of a per-entry error.
	Skipped int `json:"skipped"`

	// UnknownPacking counts entries whose payload was written raw because
	// its packing could not be determined.
	UnknownPacking int `json:"unknown_packing"`

	// Kept counts artifacts left untouched because they already existed.
	Kept int `json:"kept,omitempty"`
}

// EntryResult describes what happened to one index entry.
type EntryResult struct {
	Index        int    `json:"index"`
	Offset       uint32 `json:"offset"`
	SectionSize  uint32 `json:"section_size"`
	UnpackedSize uint32 `json:"unpacked_size"`

	// Packing is the detected packing. Guessed reports that it came from a
	// size heuristic rather than a signature.
	Packing Packing `json:"packing"`
	Guessed bool    `json:"guessed,omitempty"`

	// Object is the detected object kind. It is only meaningful when
	// Unpacked is true.
	Object   Object `json:"object"`
	Unpacked bool   `json:"unpacked"`

	// Err is the reason the entry was skipped, if it was.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`

	// Artifacts lists what was emitted for this entry, in write order.
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Artifact is one file emitted by the extractor. Size and Digest describe
// the written data; a Kept artifact already existed in the sink and was not
// replaced, so its contents are unknown.
type Artifact struct {
	Name   string        `json:"name"`
	Size   int           `json:"size"`
	Digest digest.Digest `json:"digest,omitempty"`
	Kept   bool          `json:"kept,omitempty"`
}

// Skipped reports whether the entry was abandoned because of an error.
func (r *EntryResult) Skipped() bool {
	return r.Err != nil
}

func (r *EntryResult) skip(log zerolog.Logger, err error) EntryResult {
	r.Err = err
	r.Error = err.Error()
	log.Warn().Err(err).Msg("skipping entry")
	return *r
}

func (r *EntryResult) put(dst Sink, name string, data []byte) error {
	err := dst.Put(name, data)
	if errors.Is(err, ErrExists) {
		r.Artifacts = append(r.Artifacts, Artifact{Name: name, Kept: true})
		return nil
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	r.Artifacts = append(r.Artifacts, Artifact{
		Name:   name,
		Size:   len(data),
		Digest: digest.FromBytes(data),
	})
	return nil
}

func (rep *Report) tally() {
	rep.Unpacked, rep.Skipped, rep.UnknownPacking, rep.Kept = 0, 0, 0, 0
	for i := range rep.Entries {
		e := &rep.Entries[i]
		for _, a := range e.Artifacts {
			if a.Kept {
				rep.Kept++
			}
		}
		switch {
		case e.Skipped():
			rep.Skipped++
		case e.Unpacked:
			rep.Unpacked++
		case e.Packing == PackingUnknown && len(e.Artifacts) > 0:
			rep.UnknownPacking++
		}
	}
}

// MarshalManifest encodes the report as indented JSON.
func (rep *Report) MarshalManifest() ([]byte, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteManifest writes the report to w as indented JSON.
func (rep *Report) WriteManifest(w io.Writer) error {
	data, err := rep.MarshalManifest()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
