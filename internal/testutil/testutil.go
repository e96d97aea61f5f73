// Package testutil provides fixtures shared by glcache tests.
package testutil

import (
	"maps"
	"slices"
	"sync"
)

// MemorySink collects artifacts in memory. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Put stores a copy of data under name.
func (s *MemorySink) Put(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
	return nil
}

// Get returns the artifact stored under name.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Names returns the stored artifact names in sorted order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.files))
}

// FailingSink rejects every write with Err.
type FailingSink struct {
	Err error
}

// Put implements the sink interface.
func (s FailingSink) Put(string, []byte) error {
	return s.Err
}
