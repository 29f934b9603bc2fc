package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives the verified, uncompressed bytes of each extracted
// file. Implementations decide where the bytes go; the engine only
// guarantees what they contain.
type Sink interface {
	Put(path string, data []byte) error
}

// DirSink writes extracted files under a root directory, recreating
// the catalog hierarchy. With Flatten set, only the base name is kept.
type DirSink struct {
	Root    string
	Flatten bool
}

// NewDirSink returns a sink rooted at dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Root: dir}
}

func (s *DirSink) Put(path string, data []byte) error {
	if s.Flatten {
		path = filepath.Base(path)
	}
	dest := filepath.Join(s.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// MemSink collects extracted files in memory, keyed by path.
type MemSink struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemSink returns an empty in-memory sink.
func NewMemSink() *MemSink {
	return &MemSink{files: make(map[string][]byte)}
}

func (s *MemSink) Put(path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.files[path] = buf
	return nil
}

// Get returns the bytes stored for path.
func (s *MemSink) Get(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	return data, ok
}

// Len returns the number of files stored.
func (s *MemSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
