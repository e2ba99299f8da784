// Package metadata loads and caches the static product description that
// parameterizes guardrail and persona prompts. The process must not serve
// traffic without it: Load failures at startup are fatal to the caller.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/Cyclone1070/fincoach/internal/domain"
)

// FileSystem abstracts file reads for testability.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// osFS reads from the real filesystem.
type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Store holds the process-wide metadata. It is written once by Load (or
// again by an explicit Reload) and read concurrently afterwards.
type Store struct {
	fs   FileSystem
	path string

	mu   sync.RWMutex
	meta domain.Metadata
}

// NewStore creates a Store reading from the given path.
func NewStore(path string) *Store {
	return &Store{fs: osFS{}, path: path}
}

// NewStoreWithFS creates a Store with a custom filesystem (for testing).
func NewStoreWithFS(fs FileSystem, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Load reads and caches the metadata file. Absence or a parse failure is
// an error; callers treat it as fatal at startup.
func (s *Store) Load() error {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read metadata %s: %w", s.path, err)
	}

	var meta domain.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("parse metadata %s: %w", s.path, err)
	}
	if meta.ProductName == "" {
		return fmt.Errorf("metadata %s: productName must not be empty", s.path)
	}

	s.mu.Lock()
	s.meta = meta
	s.mu.Unlock()
	return nil
}

// Reload re-reads the metadata file. The cached value is only replaced on
// success.
func (s *Store) Reload() error {
	return s.Load()
}

// Get returns a copy of the cached metadata. Safe for concurrent use.
func (s *Store) Get() domain.Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta := s.meta
	meta.Features = slices.Clone(meta.Features)
	return meta
}
