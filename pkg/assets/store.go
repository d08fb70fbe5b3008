// Package assets holds the in-memory state a pipeline run mutates: the
// asset store keyed by relative path, and the resolution index of generated
// bitmaps keyed by DPI. Both are owned exclusively by the pipeline for the
// duration of a run and are carried, mutated, from one format iteration to
// the next.
package assets

import (
	"sort"
	"strings"
)

// NormalizePath converts backslashes to forward slashes and trims any
// trailing separator. Store keys are always normalized.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimRight(path, "/")
}

// Store maps normalized relative paths to raw file content. Text content
// (SVG, JSON) is kept as UTF-8 bytes like everything else.
type Store struct {
	files map[string][]byte
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{files: make(map[string][]byte)}
}

// Put inserts or replaces the entry at path.
func (s *Store) Put(path string, data []byte) {
	s.files[NormalizePath(path)] = data
}

// Get returns the content at path.
func (s *Store) Get(path string) ([]byte, bool) {
	data, ok := s.files[NormalizePath(path)]
	return data, ok
}

// Has reports whether path is present.
func (s *Store) Has(path string) bool {
	_, ok := s.files[NormalizePath(path)]
	return ok
}

// Delete removes the entry at path, if present.
func (s *Store) Delete(path string) {
	delete(s.files, NormalizePath(path))
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.files)
}

// Paths returns every key in sorted order. Iterating in path order keeps
// the whole pipeline deterministic, archives included.
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MatchesPrefix reports whether path equals prefix or sits underneath it as
// a directory. Both sides are assumed normalized.
func MatchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
