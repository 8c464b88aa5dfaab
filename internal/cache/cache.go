// Package cache persists intermediate pipeline stage results as JSON files
// keyed by deterministic paths. Two backends exist: a filesystem cache for
// local, resumable runs and a no-op cache for served, stateless contexts. The
// pipeline never branches on which one is active.
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Cache loads and saves serialized stage output under deterministic keys.
// Load reports a miss for absent or unreadable entries; it never fails hard.
// Save is all-or-nothing: a partially written entry must never be observable.
type Cache interface {
	Load(path string) ([]byte, bool)
	Save(path string, data []byte) error
}

// LoadJSON loads and decodes a cached entry. Corrupt entries degrade to a
// cache miss so the stage simply recomputes.
func LoadJSON[T any](c Cache, path string) (*T, bool) {
	data, ok := c.Load(path)
	if !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("cache: discarding corrupt entry %s: %v", path, err)
		return nil, false
	}
	return &v, true
}

// SaveJSON encodes and saves a stage result. A failed save is non-fatal for
// the pipeline; the caller decides whether to log it.
func SaveJSON(c Cache, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", path, err)
	}
	return c.Save(path, data)
}

// Filesystem reads and writes cache entries as files on local disk.
type Filesystem struct{}

// NewFilesystem creates a filesystem-backed cache.
func NewFilesystem() *Filesystem {
	return &Filesystem{}
}

// Load returns the entry's bytes, or a miss if the file does not exist or
// cannot be read.
func (f *Filesystem) Load(path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cache: failed to read %s: %v", path, err)
		}
		return nil, false
	}
	log.Printf("cache: hit %s", path)
	return data, true
}

// Save writes the entry atomically: the data lands in a temp file first and
// is renamed into place, so readers never see a partial entry.
func (f *Filesystem) Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing cache entry %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming cache entry %s: %w", path, err)
	}
	log.Printf("cache: saved %s", path)
	return nil
}

// Noop is a cache that always misses and stores nothing. It forces every
// stage to recompute, which is what the served, stateless context wants.
type Noop struct{}

// NewNoop creates a no-op cache.
func NewNoop() *Noop {
	return &Noop{}
}

// Load always reports a miss.
func (n *Noop) Load(string) ([]byte, bool) { return nil, false }

// Save discards the entry.
func (n *Noop) Save(string, []byte) error { return nil }
