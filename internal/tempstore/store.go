// Package tempstore allocates the ephemeral trace store of a live session and
// guarantees its removal.
//
// The tracked path is process-wide so the signal path can find it without
// being handed a reference. It is set once by Create and cleared once by a
// successful Cleanup; every later Cleanup is a no-op.
package tempstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Prefix is the name prefix of every trace store directory.
const Prefix = "livetrace-"

var (
	mu      sync.Mutex
	tracked string
)

// Create reserves a unique trace store path under root and starts tracking
// it. The placeholder file used to reserve the name is removed; the record
// phase creates the directory itself.
func Create(root string) (string, error) {
	f, err := os.CreateTemp(root, Prefix)
	if err != nil {
		return "", fmt.Errorf("cannot create temp name: %w", err)
	}

	name := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp placeholder %s: %w", name, err)
	}
	if err := os.Remove(name); err != nil {
		return "", fmt.Errorf("removing temp placeholder %s: %w", name, err)
	}

	path, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("resolving temp path %s: %w", name, err)
	}

	mu.Lock()
	tracked = path
	mu.Unlock()

	return path, nil
}

// Tracked returns the path currently tracked, or "" when none is.
func Tracked() string {
	mu.Lock()
	defer mu.Unlock()
	return tracked
}

// Cleanup removes the tracked trace store and everything in it.
// It returns nil when nothing is tracked or the directory is already gone.
func Cleanup() error {
	mu.Lock()
	defer mu.Unlock()

	if tracked == "" {
		return nil
	}

	entries, err := os.ReadDir(tracked)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			tracked = ""
			return nil
		}
		return fmt.Errorf("cannot open temp dir %s: %w", tracked, err)
	}

	// ReadDir never reports "." and "..".
	for _, ent := range entries {
		path := filepath.Join(tracked, ent.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("unlink failed: %s: %w", path, err)
		}
	}

	if err := os.Remove(tracked); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("rmdir failed: %s: %w", tracked, err)
	}

	tracked = ""
	return nil
}

// Store is a scoped handle on the tracked trace store.
type Store struct {
	path string
}

// Open creates a trace store under root. Close it with a defer; closing is
// idempotent and also safe after a signal-driven Cleanup.
func Open(root string) (*Store, error) {
	path, err := Create(root)
	if err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

// Path returns the trace store directory.
func (s *Store) Path() string {
	return s.path
}

// Close removes the trace store.
func (s *Store) Close() error {
	return Cleanup()
}
