package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one file per key under a directory. Writes go to a temp file
// that is synced and renamed over the target, so a reader sees the old value or
// the new one, never a partial write.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Get reads the file for key
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return b, true, nil
}

// Set atomically replaces the file for key
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A unique temp name per write keeps other processes on the same directory
	// from truncating or renaming this write's file
	f, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpFile := f.Name()

	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("setting temp file mode: %w", err)
	}

	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("writing temp file: %w", err)
	}

	// Sync before rename so a crash cannot leave an empty target
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("syncing temp file: %w", err)
	}

	// Close explicitly before renaming (required on Windows)
	if err := f.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

// path maps a key to its file, rejecting keys that would escape the directory
func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
