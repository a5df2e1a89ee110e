package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Storage implementation persisted to a single JSON file.
// The whole map is rewritten on every mutation via an atomic
// temp-file-and-rename, so a crash never leaves a torn file behind.
type File struct {
	path  string
	items map[string]string
	mu    sync.Mutex
}

// NewFile opens (or creates) a file-backed store at the given path.
// A missing file starts empty; a garbled file is an error.
func NewFile(path string) (*File, error) {
	f := &File{path: path, items: make(map[string]string)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.items); err != nil {
			return nil, errors.Join(ErrUnmarshal, err)
		}
	}
	return f, nil
}

// Get retrieves a value by key.
func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores a value and flushes the file.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return f.flush()
}

// Delete removes a key and flushes the file.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[key]; !ok {
		return nil
	}
	delete(f.items, key)
	return f.flush()
}

// Clear removes all keys and flushes the file.
func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string]string)
	return f.flush()
}

// flush writes the current map atomically. Caller must hold the mutex.
func (f *File) flush() error {
	data, err := json.Marshal(f.items)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".hubclient-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: rename to %s: %w", f.path, err)
	}
	return nil
}

var _ Storage = (*File)(nil)
