// Copyright (c) 2026 Meridia Health. All rights reserved.

package localstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File persists each key as a file under a state directory. Writes go
// through a temp file plus rename so a crash never leaves a half-written
// value behind.
type File struct {
	dir string
	mu  sync.RWMutex
}

/*
NewFile creates a file-backed store rooted at dir, creating the
directory if needed.

Parameters:
  - dir: State directory, e.g. ~/.meridia

Returns:
  - *File: The store
  - error: Directory creation failures
*/
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("localstore_mkdir_failed: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) Get(key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("localstore_read_failed: %w", err)
	}
	return data, true, nil
}

func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return fmt.Errorf("localstore_write_failed: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("localstore_rename_failed: %w", err)
	}
	return nil
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("localstore_delete_failed: %w", err)
	}
	return nil
}

// path maps a key to a file name, replacing separators so a hostile key
// cannot escape the state directory.
func (f *File) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(f.dir, safe+".json")
}
