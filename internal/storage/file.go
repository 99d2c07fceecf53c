package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps every document in <dir>/<name>.json
type FileBackend struct {
	dir    string
	atomic bool
}

// NewFileBackend creates a file backend. With atomic set, writes go to a
// temp file that is synced and renamed over the document. Otherwise the
// document is overwritten in a single call and a crash mid-write can leave
// it truncated.
func NewFileBackend(dir string, atomic bool) *FileBackend {
	return &FileBackend{
		dir:    dir,
		atomic: atomic,
	}
}

func (b *FileBackend) Dir() string {
	return b.dir
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

// EnsureDir creates the storage directory if it is missing
func (b *FileBackend) EnsureDir() error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	return nil
}

func (b *FileBackend) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(b.path(name))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

func (b *FileBackend) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return data, nil
}

func (b *FileBackend) Write(_ context.Context, name string, data []byte) error {
	if !b.atomic {
		if err := os.WriteFile(b.path(name), data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}

		return nil
	}

	return b.writeAtomic(name, data)
}

// writeAtomic writes to a temp file in the same directory, syncs it and
// renames it over the document.
func (b *FileBackend) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.path(name)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (b *FileBackend) Close() error {
	return nil
}
