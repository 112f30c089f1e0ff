package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is an AssetStore backed by a local directory
type Dir struct {
	root string
}

// NewDir returns a store rooted at root
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory the store reads from
func (d *Dir) Root() string {
	return d.root
}

// resolve maps a key to a path below root, rejecting traversal
func (d *Dir) resolve(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimPrefix(key, "/"))
	full := filepath.Join(d.root, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, filepath.Clean(d.root)) {
		return "", fmt.Errorf("invalid path: path traversal detected in %q", key)
	}
	return full, nil
}

// Exists reports whether a regular file exists at key
func (d *Dir) Exists(_ context.Context, key string) (bool, error) {
	full, err := d.resolve(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// Open opens the file at key
func (d *Dir) Open(_ context.Context, key string) (io.ReadCloser, error) {
	full, err := d.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotExist)
	}
	return f, err
}

// List returns the immediate children of prefix in natural order
func (d *Dir) List(_ context.Context, prefix string) ([]Entry, error) {
	full, err := d.resolve(prefix)
	if err != nil {
		return nil, err
	}
	dirents, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", prefix, ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		entries = append(entries, Entry{Name: de.Name(), Dir: de.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return naturalLess(entries[i].Name, entries[j].Name)
	})
	return entries, nil
}

// Write replaces the file at key
func (d *Dir) Write(_ context.Context, key string, data []byte) error {
	full, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(full, data, 0644)
}
