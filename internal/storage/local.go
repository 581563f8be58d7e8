package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects as files under a root directory and serves them from
// a public /storage route.
type Local struct {
	root    string
	baseURL string
}

var _ Storage = (*Local)(nil)

// NewLocal creates a filesystem-backed store rooted at dir.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{root: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

// Put writes the object, creating intermediate directories as needed.
func (l *Local) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	path := l.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write object file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close object file: %w", err)
	}
	return nil
}

// Delete removes the object file. A missing file is fine; an empty parent
// directory is pruned best-effort.
func (l *Local) Delete(ctx context.Context, key string) error {
	path := l.path(key)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove object file: %w", err)
	}
	removeIfEmpty(filepath.Dir(path), l.root)
	return nil
}

// URL returns the public URL for the key.
func (l *Local) URL(key string) string {
	return l.baseURL + "/storage/" + key
}

func removeIfEmpty(dir, root string) {
	if dir == root || !strings.HasPrefix(dir, root) {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	_ = os.Remove(dir)
}
