// Package file stores the model document as a single file on the local
// filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"mealtrack/internal/persistence"
	"os"
	"path/filepath"
)

// Backend reads and rewrites one file. Writes truncate the file in place, so
// an interrupted write can leave it incomplete.
type Backend struct {
	path string
}

// New returns a backend for path, creating parent directories as needed.
func New(path string) (*Backend, error) {
	if path == "" {
		return nil, errors.New("file backend: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return &Backend{path: path}, nil
}

// Path returns the backing file path.
func (b *Backend) Path() string { return b.path }

// Read returns the file content or persistence.ErrNotFound when it does not exist.
func (b *Backend) Read(context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.ErrNotFound
	}
	return data, err
}

// Write truncates the file and writes data.
func (b *Backend) Write(_ context.Context, data []byte) error {
	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close is a no-op.
func (b *Backend) Close() error { return nil }
