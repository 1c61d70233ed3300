// Package blobstate keeps the model document as one object in a blob store.
package blobstate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mealtrack/internal/blob"
	"mealtrack/internal/persistence"
)

// Backend reads and replaces a single key. Blob stores are create-only, so a
// write deletes the previous object first; a failure between the two calls
// leaves no document behind.
type Backend struct {
	store       blob.Store
	key         string
	contentType string
}

// New returns a backend for key in store.
func New(store blob.Store, key, contentType string) (*Backend, error) {
	if store == nil {
		return nil, errors.New("blobstate: store required")
	}
	if key == "" {
		return nil, errors.New("blobstate: key required")
	}
	return &Backend{store: store, key: key, contentType: contentType}, nil
}

// Key returns the object key.
func (b *Backend) Key() string { return b.key }

// Read returns the document or persistence.ErrNotFound.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	_, rc, err := b.store.Get(ctx, b.key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// Write replaces the object.
func (b *Backend) Write(ctx context.Context, data []byte) error {
	if _, err := b.store.Delete(ctx, b.key); err != nil {
		return fmt.Errorf("delete %s: %w", b.key, err)
	}
	if _, err := b.store.Put(ctx, b.key, bytes.NewReader(data), blob.PutOptions{ContentType: b.contentType}); err != nil {
		return fmt.Errorf("put %s: %w", b.key, err)
	}
	return nil
}

// Close is a no-op; the blob store has no handle to release.
func (b *Backend) Close() error { return nil }
