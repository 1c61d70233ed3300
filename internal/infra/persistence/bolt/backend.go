// Package bolt keeps the model document in an embedded bbolt database.
package bolt

import (
	"context"
	"fmt"
	"mealtrack/internal/persistence"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketState = []byte("state")
	keyDocument = []byte("health_tracker")
)

// Backend stores the document under a single key.
type Backend struct {
	storage *bbolt.DB
}

// New opens (or creates) the database at path.
func New(path string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	}); err != nil {
		_ = instance.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Backend{storage: instance}, nil
}

// Read returns the stored document or persistence.ErrNotFound.
func (b *Backend) Read(context.Context) ([]byte, error) {
	var out []byte
	err := b.storage.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get(keyDocument)
		if data == nil {
			return persistence.ErrNotFound
		}
		// bbolt memory is only valid inside the transaction
		out = append([]byte(nil), data...)
		return nil
	})
	return out, err
}

// Write replaces the stored document.
func (b *Backend) Write(_ context.Context, data []byte) error {
	return b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketState).Put(keyDocument, data)
	})
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.storage.Close()
}
