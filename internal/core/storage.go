package core

import (
	"context"
	"fmt"
	"mealtrack/internal/blob"
	"mealtrack/internal/config"
	"mealtrack/internal/infra/persistence/blobstate"
	"mealtrack/internal/infra/persistence/bolt"
	"mealtrack/internal/infra/persistence/codec"
	"mealtrack/internal/infra/persistence/file"
	"mealtrack/internal/infra/persistence/memory"
	"mealtrack/internal/infra/persistence/postgres"
	"mealtrack/internal/infra/persistence/sqlite"
	"mealtrack/internal/persistence"

	"github.com/rs/zerolog"
)

// StorageDriver identifies a concrete snapshot backend.
type StorageDriver string

const (
	StorageFile     StorageDriver = "file"     // flat data file (default)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBolt     StorageDriver = "bolt"     // bbolt key/value file
	StorageBlob     StorageDriver = "blob"     // object in a blob store (fs, s3, memory)
	StorageMemory   StorageDriver = "memory"   // nothing persisted (tests / ephemeral)
)

// Repository is an opened store together with the persister feeding it.
type Repository struct {
	Driver    StorageDriver
	Store     *memory.Store
	Persister *persistence.Persister
}

// Close releases the backend.
func (r *Repository) Close() error {
	if r.Persister == nil {
		return nil
	}
	return r.Persister.Close()
}

type repoOptions struct {
	logger    zerolog.Logger
	blobStore blob.Store
	storeOpts []memory.Option
}

// RepositoryOption configures OpenRepository.
type RepositoryOption func(*repoOptions)

// WithRepositoryLogger sets the logger handed to the store and the persister.
func WithRepositoryLogger(logger zerolog.Logger) RepositoryOption {
	return func(o *repoOptions) { o.logger = logger }
}

// WithBlobStore supplies the blob store used by the blob driver instead of
// opening one from configuration.
func WithBlobStore(store blob.Store) RepositoryOption {
	return func(o *repoOptions) { o.blobStore = store }
}

// WithStoreOptions appends options applied to the memory store.
func WithStoreOptions(opts ...memory.Option) RepositoryOption {
	return func(o *repoOptions) { o.storeOpts = append(o.storeOpts, opts...) }
}

// OpenRepository selects the snapshot backend named by cfg.Storage.Driver,
// loads the stored document and returns a store populated from it.
func OpenRepository(ctx context.Context, cfg *config.Config, opts ...RepositoryOption) (*Repository, error) {
	o := repoOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	driver := StorageDriver(cfg.Storage.Driver)
	if driver == "" {
		driver = StorageFile
	}
	logger := o.logger.With().Str("driver", string(driver)).Logger()

	if driver == StorageMemory {
		storeOpts := append([]memory.Option{memory.WithLogger(logger)}, o.storeOpts...)
		return &Repository{Driver: driver, Store: memory.NewStore(storeOpts...)}, nil
	}

	c, err := documentCodec(cfg, driver)
	if err != nil {
		return nil, err
	}
	backend, err := openBackend(ctx, cfg, driver, c, o.blobStore)
	if err != nil {
		return nil, err
	}
	p := persistence.New(backend, persistence.WithCodec(c), persistence.WithLogger(logger))
	snap, err := p.Load(ctx)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	storeOpts := append([]memory.Option{memory.WithPersister(p), memory.WithLogger(logger)}, o.storeOpts...)
	store := memory.NewStore(storeOpts...)
	store.ImportState(snap)
	logger.Debug().Int("records", snap.Len()).Str("format", string(c.Format())).Msg("repository opened")
	return &Repository{Driver: driver, Store: store, Persister: p}, nil
}

// OpenBlobStore opens the blob store described by cfg.
func OpenBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	return blob.Open(ctx, blob.Config{
		Driver: blob.Driver(cfg.Storage.BlobDriver),
		FSRoot: cfg.Storage.BlobRoot,
		S3: blob.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		},
	})
}

func documentCodec(cfg *config.Config, driver StorageDriver) (codec.Codec, error) {
	if cfg.Storage.Format != "" {
		return codec.New(codec.Format(cfg.Storage.Format))
	}
	switch driver {
	case StorageFile:
		return codec.ForPath(cfg.DataFilePath()), nil
	case StorageBlob:
		return codec.ForPath(cfg.Storage.BlobKey), nil
	default:
		return codec.New(codec.FormatXML)
	}
}

func openBackend(ctx context.Context, cfg *config.Config, driver StorageDriver, c codec.Codec, store blob.Store) (persistence.Backend, error) {
	switch driver {
	case StorageFile:
		return file.New(cfg.DataFilePath())
	case StorageSQLite:
		return sqlite.New(ctx, cfg.Storage.SQLitePath)
	case StoragePostgres:
		return postgres.New(ctx, cfg.Storage.PostgresDSN)
	case StorageBolt:
		return bolt.New(cfg.Storage.BoltPath)
	case StorageBlob:
		if store == nil {
			var err error
			if store, err = OpenBlobStore(ctx, cfg); err != nil {
				return nil, err
			}
		}
		return blobstate.New(store, cfg.Storage.BlobKey, codec.ContentType(c.Format()))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
