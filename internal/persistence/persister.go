// Package persistence saves and restores the whole nutrition model as one
// encoded document held by a pluggable backend.
package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mealtrack/internal/infra/persistence/codec"
	"mealtrack/pkg/domain"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by a Backend when no document has been written yet.
var ErrNotFound = errors.New("document not found")

// Backend stores the encoded document as an opaque byte slice. Write replaces
// any previous content.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Persister encodes snapshots with a codec and hands the bytes to a backend.
type Persister struct {
	backend Backend
	codec   codec.Codec
	logger  zerolog.Logger
}

// Option configures a Persister.
type Option func(*Persister)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Persister) { p.logger = logger }
}

// WithCodec overrides the document codec. XML is used by default.
func WithCodec(c codec.Codec) Option {
	return func(p *Persister) {
		if c != nil {
			p.codec = c
		}
	}
}

// New returns a Persister writing to backend.
func New(backend Backend, opts ...Option) *Persister {
	p := &Persister{backend: backend, logger: zerolog.Nop()}
	p.codec, _ = codec.New(codec.FormatXML)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Codec returns the document codec in use.
func (p *Persister) Codec() codec.Codec { return p.codec }

// Load reads the stored document. A missing document, an empty one, or one
// that cannot be decoded yields an empty snapshot; only backend I/O errors are
// returned.
func (p *Persister) Load(ctx context.Context) (domain.Snapshot, error) {
	data, err := p.backend.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		p.logger.Debug().Msg("no stored document, starting empty")
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read document: %w", err)
	}
	doc, err := p.codec.Decode(bytes.NewReader(data))
	if err != nil {
		p.logger.Warn().Err(err).Str("format", string(p.codec.Format())).Msg("stored document unreadable, starting empty")
		return domain.Snapshot{}, nil
	}
	snap := codec.FromDocument(doc)
	p.logger.Debug().Int("records", snap.Len()).Msg("document loaded")
	return snap, nil
}

// Persist encodes the complete snapshot and rewrites the stored document.
func (p *Persister) Persist(ctx context.Context, snap domain.Snapshot) error {
	var buf bytes.Buffer
	if err := p.codec.Encode(&buf, codec.ToDocument(snap)); err != nil {
		return err
	}
	if err := p.backend.Write(ctx, buf.Bytes()); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Close releases the backend.
func (p *Persister) Close() error {
	return p.backend.Close()
}
