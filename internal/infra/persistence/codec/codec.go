package codec

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// ErrNoRoot is returned by Decode when the input is empty or does not carry
// a HealthTracker root.
var ErrNoRoot = errors.New("document root not found")

// Format names a document encoding.
type Format string

// Supported formats.
const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// Codec encodes and decodes a Document.
type Codec interface {
	Format() Format
	Encode(w io.Writer, doc Document) error
	Decode(r io.Reader) (Document, error)
}

// New returns the codec for format.
func New(format Format) (Codec, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatXML, "":
		return xmlCodec{}, nil
	case FormatJSON:
		return jsonCodec{}, nil
	case FormatCBOR:
		return cborCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// ForPath picks a codec from the file extension, defaulting to XML.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonCodec{}
	case ".cbor":
		return cborCodec{}
	default:
		return xmlCodec{}
	}
}

// ContentType returns the MIME type written alongside documents in format.
func ContentType(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCBOR:
		return "application/cbor"
	default:
		return "application/xml"
	}
}

type xmlCodec struct{}

func (xmlCodec) Format() Format { return FormatXML }

func (xmlCodec) Encode(w io.Writer, doc Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	return enc.Close()
}

func (xmlCodec) Decode(r io.Reader) (Document, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return Document{}, ErrNoRoot
		}
		if err != nil {
			return Document{}, fmt.Errorf("decode xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "HealthTracker" {
			return Document{}, ErrNoRoot
		}
		var doc Document
		if err := dec.DecodeElement(&doc, &start); err != nil {
			return Document{}, fmt.Errorf("decode xml: %w", err)
		}
		return doc, nil
	}
}

// envelope wraps the document under a named root for the map-based formats.
type envelope struct {
	Root *Document `json:"healthTracker" cbor:"healthTracker"`
}

type jsonCodec struct{}

func (jsonCodec) Format() Format { return FormatJSON }

func (jsonCodec) Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope{Root: &doc}); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (jsonCodec) Decode(r io.Reader) (Document, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, ErrNoRoot
		}
		return Document{}, fmt.Errorf("decode json: %w", err)
	}
	if env.Root == nil {
		return Document{}, ErrNoRoot
	}
	return *env.Root, nil
}

type cborCodec struct{}

func (cborCodec) Format() Format { return FormatCBOR }

func (cborCodec) Encode(w io.Writer, doc Document) error {
	if err := cbor.NewEncoder(w).Encode(envelope{Root: &doc}); err != nil {
		return fmt.Errorf("encode cbor: %w", err)
	}
	return nil
}

func (cborCodec) Decode(r io.Reader) (Document, error) {
	var env envelope
	if err := cbor.NewDecoder(r).Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, ErrNoRoot
		}
		return Document{}, fmt.Errorf("decode cbor: %w", err)
	}
	if env.Root == nil {
		return Document{}, ErrNoRoot
	}
	return *env.Root, nil
}
