// Package codec reads and writes topologies in the wire formats netlens accepts.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Importer parses raw topology data
type Importer interface {
	Decode(r io.Reader) (*RawTopology, error)
	Format() string
}

// Exporter writes raw topology data
type Exporter interface {
	Encode(raw *RawTopology, w io.Writer) error
	Format() string
}

// Codec both imports and exports a format
type Codec interface {
	Importer
	Exporter
}

var codecs = map[string]Codec{
	"json": NewJSONCodec(),
	"yaml": NewYAMLCodec(),
	"toml": NewTOMLCodec(),
}

// Formats lists the supported format identifiers
func Formats() []string {
	return []string{"json", "yaml", "toml"}
}

// ForFormat returns the codec for a format identifier
func ForFormat(format string) (Codec, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "yml" {
		f = "yaml"
	}
	c, ok := codecs[f]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return c, nil
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot infer format of %s", path)
	}
	return ForFormat(ext)
}
