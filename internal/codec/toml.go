package codec

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// TOMLCodec handles TOML import/export. Nodes and links are arrays of tables:
//
//	[[nodes]]
//	id = "A"
//	x = 150.0
//	y = 200.0
//	connections = ["B"]
//
//	[[links]]
//	source = "A"
//	target = "B"
//	cost = 1.0
type TOMLCodec struct{}

// NewTOMLCodec creates a new TOML codec
func NewTOMLCodec() *TOMLCodec {
	return &TOMLCodec{}
}

// Format returns the codec format identifier
func (c *TOMLCodec) Format() string {
	return "toml"
}

// Decode imports topology data from TOML
func (c *TOMLCodec) Decode(r io.Reader) (*RawTopology, error) {
	var raw RawTopology
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return &raw, nil
}

// Encode exports topology data to TOML
func (c *TOMLCodec) Encode(raw *RawTopology, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(raw); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return nil
}
