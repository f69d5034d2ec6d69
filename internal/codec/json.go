package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Decode imports topology data from JSON
func (c *JSONCodec) Decode(r io.Reader) (*RawTopology, error) {
	var raw RawTopology
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &raw, nil
}

// Encode exports topology data to JSON
func (c *JSONCodec) Encode(raw *RawTopology, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(raw); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
