package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Decode imports topology data from YAML
func (c *YAMLCodec) Decode(r io.Reader) (*RawTopology, error) {
	var raw RawTopology
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &raw, nil
}

// Encode exports topology data to YAML
func (c *YAMLCodec) Encode(raw *RawTopology, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(raw); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
