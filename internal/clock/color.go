package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an opaque color with 8-bit channels
type RGB struct {
	R, G, B uint8
}

// ParseHex reads "#rgb" or "#rrggbb"
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseHex is ParseHex for known-good constants
func MustParseHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParsePalette parses every color of a palette
func ParsePalette(colors []string) ([]RGB, error) {
	out := make([]RGB, 0, len(colors))
	for _, c := range colors {
		rgb, err := ParseHex(c)
		if err != nil {
			return nil, err
		}
		out = append(out, rgb)
	}
	return out, nil
}

// Lerp blends toward o by t in [0, 1]
func (c RGB) Lerp(o RGB, t float64) RGB {
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return RGB{R: mix(c.R, o.R), G: mix(c.G, o.G), B: mix(c.B, o.B)}
}

// Hex formats the color as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}
