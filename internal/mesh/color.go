package mesh

import (
	"fmt"
	"strings"
)

// Color is a vertex color with four float32 channels in [0,1].
// Alpha defaults to fully opaque when a source carries only RGB.
type Color struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

// White is the reference color a fresh editing session starts with.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Distance computes the Chebyshev distance between two colors: the largest
// absolute difference across the four channels. A single threshold then reads
// as "how far off any one channel may be", which matches a one-slider UI.
func Distance(a, b Color) float64 {
	d := absDiff(a.R, b.R)
	if v := absDiff(a.G, b.G); v > d {
		d = v
	}
	if v := absDiff(a.B, b.B); v > d {
		d = v
	}
	if v := absDiff(a.A, b.A); v > d {
		d = v
	}
	return float64(d)
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}

// ColorFrom8Bit converts 8-bit RGBA channels to a float color.
func ColorFrom8Bit(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// To8Bit converts the color to 8-bit channels, clamping each to [0,1] first.
func (c Color) To8Bit() (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}

// Hex renders the color as #RRGGBB, or #RRGGBBAA when alpha is not opaque.
func (c Color) Hex() string {
	r, g, b, a := c.To8Bit()
	if a == 255 {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

// ParseHex parses #RGB, #RRGGBB or #RRGGBBAA (leading '#' optional).
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		var r, g, b uint8
		if _, err := fmt.Sscanf(h, "%1x%1x%1x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return ColorFrom8Bit(r*17, g*17, b*17, 255), nil
	case 6:
		var r, g, b uint8
		if _, err := fmt.Sscanf(h, "%02x%02x%02x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return ColorFrom8Bit(r, g, b, 255), nil
	case 8:
		var r, g, b, a uint8
		if _, err := fmt.Sscanf(h, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return ColorFrom8Bit(r, g, b, a), nil
	default:
		return Color{}, fmt.Errorf("invalid hex color %q: expected 3, 6 or 8 hex digits", s)
	}
}

// Vector returns the color as a 4-dim float32 vector (RGBA order), the form
// the color index and the palette store work with.
func (c Color) Vector() []float32 {
	return []float32{c.R, c.G, c.B, c.A}
}

// ColorFromVector builds a color from a 4-dim vector. Shorter vectors leave
// the missing trailing channels at zero, except alpha which defaults opaque.
func ColorFromVector(v []float32) Color {
	c := Color{A: 1}
	if len(v) > 0 {
		c.R = v[0]
	}
	if len(v) > 1 {
		c.G = v[1]
	}
	if len(v) > 2 {
		c.B = v[2]
	}
	if len(v) > 3 {
		c.A = v[3]
	}
	return c
}
