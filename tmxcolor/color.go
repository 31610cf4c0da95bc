package tmxcolor

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

// Color is an RGBA colour with every channel in [0,1].
type Color struct {
	R, G, B, A float64
}

var (
	Transparent = Color{}
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
)

// RGB returns an opaque colour.
func RGB(r, g, b float64) Color {
	return Color{r, g, b, 1}
}

// ParseHex parses "#RGB", "#RRGGBB" or "#AARRGGBB" (the leading '#' is optional).
// Alpha comes first in the 8-digit form, as TMX writes it.
func ParseHex(s string) (Color, errorsx.Error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
		fallthrough
	case 6:
		b, err := hex.DecodeString(s)
		if err != nil {
			return Color{}, errorsx.Wrap(err, "color", s)
		}
		return Color{channel(b[0]), channel(b[1]), channel(b[2]), 1}, nil
	case 8:
		b, err := hex.DecodeString(s)
		if err != nil {
			return Color{}, errorsx.Wrap(err, "color", s)
		}
		return Color{channel(b[1]), channel(b[2]), channel(b[3]), channel(b[0])}, nil
	default:
		return Color{}, errorsx.Errorf("bad colour: %q", s)
	}
}

// Hex formats the colour as "#rrggbb", or "#aarrggbb" when it is not fully opaque.
func (c Color) Hex() string {
	if toByte(c.A) == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", toByte(c.R), toByte(c.G), toByte(c.B))
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", toByte(c.A), toByte(c.R), toByte(c.G), toByte(c.B))
}

// NRGBA converts to the stdlib non-premultiplied colour.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: toByte(c.R), G: toByte(c.G), B: toByte(c.B), A: toByte(c.A)}
}

// FromColor converts any stdlib colour.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{channel(n.R), channel(n.G), channel(n.B), channel(n.A)}
}

func channel(b byte) float64 {
	return float64(b) / 255
}

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(math.Round(v * 255))
}
