package blend

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
)

// ErrInvalidColor is returned for hex strings that are not 1 to 8 hex digits.
var ErrInvalidColor = errors.New("blend: invalid hex color")

// Color is a straight-alpha RGBA8 color.
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Transparent = Color{}
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
)

// Opaque reports whether the alpha is 255.
func (c Color) Opaque() bool { return c.A == 255 }

// NRGBA converts c to the standard library type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Hex renders c as RRGGBBAA.
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) String() string { return "#" + c.Hex() }

// ParseHexColor parses 1 to 8 hex digits without a leading '#'.
//
// Accepted layouts, by length:
//
//	1 G        2 GA       3 RGB      4 RGBA
//	5 RGBAA    6 RRGGBB   7 RRGGBBA  8 RRGGBBAA
//
// A single digit d expands to dd, so "f" is white and "8" is 0x88 gray.
func ParseHexColor(hex string) (Color, error) {
	n := len(hex)
	if n < 1 || n > 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	for i := range n {
		if _, ok := hexDigit(hex[i]); !ok {
			return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
		}
	}

	short := func(i int) uint8 {
		d, _ := hexDigit(hex[i])
		return d * 0x11
	}
	long := func(i int) uint8 {
		v, _ := strconv.ParseUint(hex[i:i+2], 16, 8)
		return uint8(v)
	}

	switch n {
	case 1:
		g := short(0)
		return Color{g, g, g, 255}, nil
	case 2:
		g := short(0)
		return Color{g, g, g, short(1)}, nil
	case 3:
		return Color{short(0), short(1), short(2), 255}, nil
	case 4:
		return Color{short(0), short(1), short(2), short(3)}, nil
	case 5:
		return Color{short(0), short(1), short(2), long(3)}, nil
	case 6:
		return Color{long(0), long(2), long(4), 255}, nil
	case 7:
		return Color{long(0), long(2), long(4), short(6)}, nil
	default:
		return Color{long(0), long(2), long(4), long(6)}, nil
	}
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
