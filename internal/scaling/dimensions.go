package scaling

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/respack/internal/flagutil"
)

// Flag patterns understood by ResolveDimensions and callers.
var (
	// TileSizePattern is w<W>h<H> in tile units; "," is the decimal
	// separator and either axis may be "?".
	TileSizePattern = flagutil.Pattern(`w((?:\d+(?:,\d+)?)|\?)h((?:\d+(?:,\d+)?)|\?)`)

	// PixelSizePattern is <W>x<H> in pixels; either axis may be "?".
	PixelSizePattern = flagutil.Pattern(`((?:\d+)|\?)x((?:\d+)|\?)`)

	// ScalingPattern selects the algorithm: "scaling <name>".
	ScalingPattern = flagutil.Pattern(`scaling (\w+)`)

	// BackgroundPattern selects a background color: "#<hex>".
	BackgroundPattern = flagutil.Pattern(`#([0-9A-Fa-f]{1,8})`)
)

// Dimensions is a resolved target size.
type Dimensions struct {
	Width, Height int
}

// unset marks an axis that no flag specified.
const unset = -1

// ResolveDimensions computes the target size of an image from its flags.
//
// The tile pattern wins, then the pixel pattern fills axes the tile
// pattern left open. With no axis given the native size is used. With one
// axis given the other follows the native aspect ratio, rounded to nearest;
// a degenerate native size keeps the native value on the open axis.
func ResolveDimensions(log *slog.Logger, flags []string, nativeW, nativeH, tileSize int) Dimensions {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w, h := unset, unset

	if m, ok := flagutil.MatchFirst(log, flags, TileSizePattern); ok {
		w = tileFraction(m.Group(1), tileSize)
		h = tileFraction(m.Group(2), tileSize)
		log.Debug("size determined by tile pattern", "width", w, "height", h)
	}
	if m, ok := flagutil.MatchFirst(log, flags, PixelSizePattern); ok {
		if pw := m.Group(1); pw != "?" {
			if w != unset {
				log.Warn("width set by both tile and pixels, using size by tile", "flag", m.Group(0))
			} else {
				w, _ = strconv.Atoi(pw)
			}
		}
		if ph := m.Group(2); ph != "?" {
			if h != unset {
				log.Warn("height set by both tile and pixels, using size by tile", "flag", m.Group(0))
			} else {
				h, _ = strconv.Atoi(ph)
			}
		}
		log.Debug("size determined by pixel pattern", "width", w, "height", h)
	}

	switch {
	case w != unset && h != unset:
		return Dimensions{w, h}
	case w == unset && h == unset:
		return Dimensions{nativeW, nativeH}
	case nativeW == 0 || nativeH == 0:
		log.Warn("native dimensions are degenerate", "width", nativeW, "height", nativeH)
		if w != unset {
			return Dimensions{w, nativeH}
		}
		return Dimensions{nativeW, h}
	case w == unset:
		w = int(math.Round(float64(nativeW) / float64(nativeH) * float64(h)))
	default:
		h = int(math.Round(float64(nativeH) / float64(nativeW) * float64(w)))
	}
	log.Debug("dimensions derived from aspect ratio", "width", w, "height", h)
	return Dimensions{w, h}
}

// tileFraction converts a tile count such as "1,5" to pixels.
func tileFraction(s string, tileSize int) int {
	if s == "" || s == "?" {
		return unset
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return unset
	}
	return int(math.Round(f * float64(tileSize)))
}
