// Package atlas packs named images into texture atlas pages at one or
// more integer scales and writes them as PNG pages plus a JSON
// descriptor.
//
// Every scale shares one layout: region coordinates are stored for scale
// 1 and multiplied by the scale factor on the page of that scale. Images
// may be supplied at any subset of the scales; missing scales are rendered
// from the nearest supplied one, preferring larger sources.
package atlas

import (
	"errors"

	"github.com/gogpu/respack/internal/blend"
	"github.com/gogpu/respack/internal/image"
	"github.com/gogpu/respack/internal/ninepatch"
)

// Errors returned by the packer.
var (
	// ErrNotPowerOfTwo is returned when POT is set and a maximum page size is
	// not a power of two.
	ErrNotPowerOfTwo = errors.New("atlas: page size is not a power of two")

	// ErrInvalidSettings is returned for non-positive page sizes or
	// negative padding.
	ErrInvalidSettings = errors.New("atlas: invalid settings")

	// ErrInvalidScale is returned for scale factors below 1.
	ErrInvalidScale = errors.New("atlas: invalid scale factor")

	// ErrTooLarge is returned for images that do not fit on an empty page.
	ErrTooLarge = errors.New("atlas: image larger than a page")

	// ErrEmpty is returned by Pack when no image was added.
	ErrEmpty = errors.New("atlas: nothing to pack")
)

// Settings controls packing.
type Settings struct {
	// MaxWidth and MaxHeight bound every page at scale 1.
	MaxWidth, MaxHeight int

	// PaddingX and PaddingY separate neighboring regions.
	PaddingX, PaddingY int

	// POT rounds page sizes up to powers of two. Scales that are not
	// powers of two are skipped with a warning.
	POT bool

	// DuplicatePadding fills the padding around each region with copies of
	// its edge pixels, which avoids bleeding when sampling with filtering.
	DuplicatePadding bool

	// StripWhitespace trims transparent rows and columns around images.
	// Ninepatches are never trimmed.
	StripWhitespace bool

	// AlphaThreshold is the highest alpha still considered transparent
	// when stripping whitespace.
	AlphaThreshold uint8

	// Workers bounds how many images and pages render at once. Zero means
	// GOMAXPROCS.
	Workers int
}

// DefaultSettings returns the settings used when a pack directory has no
// settings file.
func DefaultSettings() Settings {
	return Settings{
		MaxWidth:         2048,
		MaxHeight:        2048,
		PaddingX:         2,
		PaddingY:         2,
		POT:              true,
		DuplicatePadding: true,
		StripWhitespace:  true,
	}
}

// Image is a source image the packer can render at any size.
// *imagefile.Image implements it.
type Image interface {
	Size() (width, height int, err error)
	IsNinepatch() (bool, error)
	Splits(width, height int) (*ninepatch.Rect, error)
	Pads(width, height int) (*ninepatch.Rect, error)
	Background() blend.Color
	Render(width, height int, background blend.Color) (*image.ImageBuf, error)
}

// Region is the placement of one image, in scale 1 pixels.
type Region struct {
	Name string
	Page int

	// X, Y, Width and Height locate the trimmed image on its page.
	X, Y, Width, Height int

	// OffsetX and OffsetY locate the trimmed image inside the original.
	OffsetX, OffsetY int

	// OriginalWidth and OriginalHeight are the untrimmed size.
	OriginalWidth, OriginalHeight int

	Splits, Pads *ninepatch.Rect
}

// Trimmed reports whether whitespace was stripped from the region.
func (r Region) Trimmed() bool {
	return r.Width != r.OriginalWidth || r.Height != r.OriginalHeight
}

// Page is one atlas page with an image per scale.
type Page struct {
	// Width and Height are the page size at scale 1.
	Width, Height int

	// Images maps a scale factor to the page image at that scale.
	Images map[int]*image.ImageBuf
}

// Result is a packed atlas.
type Result struct {
	Scales  []int
	Pages   []Page
	Regions []Region
}
